// Command photongen compiles a project of photon IDL modules into
// on-board C sources and ground-control C++ headers.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cpb9/photongen/internal/cli"
)

type exitCoder interface {
	ExitCode() int
}

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ec exitCoder
		if errors.As(err, &ec) {
			os.Exit(ec.ExitCode())
		}
		os.Exit(2)
	}
}
