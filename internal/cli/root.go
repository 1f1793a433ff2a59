// Package cli implements the photongen command-line surface (spec.md
// §4.L): a single `gen` action that loads a project and writes its
// onboard/ground-control trees to disk.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "photongen",
	Short:         "Generate on-board and ground-control sources from a photon project",
	SilenceErrors: true,
	Long: `photongen compiles a project of photon IDL modules into C sources for
on-board targets and C++ headers for ground control, plus a compressed
blob of the package's serialized contents for runtime introspection.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(newGenCmd())
}

func initConfig() {
	viper.SetEnvPrefix("PHOTONGEN")
	viper.AutomaticEnv()
}
