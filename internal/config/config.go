// Package config holds the generator's run configuration (SPEC_FULL.md
// §4.M), parsed once by the CLI and passed down explicitly rather than
// read from package-level globals.
package config

import "github.com/cpb9/photongen/internal/project"

// Config is the full set of inputs a single `gen` invocation needs.
type Config struct {
	ProjectFile   string
	OutDir        string
	DebugLevel    int
	CompressLevel int
	PointerWidth  int
	Verbose       bool
}

// Clamp bounds DebugLevel/CompressLevel to [0,5] and PointerWidth to one of
// {16,32,64} (spec.md §6), reusing the project loader's own clamps so the
// two stay in lockstep. A project's own `target_pointer_width` (if set)
// still takes precedence in project.Load; this is only the CLI-side
// default.
func (c Config) Clamp() Config {
	c.DebugLevel = project.ClampLevel(c.DebugLevel)
	c.CompressLevel = project.ClampLevel(c.CompressLevel)
	c.PointerWidth = project.ClampPointerWidth(c.PointerWidth)
	return c
}
