// Package project implements the project loader (spec.md §4.F): it
// validates a Project description against an already-parsed Package,
// without performing any file I/O or directory walking itself (spec.md §1
// Non-goals). Load reads only the project description; module-directory
// descriptions (`dir.toml`/`mod.toml`) are read by the caller.
package project

import "github.com/cpb9/photongen/internal/ast"

// RawProjectSection is the `[project]` TOML table (spec.md §6).
type RawProjectSection struct {
	Name               string   `toml:"name"`
	Master             string   `toml:"master"`
	MCCID              uint64   `toml:"mcc_id"`
	CommonModules      []string `toml:"common_modules"`
	ModuleDirs         []string `toml:"module_dirs"`
	TargetPointerWidth int      `toml:"target_pointer_width"`
}

// RawDevice is one `[[devices]]` TOML entry (spec.md §6).
type RawDevice struct {
	Name       string   `toml:"name"`
	ID         uint64   `toml:"id"`
	Modules    []string `toml:"modules"`
	TMSources  []string `toml:"tm_sources"`
	CmdTargets []string `toml:"cmd_targets"`
}

// RawProject is the top-level shape of a project TOML file.
type RawProject struct {
	Project RawProjectSection `toml:"project"`
	Devices []RawDevice       `toml:"devices"`
}

// RawModuleDir is a `dir.toml` file: the list of module subdirectory names
// it contains (spec.md §6).
type RawModuleDir struct {
	Modules []string `toml:"modules"`
}

// RawModule is a `mod.toml` file (spec.md §6).
type RawModule struct {
	ID      uint64   `toml:"id"`
	Dest    string   `toml:"dest"`
	Decode  string   `toml:"decode"`
	Sources []string `toml:"sources"`
}

// ProjectSource is the narrow boundary spec.md §1 carves the TOML surface
// down to: "a reader that yields devices, modules, and file paths." The
// loader never opens a file or walks a directory itself; it only asks a
// ProjectSource for already-located raw records.
type ProjectSource interface {
	ReadProject() (RawProject, error)
	ReadModuleDir(path string) (RawModuleDir, error)
	ReadModule(path string) (RawModule, error)
}

// Device is a loaded, validated device record (spec.md §3 "Package and
// project"): a name, a numeric id, the Asts for its resolved module set,
// and its telemetry-source / command-target device sets.
type Device struct {
	Name        string
	ID          int
	ModuleNames []string
	Modules     []*ast.Ast
	TMSources   []*Device
	CmdTargets  []*Device
}
