package project

import (
	"fmt"
	"sort"

	"github.com/cpb9/photongen/internal/ast"
	"github.com/cpb9/photongen/internal/link"
)

// Project owns the Package, the device list, and global settings (spec.md
// §3 "Package and project").
type Project struct {
	Name          string
	Package       *link.Package
	Devices       []*Device
	MasterDevice  *Device
	MCCID         int
	DebugLevel    int
	CompressLevel int
	PointerWidth  int
}

// ModuleResolver supplies an already-parsed Ast by module name; the loader
// does not read or parse IDL files itself (spec.md §1 Non-goals).
type ModuleResolver func(name string) (*ast.Ast, bool)

// Load validates and assembles a Project from src, looking up each
// referenced module's Ast via resolve. It fails fast on the first
// structural error (spec.md §4.F, §7 "Project loader fails fast").
func Load(src ProjectSource, resolve ModuleResolver, pkg *link.Package, debugLevel, compressLevel, pointerWidth int) (*Project, error) {
	raw, err := src.ReadProject()
	if err != nil {
		return nil, err
	}
	if raw.Project.Name == "" {
		return nil, fmt.Errorf("project: missing [project].name")
	}

	width := pointerWidth
	if raw.Project.TargetPointerWidth != 0 {
		width = raw.Project.TargetPointerWidth
	}

	proj := &Project{
		Name:          raw.Project.Name,
		Package:       pkg,
		MCCID:         int(raw.Project.MCCID),
		DebugLevel:    ClampLevel(debugLevel),
		CompressLevel: ClampLevel(compressLevel),
		PointerWidth:  ClampPointerWidth(width),
	}

	seenIDs := make(map[int]bool, len(raw.Devices))
	byName := make(map[string]*Device, len(raw.Devices))
	for _, rd := range raw.Devices {
		if _, dup := byName[rd.Name]; dup {
			return nil, fmt.Errorf("project: duplicate device name %q", rd.Name)
		}
		if seenIDs[int(rd.ID)] {
			return nil, fmt.Errorf("project: duplicate device id %d", rd.ID)
		}
		seenIDs[int(rd.ID)] = true

		names := dedupeSorted(append(append([]string{}, raw.Project.CommonModules...), rd.Modules...))
		dev := &Device{Name: rd.Name, ID: int(rd.ID), ModuleNames: names}
		for _, mn := range names {
			a, ok := resolve(mn)
			if !ok {
				return nil, fmt.Errorf("project: device %q references unknown module %q", rd.Name, mn)
			}
			dev.Modules = append(dev.Modules, a)
		}
		byName[rd.Name] = dev
		proj.Devices = append(proj.Devices, dev)
	}

	if seenIDs[proj.MCCID] {
		return nil, fmt.Errorf("project: mcc_id %d collides with a device id", proj.MCCID)
	}

	master, ok := byName[raw.Project.Master]
	if !ok {
		return nil, fmt.Errorf("project: master device %q not found", raw.Project.Master)
	}
	if master.ID == proj.MCCID {
		return nil, fmt.Errorf("project: master device id must differ from mcc_id")
	}
	proj.MasterDevice = master

	for i, rd := range raw.Devices {
		dev := proj.Devices[i]
		for _, name := range rd.TMSources {
			other, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("project: device %q has unknown tm_source %q", dev.Name, name)
			}
			dev.TMSources = append(dev.TMSources, other)
		}
		for _, name := range rd.CmdTargets {
			other, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("project: device %q has unknown cmd_target %q", dev.Name, name)
			}
			dev.CmdTargets = append(dev.CmdTargets, other)
		}
	}

	return proj, nil
}

func dedupeSorted(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ClampLevel bounds a debug/compression level to [0, 5] (spec.md §6).
func ClampLevel(level int) int {
	if level > 5 {
		return 5
	}
	if level < 0 {
		return 0
	}
	return level
}

// ClampPointerWidth bounds a `target_pointer_width` setting to one of the
// sizes spec.md §6 allows for USize/ISize (16, 32, or 64), defaulting to
// 32 for anything else, including zero (unset).
func ClampPointerWidth(width int) int {
	switch width {
	case 16, 32, 64:
		return width
	default:
		return 32
	}
}
