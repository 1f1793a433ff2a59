package project

import (
	"testing"

	"github.com/cpb9/photongen/internal/ast"
	"github.com/cpb9/photongen/internal/diag"
	"github.com/cpb9/photongen/internal/graph"
	"github.com/cpb9/photongen/internal/link"
	"github.com/cpb9/photongen/internal/parser"
	"github.com/cpb9/photongen/internal/source"
)

func parseModule(t *testing.T, name, text string) *ast.Ast {
	t.Helper()
	file := source.NewFileInfo(name+".ph", text)
	arena := graph.NewArena()
	sink := diag.NewSink()
	a := parser.ParseFile(file, arena, sink)
	if a == nil || sink.HasErrors() {
		t.Fatalf("parse of %s failed: %v", name, sink.Reports())
	}
	return a
}

func TestLoadValidProject(t *testing.T) {
	mods := map[string]*ast.Ast{
		"common": parseModule(t, "common", "module common\nstruct Common { v: u8 }\n"),
		"main":   parseModule(t, "main", "module main\nstruct Main { v: u8 }\n"),
	}
	resolve := func(name string) (*ast.Ast, bool) {
		a, ok := mods[name]
		return a, ok
	}

	src := NewTOMLSource([]byte(`
[project]
name = "rover"
master = "mcu"
mcc_id = 99
common_modules = ["common"]

[[devices]]
name = "mcu"
id = 1
modules = ["main"]

[[devices]]
name = "radio"
id = 2
modules = ["main"]
tm_sources = ["mcu"]
cmd_targets = ["mcu"]
`), nil)

	pkg := link.NewPackage(graph.NewArena())
	proj, err := Load(src, resolve, pkg, 9, -1, 32)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if proj.Name != "rover" {
		t.Fatalf("expected project name rover, got %q", proj.Name)
	}
	if proj.DebugLevel != 5 {
		t.Fatalf("expected debug level clamped to 5, got %d", proj.DebugLevel)
	}
	if proj.CompressLevel != 0 {
		t.Fatalf("expected compress level clamped to 0, got %d", proj.CompressLevel)
	}
	if proj.MasterDevice == nil || proj.MasterDevice.Name != "mcu" {
		t.Fatalf("expected master device mcu")
	}
	if len(proj.Devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(proj.Devices))
	}
	radio := proj.Devices[1]
	if len(radio.ModuleNames) != 2 {
		t.Fatalf("expected radio to have common+main modules, got %v", radio.ModuleNames)
	}
	if len(radio.TMSources) != 1 || radio.TMSources[0].Name != "mcu" {
		t.Fatalf("expected radio's tm_source to resolve to mcu")
	}
}

func TestLoadAppliesTargetPointerWidth(t *testing.T) {
	resolve := func(name string) (*ast.Ast, bool) { return nil, false }
	src := NewTOMLSource([]byte(`
[project]
name = "rover"
master = "mcu"
mcc_id = 99
target_pointer_width = 64

[[devices]]
name = "mcu"
id = 1
`), nil)
	proj, err := Load(src, resolve, link.NewPackage(graph.NewArena()), 0, 0, 32)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if proj.PointerWidth != 64 {
		t.Fatalf("expected project's target_pointer_width to override the default, got %d", proj.PointerWidth)
	}
}

func TestLoadDefaultsPointerWidthFromConfig(t *testing.T) {
	resolve := func(name string) (*ast.Ast, bool) { return nil, false }
	src := NewTOMLSource([]byte(`
[project]
name = "rover"
master = "mcu"
mcc_id = 99

[[devices]]
name = "mcu"
id = 1
`), nil)
	proj, err := Load(src, resolve, link.NewPackage(graph.NewArena()), 0, 0, 16)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if proj.PointerWidth != 16 {
		t.Fatalf("expected project to fall back to the passed-in default pointer width, got %d", proj.PointerWidth)
	}
}

func TestLoadRejectsMCCIDCollision(t *testing.T) {
	resolve := func(name string) (*ast.Ast, bool) { return nil, false }
	src := NewTOMLSource([]byte(`
[project]
name = "rover"
master = "mcu"
mcc_id = 1

[[devices]]
name = "mcu"
id = 1
`), nil)
	_, err := Load(src, resolve, link.NewPackage(graph.NewArena()), 0, 0, 32)
	if err == nil {
		t.Fatalf("expected an mcc_id collision error")
	}
}

func TestLoadRejectsMissingMaster(t *testing.T) {
	resolve := func(name string) (*ast.Ast, bool) { return nil, false }
	src := NewTOMLSource([]byte(`
[project]
name = "rover"
master = "nosuch"
mcc_id = 99

[[devices]]
name = "mcu"
id = 1
`), nil)
	_, err := Load(src, resolve, link.NewPackage(graph.NewArena()), 0, 0, 32)
	if err == nil {
		t.Fatalf("expected a missing-master error")
	}
}

func TestLoadRejectsUnknownModule(t *testing.T) {
	resolve := func(name string) (*ast.Ast, bool) { return nil, false }
	src := NewTOMLSource([]byte(`
[project]
name = "rover"
master = "mcu"
mcc_id = 99

[[devices]]
name = "mcu"
id = 1
modules = ["nosuch"]
`), nil)
	_, err := Load(src, resolve, link.NewPackage(graph.NewArena()), 0, 0, 32)
	if err == nil {
		t.Fatalf("expected an unknown-module error")
	}
}

func TestLoadRejectsDuplicateDeviceID(t *testing.T) {
	resolve := func(name string) (*ast.Ast, bool) { return nil, false }
	src := NewTOMLSource([]byte(`
[project]
name = "rover"
master = "mcu"
mcc_id = 99

[[devices]]
name = "mcu"
id = 1

[[devices]]
name = "radio"
id = 1
`), nil)
	_, err := Load(src, resolve, link.NewPackage(graph.NewArena()), 0, 0, 32)
	if err == nil {
		t.Fatalf("expected a duplicate-device-id error")
	}
}
