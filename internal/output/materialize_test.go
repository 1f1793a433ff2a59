package output

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/cpb9/photongen/internal/ast"
	"github.com/cpb9/photongen/internal/codegen/blob"
	"github.com/cpb9/photongen/internal/diag"
	"github.com/cpb9/photongen/internal/graph"
	"github.com/cpb9/photongen/internal/link"
	"github.com/cpb9/photongen/internal/parser"
	"github.com/cpb9/photongen/internal/project"
	"github.com/cpb9/photongen/internal/source"
)

func TestWriteDeviceProducesExpectedTree(t *testing.T) {
	file := source.NewFileInfo("sensor.ph", "module sensor\nstruct Reading { v: u16 }\ncomponent {\n    parameters { reading: Reading }\n    commands { fn ping(); }\n    statuses { [0, 1, true]: reading.v }\n}\n")
	arena := graph.NewArena()
	sink := diag.NewSink()
	a := parser.ParseFile(file, arena, sink)
	if a == nil || sink.HasErrors() {
		t.Fatalf("parse failed: %v", sink.Reports())
	}

	pkg := link.NewPackage(arena)
	pkg.AddAst(a)
	link.Link(pkg, sink)
	if sink.HasErrors() {
		t.Fatalf("link failed: %v", sink.Reports())
	}

	dev := &project.Device{Name: "mcu", ID: 1, ModuleNames: []string{"sensor"}, Modules: []*ast.Ast{a}}

	outDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := WriteDevice(logger, outDir, dev, pkg, nil, 32); err != nil {
		t.Fatalf("WriteDevice failed: %v", err)
	}

	root := filepath.Join(outDir, "mcu")
	wantFiles := []string{
		filepath.Join(root, "onboard", "photon", "sensor", "Reading.h"),
		filepath.Join(root, "onboard", "photon", "sensor", "Component.h"),
		filepath.Join(root, "onboard", "photon", "sensor", "CmdDecoder.Private.c"),
		filepath.Join(root, "onboard", "photon", "sensor", "CmdEncoder.Private.c"),
		filepath.Join(root, "onboard", "photon", "sensor", "StatusEncoder.Private.c"),
		filepath.Join(root, "onboard", "photon", "sensor", "StatusDecoder.Private.c"),
		filepath.Join(root, "onboard", "PhotonMcu.h"),
	}
	for _, path := range wantFiles {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected file to exist: %s (%v)", path, err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(root, "groundcontrol", "photon"))
	if err != nil {
		t.Fatalf("reading groundcontrol dir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("expected at least one ground-control header to be written")
	}
}

func TestWriteDeviceCopiesExtraSources(t *testing.T) {
	file := source.NewFileInfo("sensor.ph", "module sensor\nstruct Reading { v: u16 }\n")
	arena := graph.NewArena()
	sink := diag.NewSink()
	a := parser.ParseFile(file, arena, sink)
	if a == nil || sink.HasErrors() {
		t.Fatalf("parse failed: %v", sink.Reports())
	}

	pkg := link.NewPackage(arena)
	pkg.AddAst(a)
	link.Link(pkg, sink)
	if sink.HasErrors() {
		t.Fatalf("link failed: %v", sink.Reports())
	}

	dev := &project.Device{Name: "mcu", ID: 1, ModuleNames: []string{"sensor"}, Modules: []*ast.Ast{a}}

	srcDir := t.TempDir()
	extraPath := filepath.Join(srcDir, "vendor_driver.c")
	if err := os.WriteFile(extraPath, []byte("/* vendor driver */\n"), 0o644); err != nil {
		t.Fatalf("writing fixture source: %v", err)
	}

	outDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	extraSources := map[string][]string{"sensor": {extraPath}}
	if err := WriteDevice(logger, outDir, dev, pkg, extraSources, 32); err != nil {
		t.Fatalf("WriteDevice failed: %v", err)
	}

	copied := filepath.Join(outDir, "mcu", "onboard", "photon", "sensor", "vendor_driver.c")
	contents, err := os.ReadFile(copied)
	if err != nil {
		t.Fatalf("expected extra source to be copied to %s: %v", copied, err)
	}
	if string(contents) != "/* vendor driver */\n" {
		t.Fatalf("unexpected copied contents: %q", contents)
	}
}

func TestWritePackageBlobWritesHashAndBytes(t *testing.T) {
	b, err := blob.Build([]blob.Entry{{Name: "sensor", Contents: []byte("hello")}}, 1)
	if err != nil {
		t.Fatalf("blob.Build failed: %v", err)
	}
	outDir := t.TempDir()
	if err := WritePackageBlob(outDir, b); err != nil {
		t.Fatalf("WritePackageBlob failed: %v", err)
	}
	contents, err := os.ReadFile(filepath.Join(outDir, "Package.Private.inc.c"))
	if err != nil {
		t.Fatalf("reading Package.Private.inc.c: %v", err)
	}
	if len(contents) == 0 {
		t.Fatalf("expected non-empty blob file")
	}
}
