// Package output implements the output materializer (spec.md §4.K): it
// walks a Project's devices and writes each device's on-board and
// ground-control trees to disk. Directory creation is idempotent; file
// writes are best-effort serial (spec.md §4.K "File writes are best-effort
// serial; directory creation is idempotent").
package output

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cpb9/photongen/internal/ast"
	"github.com/cpb9/photongen/internal/codegen/blob"
	"github.com/cpb9/photongen/internal/codegen/emit"
	"github.com/cpb9/photongen/internal/codegen/include"
	"github.com/cpb9/photongen/internal/graph"
	"github.com/cpb9/photongen/internal/link"
	"github.com/cpb9/photongen/internal/project"
)

// WriteDevice materializes dev's full onboard/groundcontrol tree under
// outDir/<dev.Name>/ (spec.md §4.K steps 1-5). extraSources, keyed by
// module name, lists each module's `mod.toml` `sources` entries -- files
// included by copy into the module's onboard directory rather than
// generated (spec.md §4.K step 5 "includes external source files either
// by absolute path or by copy"; this materializer always copies). Step 6
// (the serialized package blob) is the caller's responsibility via
// WritePackageBlob, since spec.md §5 computes it concurrently with
// per-device generation.
func WriteDevice(logger *slog.Logger, outDir string, dev *project.Device, pkg *link.Package, extraSources map[string][]string, pointerWidth int) error {
	root := filepath.Join(outDir, dev.Name)
	logger.Debug("materializing device", "device", dev.Name, "root", root)

	dirs := []string{
		filepath.Join(root, "onboard", "photon"),
		filepath.Join(root, "onboard", "photon", "_dynarray_"),
		filepath.Join(root, "onboard", "photon", "_generic_"),
		filepath.Join(root, "groundcontrol", "photon"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("output: creating %s: %w", d, err)
		}
	}

	seenDerived := make(map[string]bool)
	var moduleNames []string
	var hasCmdTargets, hasTMSources []string

	for _, a := range dev.Modules {
		modDir := filepath.Join(root, "onboard", "photon", a.Module.Name)
		if err := os.MkdirAll(modDir, 0o755); err != nil {
			return fmt.Errorf("output: creating %s: %w", modDir, err)
		}
		moduleNames = append(moduleNames, a.Module.Name)

		for _, nt := range a.Types {
			if err := writeNamedType(pkg.Arena, modDir, nt, seenDerived, root, pointerWidth); err != nil {
				return err
			}
		}

		if a.Comp != nil {
			if err := writeComponent(pkg.Arena, modDir, a.Module.Name, a.Comp, pointerWidth); err != nil {
				return err
			}
		}

		for _, path := range extraSources[a.Module.Name] {
			if err := copyExtraSource(modDir, path); err != nil {
				return err
			}
		}
	}

	for _, d := range dev.TMSources {
		hasTMSources = append(hasTMSources, d.Name)
	}
	for _, d := range dev.CmdTargets {
		hasCmdTargets = append(hasCmdTargets, d.Name)
	}

	aggregator := deviceAggregator(dev, moduleNames, hasCmdTargets, hasTMSources)
	if err := writeFile(filepath.Join(root, "onboard", fmt.Sprintf("Photon%s.h", strings.Title(dev.Name))), aggregator); err != nil {
		return err
	}

	for _, a := range dev.Modules {
		for _, nt := range a.Types {
			gc := emit.GroundControlHeader(pkg.Arena, nt.Type, pointerWidth)
			if err := writeFile(filepath.Join(root, "groundcontrol", "photon", gc.Path), gc.Text); err != nil {
				return err
			}
		}
	}

	logger.Debug("device materialized", "device", dev.Name, "modules", len(moduleNames))
	return nil
}

func writeNamedType(a *graph.Arena, modDir string, nt *ast.NamedType, seenDerived map[string]bool, root string, pointerWidth int) error {
	def := emit.TypeDef(a, nt.Type, pointerWidth)
	ser := emit.TypeSerDeser(a, nt.Type, pointerWidth)
	if err := writeFile(filepath.Join(modDir, nt.Name+".h"), def.Text); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(modDir, nt.Name+".gen.c"), ser.Text); err != nil {
		return err
	}

	for _, entry := range include.Closure(a, nt.Type) {
		if entry.Kind == include.EntryNamed || seenDerived[entry.TypeName] {
			continue
		}
		seenDerived[entry.TypeName] = true
		switch entry.Kind {
		case include.EntryDynArray:
			def, codec := emit.DynArrayDef(a, entry.Type, pointerWidth)
			dir := filepath.Join(root, "onboard", "photon", "_dynarray_")
			if err := writeFile(filepath.Join(dir, def.Path), def.Text); err != nil {
				return err
			}
			if err := writeFile(filepath.Join(dir, codec.Path), codec.Text); err != nil {
				return err
			}
		case include.EntryGeneric:
			f := emit.GenericInstantiationDef(a, entry.Type, pointerWidth)
			dir := filepath.Join(root, "onboard", "photon", "_generic_")
			if err := writeFile(filepath.Join(dir, f.Path), f.Text); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeComponent(a *graph.Arena, modDir, moduleName string, comp *ast.Component, pointerWidth int) error {
	varsDef := emit.TypeDef(a, comp.Vars, pointerWidth)
	if err := writeFile(filepath.Join(modDir, "Component.h"), varsDef.Text); err != nil {
		return err
	}

	decoder := emit.CommandDecoder(a, moduleName, comp, pointerWidth)
	encoder := emit.CommandEncoder(a, moduleName, comp, pointerWidth)
	if err := writeFile(filepath.Join(modDir, "CmdDecoder.Private.c"), decoder.Text); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(modDir, "CmdEncoder.Private.c"), encoder.Text); err != nil {
		return err
	}

	var statusEnc, statusDec strings.Builder
	for _, status := range sortedStatuses(comp) {
		statusEnc.WriteString(emit.StatusEncoder(a, moduleName, comp, status, pointerWidth).Text)
		statusEnc.WriteString("\n")
		statusDec.WriteString(emit.StatusDecoder(a, moduleName, comp, status, pointerWidth).Text)
		statusDec.WriteString("\n")
	}
	if err := writeFile(filepath.Join(modDir, "StatusEncoder.Private.c"), statusEnc.String()); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(modDir, "StatusDecoder.Private.c"), statusDec.String()); err != nil {
		return err
	}

	hasTraits := false
	for _, cmd := range comp.Commands {
		if cmd.CmdTrait != nil {
			hasTraits = true
			break
		}
	}
	if hasTraits {
		traits := emit.CommandTraits(moduleName, comp)
		if err := writeFile(filepath.Join(modDir, traits.Path), traits.Text); err != nil {
			return err
		}
	}
	return nil
}

func sortedStatuses(comp *ast.Component) []*ast.StatusMsg {
	out := make([]*ast.StatusMsg, 0, len(comp.Statuses))
	for _, s := range comp.Statuses {
		out = append(out, s)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].ID > out[j].ID; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func deviceAggregator(dev *project.Device, moduleNames, cmdTargets, tmSources []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#ifndef PHOTON_DEVICE_%s_H\n#define PHOTON_DEVICE_%s_H\n\n", strings.ToUpper(dev.Name), strings.ToUpper(dev.Name))
	fmt.Fprintf(&b, "#define PHOTON_DEVICE_%s %d\n\n", strings.ToUpper(dev.Name), dev.ID)
	for _, m := range moduleNames {
		fmt.Fprintf(&b, "#define PHOTON_HAS_MODULE_%s\n", strings.ToUpper(m))
		fmt.Fprintf(&b, "#include \"photon/%s/Component.h\"\n", m)
	}
	b.WriteString("\n")
	for _, t := range cmdTargets {
		fmt.Fprintf(&b, "#define PHOTON_HAS_CMD_TARGET_%s\n", strings.ToUpper(t))
	}
	for _, s := range tmSources {
		fmt.Fprintf(&b, "#define PHOTON_HAS_TM_SOURCE_%s\n", strings.ToUpper(s))
	}
	b.WriteString("\n#endif\n")
	return b.String()
}

// WritePackageBlob writes Package.Private.inc.c (spec.md §4.K step 6):
// the complete serialized-module-contents blob with its SHA-3 hash,
// computed concurrently with per-device generation (spec.md §5) and
// passed in ready-built by the caller once both finish.
func WritePackageBlob(outDir string, b *blob.Blob) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "static const unsigned char kPhotonPackageBlob[] = {\n")
	for i, byt := range b.Compressed {
		if i%16 == 0 {
			sb.WriteString("    ")
		}
		fmt.Fprintf(&sb, "0x%02x, ", byt)
		if i%16 == 15 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n};\n")
	fmt.Fprintf(&sb, "static const unsigned int kPhotonPackageBlobSize = %d;\n", len(b.Compressed))
	fmt.Fprintf(&sb, "static const unsigned char kPhotonPackageHash[32] = {\n    ")
	for _, byt := range b.Hash {
		fmt.Fprintf(&sb, "0x%02x, ", byt)
	}
	sb.WriteString("\n};\n")
	return writeFile(filepath.Join(outDir, "Package.Private.inc.c"), sb.String())
}

// copyExtraSource copies an externally-declared source file (`mod.toml`'s
// `sources` list) into modDir under its own base name, verbatim.
func copyExtraSource(modDir, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("output: reading external source %s: %w", path, err)
	}
	return writeFile(filepath.Join(modDir, filepath.Base(path)), string(data))
}

func writeFile(path, contents string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("output: creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("output: writing %s: %w", path, err)
	}
	return nil
}
