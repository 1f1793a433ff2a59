package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cpb9/photongen/internal/ast"
	"github.com/cpb9/photongen/internal/codegen/blob"
	"github.com/cpb9/photongen/internal/config"
	"github.com/cpb9/photongen/internal/diag"
	"github.com/cpb9/photongen/internal/graph"
	"github.com/cpb9/photongen/internal/link"
	"github.com/cpb9/photongen/internal/output"
	"github.com/cpb9/photongen/internal/parser"
	"github.com/cpb9/photongen/internal/project"
	"github.com/cpb9/photongen/internal/source"
)

// exitError carries a process exit code alongside a plain error, so
// main.go can set os.Exit appropriately (spec.md §6: 0 success, 1
// diagnostic error, 2 argument/IO failure) without cobra printing a
// second copy of the message.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

// ExitCode lets main.go translate a failed gen run into the exit code
// spec.md §6 mandates without re-deriving it from the error text.
func (e *exitError) ExitCode() int { return e.code }

func newGenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate on-board and ground-control sources from a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Config{
				ProjectFile:   viper.GetString("project"),
				OutDir:        viper.GetString("out"),
				DebugLevel:    viper.GetInt("debug"),
				CompressLevel: viper.GetInt("compress"),
				PointerWidth:  viper.GetInt("pointer-width"),
				Verbose:       viper.GetBool("verbose"),
			}.Clamp()
			if cfg.ProjectFile == "" {
				return &exitError{code: 2, err: fmt.Errorf("gen: -p/--project is required")}
			}
			cmd.SilenceUsage = true
			return runGen(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("project", "p", "", "project TOML file")
	flags.StringP("out", "o", ".", "output directory")
	flags.IntP("debug", "d", 0, "debug level [0,5]")
	flags.IntP("compress", "c", 2, "blob compression level [0,5]")
	flags.Int("pointer-width", 32, "default USize/ISize pointer width in bits (16, 32, or 64)")
	flags.Bool("verbose", false, "verbose logging")

	_ = viper.BindPFlag("project", flags.Lookup("project"))
	_ = viper.BindPFlag("out", flags.Lookup("out"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("compress", flags.Lookup("compress"))
	_ = viper.BindPFlag("pointer-width", flags.Lookup("pointer-width"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))

	return cmd
}

// runGen is the whole `gen` pipeline: read the project TOML and its
// referenced module sources from disk, parse and link them into a
// Package, load the Project, then materialize every device concurrently
// with computing the package blob (spec.md §5).
func runGen(cfg config.Config) error {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	projBytes, err := os.ReadFile(cfg.ProjectFile)
	if err != nil {
		return &exitError{code: 2, err: fmt.Errorf("gen: reading project file: %w", err)}
	}
	projSrc := project.NewTOMLSource(projBytes, nil)
	raw, err := projSrc.ReadProject()
	if err != nil {
		return &exitError{code: 2, err: fmt.Errorf("gen: %w", err)}
	}

	arena := graph.NewArena()
	sink := diag.NewSink()
	asts := make(map[string]*ast.Ast)
	extraSources := make(map[string][]string)
	var moduleSources []blob.Entry

	projDir := filepath.Dir(cfg.ProjectFile)
	for _, dirRel := range raw.Project.ModuleDirs {
		dirPath := filepath.Join(projDir, dirRel)
		dirTomlBytes, err := os.ReadFile(filepath.Join(dirPath, "dir.toml"))
		if err != nil {
			return &exitError{code: 2, err: fmt.Errorf("gen: reading %s/dir.toml: %w", dirRel, err)}
		}
		dirSrc := project.NewTOMLSource(nil, map[string][]byte{"dir.toml": dirTomlBytes})
		rd, err := dirSrc.ReadModuleDir("dir.toml")
		if err != nil {
			return &exitError{code: 2, err: fmt.Errorf("gen: %w", err)}
		}

		for _, modName := range rd.Modules {
			modDir := filepath.Join(dirPath, modName)
			modTomlBytes, err := os.ReadFile(filepath.Join(modDir, "mod.toml"))
			if err != nil {
				return &exitError{code: 2, err: fmt.Errorf("gen: reading %s/mod.toml: %w", modName, err)}
			}
			modSrc := project.NewTOMLSource(nil, map[string][]byte{"mod.toml": modTomlBytes})
			rm, err := modSrc.ReadModule("mod.toml")
			if err != nil {
				return &exitError{code: 2, err: fmt.Errorf("gen: %w", err)}
			}
			if rm.Decode == "" {
				logger.Warn("module declares no decode IDL source; skipping", "module", modName)
				continue
			}

			srcPath := filepath.Join(modDir, rm.Decode)
			text, err := os.ReadFile(srcPath)
			if err != nil {
				return &exitError{code: 2, err: fmt.Errorf("gen: reading %s: %w", srcPath, err)}
			}

			file := source.NewFileInfo(srcPath, string(text))
			a := parser.ParseFile(file, arena, sink)
			if a == nil {
				continue
			}
			asts[a.Module.Name] = a
			moduleSources = append(moduleSources, blob.Entry{Name: a.Module.Name, Contents: text})

			for _, extra := range rm.Sources {
				extraSources[a.Module.Name] = append(extraSources[a.Module.Name], filepath.Join(modDir, extra))
			}
		}
	}

	if reportErrors(logger, sink) {
		return &exitError{code: 1, err: fmt.Errorf("gen: parse errors")}
	}

	pkg := link.NewPackage(arena)
	for _, a := range asts {
		pkg.AddAst(a)
	}
	link.Link(pkg, sink)
	if reportErrors(logger, sink) {
		return &exitError{code: 1, err: fmt.Errorf("gen: link errors")}
	}

	resolve := func(name string) (*ast.Ast, bool) {
		a, ok := asts[name]
		return a, ok
	}
	proj, err := project.Load(projSrc, resolve, pkg, cfg.DebugLevel, cfg.CompressLevel, cfg.PointerWidth)
	if err != nil {
		return &exitError{code: 1, err: fmt.Errorf("gen: %w", err)}
	}

	var wg sync.WaitGroup
	var pkgBlob *blob.Blob
	var blobErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		pkgBlob, blobErr = blob.Build(moduleSources, proj.CompressLevel)
	}()

	for _, dev := range proj.Devices {
		if err := output.WriteDevice(logger, cfg.OutDir, dev, proj.Package, extraSources, proj.PointerWidth); err != nil {
			wg.Wait()
			return &exitError{code: 2, err: fmt.Errorf("gen: %w", err)}
		}
	}

	wg.Wait()
	if blobErr != nil {
		return &exitError{code: 2, err: fmt.Errorf("gen: building package blob: %w", blobErr)}
	}
	if err := output.WritePackageBlob(filepath.Join(cfg.OutDir, proj.Name), pkgBlob); err != nil {
		return &exitError{code: 2, err: fmt.Errorf("gen: %w", err)}
	}

	logger.Info("generation complete", "project", proj.Name, "devices", len(proj.Devices))
	return nil
}

func reportErrors(logger *slog.Logger, sink *diag.Sink) bool {
	sink.SortBySpan()
	for _, r := range sink.Reports() {
		logger.Error(r.String())
	}
	return sink.HasErrors()
}
