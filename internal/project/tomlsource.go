package project

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// TOMLSource implements ProjectSource over byte slices already obtained by
// the caller (spec.md §1: file I/O and directory walking are out of
// scope). Files is keyed by the relative or absolute path a `module_dirs`
// or `dest` entry names.
type TOMLSource struct {
	ProjectBytes []byte
	Files        map[string][]byte
}

// NewTOMLSource wraps pre-read TOML bytes.
func NewTOMLSource(projectBytes []byte, files map[string][]byte) *TOMLSource {
	return &TOMLSource{ProjectBytes: projectBytes, Files: files}
}

// ReadProject decodes the top-level project TOML document.
func (s *TOMLSource) ReadProject() (RawProject, error) {
	var rp RawProject
	if err := toml.Unmarshal(s.ProjectBytes, &rp); err != nil {
		return RawProject{}, fmt.Errorf("parsing project file: %w", err)
	}
	return rp, nil
}

// ReadModuleDir decodes a `dir.toml` document.
func (s *TOMLSource) ReadModuleDir(path string) (RawModuleDir, error) {
	data, ok := s.Files[path]
	if !ok {
		return RawModuleDir{}, fmt.Errorf("no such module-dir file %q", path)
	}
	var rd RawModuleDir
	if err := toml.Unmarshal(data, &rd); err != nil {
		return RawModuleDir{}, fmt.Errorf("parsing %q: %w", path, err)
	}
	return rd, nil
}

// ReadModule decodes a `mod.toml` document.
func (s *TOMLSource) ReadModule(path string) (RawModule, error) {
	data, ok := s.Files[path]
	if !ok {
		return RawModule{}, fmt.Errorf("no such module file %q", path)
	}
	var rm RawModule
	if err := toml.Unmarshal(data, &rm); err != nil {
		return RawModule{}, fmt.Errorf("parsing %q: %w", path, err)
	}
	return rm, nil
}
