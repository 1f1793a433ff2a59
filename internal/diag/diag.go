// Package diag provides the structured diagnostic report shared by every
// compiler phase (lexer, parser, linker, project loader, generator).
package diag

import (
	"fmt"
	"sort"

	"github.com/cpb9/photongen/internal/source"
)

// Level is the severity of a Report.
type Level int

const (
	// Note is an informational diagnostic that never fails a build.
	Note Level = iota
	// Warning flags a questionable but non-fatal condition.
	Warning
	// Error flags a condition that must fail the build (spec.md §7).
	Error
)

func (l Level) String() string {
	switch l {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Code is a stable error-code identifier, grouped by phase prefix:
// LEX### (lexer), PAR### (parser), TYP### (type graph), LNK### (linker),
// PRJ### (project loader), GEN### (generator), IO### (materializer).
type Code string

const (
	CodeLexInvalid        Code = "LEX001"
	CodeParseExpected     Code = "PAR001"
	CodeParseDuplicate    Code = "PAR002"
	CodeTypeMismatch      Code = "TYP001"
	CodeTypeCyclicAlias   Code = "TYP002"
	CodeTypeArity         Code = "TYP003"
	CodeLinkImportModule  Code = "LNK001"
	CodeLinkImportType    Code = "LNK002"
	CodeLinkKindMismatch  Code = "LNK003"
	CodeLinkPathField     Code = "LNK010"
	CodeLinkPathSubscript Code = "LNK011"
	CodeLinkPathRange     Code = "LNK012"
	CodeLinkDuplicateID   Code = "LNK020"
	CodeProjectMaster     Code = "PRJ001"
	CodeProjectMCCID      Code = "PRJ002"
	CodeProjectUnknownRef Code = "PRJ003"
	CodeProjectDuplicate  Code = "PRJ004"
	CodeIO                Code = "IO001"
)

// Report is a single structured diagnostic. It carries enough to be
// rendered ("file:line:column: level: message") by an out-of-scope pretty
// printer, or to be asserted on directly in tests via Code.
type Report struct {
	Level Level
	Code  Code
	Span  *source.Span // nil when the diagnostic has no precise location
	File  *source.FileInfo
	Msg   string
	Data  map[string]any
}

// String renders the report as "file:line:column: level: message", the
// minimal plain-text form; a richer pretty-printer is out of scope (spec.md §1).
func (r *Report) String() string {
	loc := "<unknown>"
	if r.Span != nil {
		loc = fmt.Sprintf("%s:%d:%d", r.fileName(), r.Span.Start.Line, r.Span.Start.Column)
	} else if r.File != nil {
		loc = r.fileName()
	}
	return fmt.Sprintf("%s: %s: %s", loc, r.Level, r.Msg)
}

func (r *Report) fileName() string {
	if r.File != nil {
		return r.File.Name
	}
	return "<unknown>"
}

// Sink collects reports append-only (spec.md §4.A: "Diagnostics append-only;
// printing is external").
type Sink struct {
	reports []*Report
}

// NewSink creates an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{}
}

// Add appends a report to the sink.
func (s *Sink) Add(r *Report) {
	s.reports = append(s.reports, r)
}

// Errorf appends an Error-level report built from a code, optional span,
// and a formatted message.
func (s *Sink) Errorf(code Code, file *source.FileInfo, span *source.Span, format string, args ...any) {
	s.Add(&Report{Level: Error, Code: code, Span: span, File: file, Msg: fmt.Sprintf(format, args...)})
}

// Warnf appends a Warning-level report.
func (s *Sink) Warnf(code Code, file *source.FileInfo, span *source.Span, format string, args ...any) {
	s.Add(&Report{Level: Warning, Code: code, Span: span, File: file, Msg: fmt.Sprintf(format, args...)})
}

// Reports returns every collected report in insertion order.
func (s *Sink) Reports() []*Report {
	return s.reports
}

// HasErrors reports whether any Error-level diagnostic was collected; the
// CLI exit code is governed by this (spec.md §6).
func (s *Sink) HasErrors() bool {
	for _, r := range s.reports {
		if r.Level == Error {
			return true
		}
	}
	return false
}

// SortBySpan orders reports by file name then position, for deterministic
// output across otherwise-concurrent phases.
func (s *Sink) SortBySpan() {
	sort.SliceStable(s.reports, func(i, j int) bool {
		a, b := s.reports[i], s.reports[j]
		an, bn := a.fileName(), b.fileName()
		if an != bn {
			return an < bn
		}
		al, bl := 0, 0
		if a.Span != nil {
			al = a.Span.Start.Line
		}
		if b.Span != nil {
			bl = b.Span.Start.Line
		}
		return al < bl
	})
}
