// Package source holds file contents and line-index bookkeeping shared by
// the lexer, parser, and diagnostics (spec.md §4.A).
package source

import (
	"strings"
	"unicode/utf8"
)

// Pos is a single point in a source file.
type Pos struct {
	Offset int // byte offset
	Line   int // 1-based
	Column int // 1-based, rune count from line start
}

// Span is a half-open [Start, End) range in a source file.
type Span struct {
	Start Pos
	End   Pos
}

// FileInfo owns a file's text and a precomputed line-start index so that a
// byte offset can be converted to (line, column) in O(log n).
type FileInfo struct {
	Name       string
	Text       string
	lineStarts []int // byte offset of the first byte of each line
}

// NewFileInfo builds a FileInfo and its line index for text.
func NewFileInfo(name, text string) *FileInfo {
	f := &FileInfo{Name: name, Text: text}
	f.lineStarts = append(f.lineStarts, 0)
	for i, b := range []byte(text) {
		if b == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	return f
}

// PosAt converts a byte offset into a line/column Pos.
func (f *FileInfo) PosAt(offset int) Pos {
	lo, hi := 0, len(f.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line := lo
	col := utf8.RuneCountInString(f.Text[f.lineStarts[line]:min(offset, len(f.Text))])
	return Pos{Offset: offset, Line: line + 1, Column: col + 1}
}

// Line returns the text of the given 1-based line number, without its
// trailing newline. Used by diagnostic rendering (caret lines are the
// pretty-printer's job and stay out of scope per spec.md §1).
func (f *FileInfo) Line(line int) string {
	if line < 1 || line > len(f.lineStarts) {
		return ""
	}
	start := f.lineStarts[line-1]
	end := len(f.Text)
	if line < len(f.lineStarts) {
		end = f.lineStarts[line] - 1
	}
	if start > end || start > len(f.Text) {
		return ""
	}
	return strings.TrimRight(f.Text[start:min(end, len(f.Text))], "\r")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ModuleInfo pairs a module's identifier with the FileInfo it was parsed
// from (spec.md §3, "File & module").
type ModuleInfo struct {
	Name string
	File *FileInfo
}

