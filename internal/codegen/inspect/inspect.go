// Package inspect implements the Inline Inspector (spec.md §4.I): the
// central dispatch that both the on-board C and ground-control C++
// emitters drive to serialize or deserialize a single value.
package inspect

import (
	"fmt"
	"strings"

	"github.com/cpb9/photongen/internal/codegen/mangle"
	"github.com/cpb9/photongen/internal/graph"
)

// Direction selects whether emitted code reads or writes the target
// expression.
type Direction int

const (
	Serialize Direction = iota
	Deserialize
)

// Context carries indentation and loop-variable naming state across a
// recursive Array descent (spec.md §4.I: "context.indent().incLoopVar()").
type Context struct {
	Indent   int
	LoopVars int
}

// Indented returns a copy of c with one more indent level.
func (c Context) Indented() Context { return Context{Indent: c.Indent + 1, LoopVars: c.LoopVars} }

// IncLoopVar returns a copy of c with the loop-variable counter advanced,
// and the name to use for the new loop variable (i, j, k, l, m, n, then i6,
// i7, ... by depth).
func (c Context) IncLoopVar() (Context, string) {
	next := Context{Indent: c.Indent, LoopVars: c.LoopVars + 1}
	return next, loopVarName(c.LoopVars)
}

func loopVarName(n int) string {
	names := "ijklmn"
	if n < len(names) {
		return string(names[n])
	}
	return fmt.Sprintf("i%d", n)
}

func (c Context) pad() string { return strings.Repeat("    ", c.Indent) }

// FixedSize reports whether id has a statically-known wire byte size, and
// that size if so (spec.md §4.I "Fixed-size computation"): true for
// fixed-width builtins (USize/ISize at pointerWidth/8 bytes), for
// References and Functions (always pointerWidth/8 bytes, whatever the
// pointee), and for fixed-size arrays/structs of fixed-size elements; false
// for everything else (Varuint/Varint/DynArray/Variant/Enum/
// GenericInstantiation, etc).
func FixedSize(a *graph.Arena, id graph.TypeID, pointerWidth int) (int, bool) {
	t := a.Get(id)
	switch t.Kind {
	case graph.KindBuiltin:
		return t.Builtin.FixedWidth(pointerWidth)
	case graph.KindReference, graph.KindFunction:
		return pointerWidth / 8, true
	case graph.KindArray:
		elemSize, ok := FixedSize(a, t.Elem, pointerWidth)
		if !ok {
			return 0, false
		}
		return elemSize * int(t.Count), true
	case graph.KindStruct:
		total := 0
		for _, f := range t.Fields {
			size, ok := FixedSize(a, f.Type, pointerWidth)
			if !ok {
				return 0, false
			}
			total += size
		}
		return total, true
	case graph.KindAlias:
		return FixedSize(a, t.AliasTarget, pointerWidth)
	case graph.KindImported:
		if t.Link != graph.Nil {
			return FixedSize(a, t.Link, pointerWidth)
		}
		return 0, false
	default:
		return 0, false
	}
}

// Emit appends to dst the code performing dir on expr:id, following the
// §4.I dispatch table. expr is the target C/C++ expression (an lvalue for
// Deserialize, any expression for Serialize). onboard selects C call
// spelling (`_Serialize`/`_Deserialize`) vs ground-control C++
// (`serialize`/`deserialize`); both share the same dispatch shape.
func Emit(dst *strings.Builder, a *graph.Arena, id graph.TypeID, expr string, dir Direction, ctx Context, onboard bool, pointerWidth int) {
	t := a.Get(id)
	switch t.Kind {
	case graph.KindBuiltin:
		emitBuiltin(dst, t, expr, dir, ctx)
	case graph.KindReference, graph.KindFunction:
		emitPointer(dst, expr, dir, ctx)
	case graph.KindArray:
		emitArray(dst, a, t, expr, dir, ctx, onboard, pointerWidth)
	case graph.KindDynArray, graph.KindStruct, graph.KindVariant, graph.KindGenericInstantiation:
		emitNonInlineCall(dst, mangle.Name(a, id), expr, dir, ctx, onboard)
	case graph.KindEnum:
		emitNonInlineCall(dst, t.Name, expr, dir, ctx, onboard)
	case graph.KindImported:
		if t.Link != graph.Nil {
			Emit(dst, a, t.Link, expr, dir, ctx, onboard, pointerWidth)
			return
		}
		emitNonInlineCall(dst, t.Name, expr, dir, ctx, onboard)
	case graph.KindAlias:
		Emit(dst, a, t.AliasTarget, expr, dir, ctx, onboard, pointerWidth)
	}
}

func emitBuiltin(dst *strings.Builder, t *graph.Type, expr string, dir Direction, ctx Context) {
	verb := builtinVerb(t.Builtin)
	if dir == Serialize {
		fmt.Fprintf(dst, "%sWIRE_PUT_%s(dest, %s);\n", ctx.pad(), verb, expr)
	} else {
		fmt.Fprintf(dst, "%s%s = WIRE_GET_%s(src);\n", ctx.pad(), expr, verb)
	}
}

func builtinVerb(b graph.Builtin) string {
	switch b {
	case graph.Varuint:
		return "VARUINT"
	case graph.Varint:
		return "VARINT"
	case graph.Bool:
		return "BOOL"
	case graph.Char:
		return "CHAR"
	default:
		return strings.ToUpper(b.String())
	}
}

func emitPointer(dst *strings.Builder, expr string, dir Direction, ctx Context) {
	if dir == Serialize {
		fmt.Fprintf(dst, "%sWIRE_PUT_POINTER(dest, %s);\n", ctx.pad(), expr)
	} else {
		fmt.Fprintf(dst, "%s%s = WIRE_GET_POINTER(src);\n", ctx.pad(), expr)
	}
}

func emitNonInlineCall(dst *strings.Builder, typeName, expr string, dir Direction, ctx Context, onboard bool) {
	if onboard {
		if dir == Serialize {
			fmt.Fprintf(dst, "%s%s_Serialize(&%s, dest);\n", ctx.pad(), typeName, expr)
		} else {
			fmt.Fprintf(dst, "%s%s_Deserialize(&%s, src);\n", ctx.pad(), typeName, expr)
		}
		return
	}
	if dir == Serialize {
		fmt.Fprintf(dst, "%s%s.serialize(dest);\n", ctx.pad(), expr)
	} else {
		fmt.Fprintf(dst, "%s%s.deserialize(src);\n", ctx.pad(), expr)
	}
}

func emitArray(dst *strings.Builder, a *graph.Arena, t *graph.Type, expr string, dir Direction, ctx Context, onboard bool, pointerWidth int) {
	if size, ok := FixedSize(a, t.Elem, pointerWidth); ok {
		total := size * int(t.Count)
		fmt.Fprintf(dst, "%sWIRE_CHECK_SIZE(%d);\n", ctx.pad(), total)
	}
	inner, loopVar := ctx.IncLoopVar()
	fmt.Fprintf(dst, "%sfor (int %s = 0; %s < %d; %s++) {\n", ctx.pad(), loopVar, loopVar, t.Count, loopVar)
	elemExpr := fmt.Sprintf("%s[%s]", expr, loopVar)
	Emit(dst, a, t.Elem, elemExpr, dir, inner.Indented(), onboard, pointerWidth)
	fmt.Fprintf(dst, "%s}\n", ctx.pad())
}

// CoalesceFixedRuns groups a struct/message's fields (spec.md §4.I "Per-
// message field ordering"): consecutive fixed-size fields are coalesced
// into one Run with their total byte count; a variable-sized field starts
// its own single-field Run and breaks the preceding coalesced run.
func CoalesceFixedRuns(a *graph.Arena, fields []graph.Field, pointerWidth int) []Run {
	var runs []Run
	for _, f := range fields {
		size, fixed := FixedSize(a, f.Type, pointerWidth)
		if fixed && len(runs) > 0 && runs[len(runs)-1].Fixed {
			last := &runs[len(runs)-1]
			last.Fields = append(last.Fields, f)
			last.TotalSize += size
			continue
		}
		runs = append(runs, Run{Fixed: fixed, Fields: []graph.Field{f}, TotalSize: size})
	}
	return runs
}

// Run is a maximal consecutive group of fixed-size fields (Fixed == true,
// coalesced under one size check) or a single variable-sized field
// (Fixed == false).
type Run struct {
	Fixed     bool
	Fields    []graph.Field
	TotalSize int
}
