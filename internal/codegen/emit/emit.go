// Package emit implements the independent artifact emitters (spec.md
// §4.J): TypeDef, TypeSer/Deser, DynArray, generic instantiation, command
// decoder/encoder, status encoder/decoder, and the ground-control headers
// supplemented in SPEC_FULL.md §4.P. Each emitter writes into a shared
// *strings.Builder text buffer; formatting helpers (include guards,
// `#ifdef PHOTON_HAS_MODULE_*` gates, literals, indented loops) live here
// so every artifact emitter shares one low-level vocabulary.
package emit

import (
	"fmt"
	"strings"

	"github.com/cpb9/photongen/internal/codegen/inspect"
	"github.com/cpb9/photongen/internal/codegen/mangle"
	"github.com/cpb9/photongen/internal/graph"
)

// File is one generated source file: its relative output path and text.
type File struct {
	Path string
	Text string
}

// Builder accumulates one generated file's text with include-guard and
// module-gate helpers shared across every emitter in this package.
type Builder struct {
	strings.Builder
}

// IncludeGuard wraps body between `#ifndef/#define/#endif` for guardName.
func (b *Builder) IncludeGuard(guardName string, body func()) {
	fmt.Fprintf(b, "#ifndef %s\n#define %s\n\n", guardName, guardName)
	body()
	fmt.Fprintf(b, "\n#endif // %s\n", guardName)
}

// ModuleGate wraps body in `#ifdef PHOTON_HAS_MODULE_<NAME>` / `#endif`.
func (b *Builder) ModuleGate(moduleName string, body func()) {
	tag := "PHOTON_HAS_MODULE_" + strings.ToUpper(moduleName)
	fmt.Fprintf(b, "#ifdef %s\n", tag)
	body()
	fmt.Fprintf(b, "#endif // %s\n", tag)
}

// Include writes a `#include "path"` line.
func (b *Builder) Include(path string) {
	fmt.Fprintf(b, "#include %q\n", path)
}

// Linef writes one formatted, newline-terminated line.
func (b *Builder) Linef(format string, args ...any) {
	fmt.Fprintf(b, format+"\n", args...)
}

// cFieldDecl renders a struct field's C declaration (best-effort: builtin
// and named-type fields render as `<CType> <name>;`; arrays render as
// `<CType> <name>[N];`).
func cFieldDecl(a *graph.Arena, f graph.Field, pointerWidth int) string {
	if t := a.Get(f.Type); t.Kind == graph.KindArray {
		return fmt.Sprintf("%s %s[%d];", cTypeName(a, t.Elem, pointerWidth), f.Name, t.Count)
	}
	return fmt.Sprintf("%s %s;", cTypeName(a, f.Type, pointerWidth), f.Name)
}

// cTypeName renders id's C spelling: builtins map to fixed-width C types,
// named types to their mangled/declared struct name, arrays to a bracket
// suffix applied by the caller (cFieldDecl keeps this to a single level,
// matching the generator's struct-of-arrays-free field layout).
func cTypeName(a *graph.Arena, id graph.TypeID, pointerWidth int) string {
	t := a.Get(id)
	switch t.Kind {
	case graph.KindBuiltin:
		return cBuiltinName(t.Builtin, pointerWidth)
	case graph.KindArray:
		return cTypeName(a, t.Elem, pointerWidth)
	case graph.KindReference:
		return cTypeName(a, t.Pointee, pointerWidth) + "*"
	case graph.KindEnum, graph.KindStruct, graph.KindVariant, graph.KindAlias:
		return "Photon" + mangle.Name(a, id)
	case graph.KindDynArray, graph.KindGenericInstantiation:
		return "Photon" + mangle.Name(a, id)
	case graph.KindImported:
		if t.Link != graph.Nil {
			return cTypeName(a, t.Link, pointerWidth)
		}
		return "Photon" + t.Name
	default:
		return "void"
	}
}

// cBuiltinName renders b's fixed-width C type, taking USize/ISize's width
// from pointerWidth (spec.md §6 "USize/ISize: little-endian with pointer
// width taken from target_pointer_width configuration option").
func cBuiltinName(b graph.Builtin, pointerWidth int) string {
	switch b {
	case graph.U8:
		return "uint8_t"
	case graph.U16:
		return "uint16_t"
	case graph.U32, graph.Varuint:
		return "uint32_t"
	case graph.U64:
		return "uint64_t"
	case graph.I8:
		return "int8_t"
	case graph.I16:
		return "int16_t"
	case graph.I32, graph.Varint:
		return "int32_t"
	case graph.I64:
		return "int64_t"
	case graph.USize:
		return uSizeCType(pointerWidth)
	case graph.ISize:
		return iSizeCType(pointerWidth)
	case graph.F32:
		return "float"
	case graph.F64:
		return "double"
	case graph.Bool:
		return "bool"
	case graph.Char:
		return "char"
	default:
		return "void"
	}
}

func uSizeCType(pointerWidth int) string {
	switch pointerWidth {
	case 16:
		return "uint16_t"
	case 64:
		return "uint64_t"
	default:
		return "uint32_t"
	}
}

func iSizeCType(pointerWidth int) string {
	switch pointerWidth {
	case 16:
		return "int16_t"
	case 64:
		return "int64_t"
	default:
		return "int32_t"
	}
}

// TypeDef emits the C declaration for a named type (struct/enum/variant)
// (spec.md §4.J "TypeDef"). Variants render a tag enum, per-branch payload
// structs, and an outer struct with `type`/`data` fields.
func TypeDef(a *graph.Arena, id graph.TypeID, pointerWidth int) File {
	t := a.Get(id)
	var b Builder
	name := "Photon" + mangle.Name(a, id)
	switch t.Kind {
	case graph.KindStruct:
		b.Linef("typedef struct {")
		for _, f := range t.Fields {
			if arrType := a.Get(f.Type); arrType.Kind == graph.KindArray {
				b.Linef("    %s %s[%d];", cTypeName(a, arrType.Elem, pointerWidth), f.Name, arrType.Count)
			} else {
				b.Linef("    %s", cFieldDecl(a, f, pointerWidth))
			}
		}
		b.Linef("} %s;", name)
	case graph.KindEnum:
		b.Linef("typedef enum {")
		for _, c := range t.Constants {
			b.Linef("    %s_%s = %d,", name, c.Name, c.Value)
		}
		b.Linef("} %s;", name)
	case graph.KindVariant:
		emitVariantTypeDef(&b, a, name, t, pointerWidth)
	}
	return File{Path: name + ".h", Text: b.String()}
}

func emitVariantTypeDef(b *Builder, a *graph.Arena, name string, t *graph.Type, pointerWidth int) {
	b.Linef("typedef enum {")
	for _, vf := range t.VariantFields {
		b.Linef("    %s_Tag_%s,", name, vf.Name)
	}
	b.Linef("} %s_Tag;", name)
	for _, vf := range t.VariantFields {
		switch vf.Kind {
		case graph.VariantTuple:
			b.Linef("typedef struct {")
			for i, elemID := range vf.Tuple {
				b.Linef("    %s _%d;", cTypeName(a, elemID, pointerWidth), i)
			}
			b.Linef("} %s_%s;", name, vf.Name)
		case graph.VariantStruct:
			b.Linef("typedef struct {")
			for _, f := range vf.Fields {
				b.Linef("    %s", cFieldDecl(a, f, pointerWidth))
			}
			b.Linef("} %s_%s;", name, vf.Name)
		}
	}
	b.Linef("typedef struct {")
	b.Linef("    %s_Tag type;", name)
	b.Linef("    union {")
	for _, vf := range t.VariantFields {
		if vf.Kind != graph.VariantConstant {
			b.Linef("        %s_%s %s;", name, vf.Name, vf.Name)
		}
	}
	b.Linef("    } data;")
	b.Linef("} %s;", name)
}

// TypeSerDeser emits a named type's two symmetrical codec functions
// (spec.md §4.J "TypeSer/Deser"), driving the Inline Inspector for bodies.
func TypeSerDeser(a *graph.Arena, id graph.TypeID, pointerWidth int) File {
	name := "Photon" + mangle.Name(a, id)
	t := a.Get(id)
	var b Builder
	b.Linef("void %s_Serialize(const %s* self, PhotonWriter* dest) {", name, name)
	emitStructOrEnumBody(&b, a, t, "self", inspect.Serialize, pointerWidth)
	b.Linef("}")
	b.Linef("")
	b.Linef("void %s_Deserialize(%s* self, PhotonReader* src) {", name, name)
	emitStructOrEnumBody(&b, a, t, "self", inspect.Deserialize, pointerWidth)
	b.Linef("}")
	return File{Path: name + ".c", Text: b.String()}
}

func emitStructOrEnumBody(b *Builder, a *graph.Arena, t *graph.Type, self string, dir inspect.Direction, pointerWidth int) {
	switch t.Kind {
	case graph.KindEnum:
		if dir == inspect.Serialize {
			b.Linef("    WIRE_PUT_VARINT(dest, (int64_t)*%s);", self)
		} else {
			b.Linef("    *%s = (typeof(*%s))WIRE_GET_VARINT(src);", self, self)
		}
	case graph.KindStruct:
		runs := inspect.CoalesceFixedRuns(a, t.Fields, pointerWidth)
		for _, run := range runs {
			if run.Fixed {
				b.Linef("    WIRE_CHECK_SIZE(%d);", run.TotalSize)
			}
			for _, f := range run.Fields {
				var body strings.Builder
				inspect.Emit(&body, a, f.Type, fmt.Sprintf("%s->%s", self, f.Name), dir, inspect.Context{Indent: 1}, true, pointerWidth)
				b.WriteString(body.String())
			}
		}
	case graph.KindVariant:
		if dir == inspect.Serialize {
			b.Linef("    WIRE_PUT_VARUINT(dest, (uint32_t)%s->type);", self)
		} else {
			b.Linef("    %s->type = (typeof(%s->type))WIRE_GET_VARUINT(src);", self, self)
		}
		b.Linef("    switch (%s->type) {", self)
		for i, vf := range t.VariantFields {
			b.Linef("    case %d: {", i)
			emitVariantBranchBody(b, a, vf, self, dir, pointerWidth)
			b.Linef("        break;")
			b.Linef("    }")
		}
		b.Linef("    }")
	}
}

func emitVariantBranchBody(b *Builder, a *graph.Arena, vf graph.VariantField, self string, dir inspect.Direction, pointerWidth int) {
	switch vf.Kind {
	case graph.VariantConstant:
		// no payload
	case graph.VariantTuple:
		for i, elemID := range vf.Tuple {
			var body strings.Builder
			expr := fmt.Sprintf("%s->data.%s._%d", self, vf.Name, i)
			inspect.Emit(&body, a, elemID, expr, dir, inspect.Context{Indent: 2}, true, pointerWidth)
			b.WriteString(body.String())
		}
	case graph.VariantStruct:
		for _, f := range vf.Fields {
			var body strings.Builder
			expr := fmt.Sprintf("%s->data.%s.%s", self, vf.Name, f.Name)
			inspect.Emit(&body, a, f.Type, expr, dir, inspect.Context{Indent: 2}, true, pointerWidth)
			b.WriteString(body.String())
		}
	}
}

// DynArrayDef emits the `{ data[maxSize]; size; }` struct plus its two
// codecs for a DynArray type, keyed by mangled name so identical dyn-array
// shapes deduplicate across modules (spec.md §4.J "DynArray").
func DynArrayDef(a *graph.Arena, id graph.TypeID, pointerWidth int) (File, File) {
	t := a.Get(id)
	name := "Photon" + mangle.Name(a, id)
	var def Builder
	def.Linef("typedef struct {")
	def.Linef("    %s data[%d];", cTypeName(a, t.Elem, pointerWidth), t.MaxCount)
	def.Linef("    uint32_t size;")
	def.Linef("} %s;", name)

	var codec Builder
	codec.Linef("void %s_Serialize(const %s* self, PhotonWriter* dest) {", name, name)
	codec.Linef("    WIRE_PUT_VARUINT(dest, self->size);")
	codec.Linef("    for (uint32_t i = 0; i < self->size; i++) {")
	var elemBody strings.Builder
	inspect.Emit(&elemBody, a, t.Elem, "self->data[i]", inspect.Serialize, inspect.Context{Indent: 2}, true, pointerWidth)
	codec.WriteString(elemBody.String())
	codec.Linef("    }")
	codec.Linef("}")
	codec.Linef("")
	codec.Linef("void %s_Deserialize(%s* self, PhotonReader* src) {", name, name)
	codec.Linef("    self->size = (uint32_t)WIRE_GET_VARUINT(src);")
	codec.Linef("    if (self->size > %d) { PHOTON_FATAL(\"dynarray length exceeds max\"); }", t.MaxCount)
	codec.Linef("    for (uint32_t i = 0; i < self->size; i++) {")
	var elemBody2 strings.Builder
	inspect.Emit(&elemBody2, a, t.Elem, "self->data[i]", inspect.Deserialize, inspect.Context{Indent: 2}, true, pointerWidth)
	codec.WriteString(elemBody2.String())
	codec.Linef("    }")
	codec.Linef("}")

	return File{Path: name + ".h", Text: def.String()}, File{Path: name + ".c", Text: codec.String()}
}

// GenericInstantiationDef emits the substituted body of a generic
// instantiation like a plain TypeDef, under the mangled name (spec.md
// §4.J "Generic instantiation").
func GenericInstantiationDef(a *graph.Arena, id graph.TypeID, pointerWidth int) File {
	body := graph.SubstitutedBody(a, id)
	f := TypeDef(a, body, pointerWidth)
	f.Path = "Photon" + mangle.Name(a, id) + ".h"
	return f
}
