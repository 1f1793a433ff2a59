// Package mangle implements the deterministic type-name mangler (spec.md
// §4.H), used as both generated-file names and C identifiers.
package mangle

import (
	"strings"

	"github.com/cpb9/photongen/internal/graph"
)

// Name returns the mangled name for id's resolved structure (spec.md §4.H).
// Builtins, arrays, references, and dyn-arrays are named structurally;
// named types (Struct/Enum/Variant/Alias/Imported link target) are named by
// (module, declared name); GenericInstantiation concatenates the generic's
// own mangled name with each substitution's mangled name.
func Name(a *graph.Arena, id graph.TypeID) string {
	t := a.Get(id)
	switch t.Kind {
	case graph.KindBuiltin:
		return capitalize(t.Builtin.String())
	case graph.KindArray:
		return "ArrOf" + Name(a, t.Elem)
	case graph.KindReference:
		prefix := "RefTo"
		if t.RefKind == graph.Pointer {
			prefix = "PtrTo"
		}
		if t.Mut == graph.Mut {
			prefix = "Mut" + prefix
		}
		return prefix + Name(a, t.Pointee)
	case graph.KindDynArray:
		return "SliceOf" + Name(a, t.Elem)
	case graph.KindEnum, graph.KindStruct, graph.KindVariant, graph.KindAlias, graph.KindGeneric:
		return moduleName(t) + t.Name
	case graph.KindImported:
		if t.Link != graph.Nil {
			return Name(a, t.Link)
		}
		return moduleName(t) + t.Name
	case graph.KindGenericInstantiation:
		g := a.Get(t.Generic)
		name := moduleName(g) + g.Name
		for _, sub := range t.Substitutions {
			name += Name(a, sub)
		}
		return name
	case graph.KindFunction:
		return "Fn"
	case graph.KindGenericParameter:
		return t.ParamName
	default:
		return "Unknown"
	}
}

func moduleName(t *graph.Type) string {
	if t.Module == nil {
		return ""
	}
	return capitalize(t.Module.Name)
}

// capitalize upper-cases the first rune of s; used for both builtin and
// module-name mangling (spec.md §4.H: "Capitalized(moduleName)").
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
