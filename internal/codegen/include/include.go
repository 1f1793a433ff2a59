// Package include implements the dependency/include collector (spec.md
// §4.G): given a type, component, or message, it produces the set-of-types
// closure that the emitter must #include.
package include

import (
	"sort"

	"github.com/cpb9/photongen/internal/ast"
	"github.com/cpb9/photongen/internal/codegen/mangle"
	"github.com/cpb9/photongen/internal/graph"
)

// Entry is one member of an include closure: either a named module type, a
// dyn-array, or a generic instantiation (spec.md §4.G).
type Entry struct {
	Kind     EntryKind
	Type     graph.TypeID
	Module   string // set for Kind == EntryNamed
	TypeName string // the declared or mangled name, depending on Kind
}

// EntryKind discriminates the three include-path shapes spec.md §4.G names.
type EntryKind int

const (
	// EntryNamed produces `photon/<module>/<TypeName>.h`.
	EntryNamed EntryKind = iota
	// EntryDynArray produces `photon/_dynarray_/<Mangled>.h`.
	EntryDynArray
	// EntryGeneric produces `photon/_generic_/<Mangled>.h`.
	EntryGeneric
)

// Closure computes the include set for a single type (spec.md §4.G):
// Builtin/Reference/Array/Function are transparent and descended into;
// named types are added and NOT descended into (their own emitted header
// carries their own includes); DynArray is added as itself, its element
// collected separately; GenericInstantiation also adds its substitution
// types' dependencies. A Struct or Variant root is the type whose header is
// being generated: its own fields and branch payloads are collected and the
// root itself is not added.
func Closure(a *graph.Arena, id graph.TypeID) []Entry {
	c := &collector{arena: a, seen: make(map[graph.TypeID]bool)}
	roots := []graph.TypeID{id}
	if t := a.Get(id); t.Kind == graph.KindStruct || t.Kind == graph.KindVariant {
		roots = roots[:0]
		for _, f := range t.Fields {
			roots = append(roots, f.Type)
		}
		for _, vf := range t.VariantFields {
			roots = append(roots, vf.Tuple...)
			for _, f := range vf.Fields {
				roots = append(roots, f.Type)
			}
		}
	}
	for _, r := range roots {
		c.visit(r)
	}
	return c.sortedEntries()
}

// ComponentClosure computes the include set for an entire Component: every
// parameter type, every command argument/return type, and every
// status-message terminal type (spec.md §4.G).
func ComponentClosure(a *graph.Arena, comp *ast.Component) []Entry {
	c := &collector{arena: a, seen: make(map[graph.TypeID]bool)}
	if comp.Vars != graph.Nil {
		varsType := a.Get(comp.Vars)
		for _, f := range varsType.Fields {
			c.visit(f.Type)
		}
	}
	for _, cmd := range comp.Commands {
		fn := a.Get(cmd.Func.Type)
		for _, arg := range fn.Args {
			c.visit(arg.Type)
		}
		if fn.HasReturn {
			c.visit(fn.Return)
		}
	}
	for _, msg := range comp.Statuses {
		for _, rx := range msg.Regexps {
			if rx.Terminal != graph.Nil {
				c.visit(rx.Terminal)
			}
		}
	}
	return c.sortedEntries()
}

type collector struct {
	arena   *graph.Arena
	seen    map[graph.TypeID]bool
	entries []Entry
}

func (c *collector) visit(id graph.TypeID) {
	if id == graph.Nil || c.seen[id] {
		return
	}
	t := c.arena.Get(id)
	switch t.Kind {
	case graph.KindBuiltin:
		// transparent, nothing to include
	case graph.KindReference:
		c.visit(t.Pointee)
	case graph.KindArray:
		c.visit(t.Elem)
	case graph.KindFunction:
		for _, arg := range t.Args {
			c.visit(arg.Type)
		}
		if t.HasReturn {
			c.visit(t.Return)
		}
	case graph.KindDynArray:
		c.seen[id] = true
		c.entries = append(c.entries, Entry{Kind: EntryDynArray, Type: id, TypeName: mangle.Name(c.arena, id)})
		c.visit(t.Elem)
	case graph.KindEnum, graph.KindStruct, graph.KindVariant, graph.KindAlias:
		c.seen[id] = true
		c.entries = append(c.entries, Entry{Kind: EntryNamed, Type: id, Module: moduleName(t), TypeName: t.Name})
	case graph.KindImported:
		if t.Link != graph.Nil {
			c.visit(t.Link)
			return
		}
		c.seen[id] = true
		c.entries = append(c.entries, Entry{Kind: EntryNamed, Type: id, Module: t.ImportPath, TypeName: t.Name})
	case graph.KindGeneric:
		c.seen[id] = true
		c.entries = append(c.entries, Entry{Kind: EntryNamed, Type: id, Module: moduleName(t), TypeName: t.Name})
	case graph.KindGenericInstantiation:
		c.seen[id] = true
		c.entries = append(c.entries, Entry{Kind: EntryGeneric, Type: id, TypeName: mangle.Name(c.arena, id)})
		for _, sub := range t.Substitutions {
			c.visit(sub)
		}
	case graph.KindGenericParameter:
		// only reachable while still inside a Generic body; nothing to
		// include for an unbound parameter.
	}
}

func (c *collector) sortedEntries() []Entry {
	out := append([]Entry(nil), c.entries...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		return out[i].TypeName < out[j].TypeName
	})
	return out
}

func moduleName(t *graph.Type) string {
	if t.Module == nil {
		return ""
	}
	return t.Module.Name
}

// Path renders e's #include path (spec.md §4.G). onboard selects the
// `.h`/ground-control `.hpp` extension.
func (e Entry) Path(onboard bool) string {
	ext := ".hpp"
	if onboard {
		ext = ".h"
	}
	switch e.Kind {
	case EntryDynArray:
		return "photon/_dynarray_/" + e.TypeName + ext
	case EntryGeneric:
		return "photon/_generic_/" + e.TypeName + ext
	default:
		return "photon/" + e.Module + "/" + e.TypeName + ext
	}
}
