// Package link implements the package linker (spec.md §4.E): component
// registration, import resolution, and status-path resolution, run in that
// order over every Ast in a Package.
package link

import (
	"sort"

	"github.com/cpb9/photongen/internal/ast"
	"github.com/cpb9/photongen/internal/diag"
	"github.com/cpb9/photongen/internal/graph"
)

// Package owns a name→Ast map, the registered components by id, and a flat
// list of (component, statusMsg) pairs (spec.md §3 "Package and project").
type Package struct {
	Arena *graph.Arena
	Asts  map[string]*ast.Ast

	Components map[int]*ast.Component

	// StatusPairs is the flat (component, statusMsg) list built during
	// phase 3, in component-registration then status-id order.
	StatusPairs []StatusPair
}

// StatusPair names one (Component, StatusMsg) combination.
type StatusPair struct {
	Component *ast.Component
	Status    *ast.StatusMsg
}

// NewPackage creates an empty Package sharing arena across every Ast
// inserted into it.
func NewPackage(arena *graph.Arena) *Package {
	return &Package{Arena: arena, Asts: make(map[string]*ast.Ast), Components: make(map[int]*ast.Component)}
}

// AddAst registers a parsed module under its module name. Returns false if
// the name is already taken.
func (pkg *Package) AddAst(a *ast.Ast) bool {
	if _, dup := pkg.Asts[a.Module.Name]; dup {
		return false
	}
	pkg.Asts[a.Module.Name] = a
	return true
}

// Link runs all three phases over every Ast in pkg, in the deterministic
// order of sorted module names, and reports every problem it finds to sink
// rather than bailing at the first one (spec.md §4.E, §7).
func Link(pkg *Package, sink *diag.Sink) {
	names := make([]string, 0, len(pkg.Asts))
	for name := range pkg.Asts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		registerComponent(pkg, pkg.Asts[name])
	}
	for _, name := range names {
		resolveImports(pkg, pkg.Asts[name], sink)
	}
	for _, name := range names {
		resolveStatusPaths(pkg, pkg.Asts[name], sink)
	}
}

// registerComponent implements phase 1.
func registerComponent(pkg *Package, a *ast.Ast) {
	if a.Comp == nil {
		return
	}
	id := len(pkg.Components)
	a.Comp.Number = id
	pkg.Components[id] = a.Comp
}

// resolveImports implements phase 2.
func resolveImports(pkg *Package, a *ast.Ast, sink *diag.Sink) {
	for _, decl := range a.Imports {
		target, ok := pkg.Asts[decl.ModulePath]
		if !ok {
			sink.Errorf(diag.CodeLinkImportModule, a.Module.File, &decl.Span,
				"invalid import module %q", decl.ModulePath)
			continue
		}
		for _, it := range decl.Types {
			targetNT, ok := target.TypeByName(it.Name)
			if !ok {
				sink.Errorf(diag.CodeLinkImportType, a.Module.File, &it.Span,
					"invalid import type %q in module %q", it.Name, decl.ModulePath)
				continue
			}
			stub := pkg.Arena.Get(it.Type)
			resolved := pkg.Arena.Get(targetNT.Type)
			if resolved.Kind == graph.KindImported {
				sink.Errorf(diag.CodeLinkKindMismatch, a.Module.File, &it.Span,
					"circular imports: %q in module %q is itself an unresolved import", it.Name, decl.ModulePath)
				continue
			}
			stub.Link = targetNT.Type
		}
	}
}

// resolveStatusPaths implements phase 3.
func resolveStatusPaths(pkg *Package, a *ast.Ast, sink *diag.Sink) {
	comp := a.Comp
	if comp == nil {
		return
	}
	ids := make([]int, 0, len(comp.Statuses))
	for id := range comp.Statuses {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		msg := comp.Statuses[id]
		pkg.StatusPairs = append(pkg.StatusPairs, StatusPair{Component: comp, Status: msg})
		for _, rx := range msg.Regexps {
			resolvePath(pkg, a, comp, rx, sink)
		}
	}
}

func resolvePath(pkg *Package, a *ast.Ast, comp *ast.Component, rx *ast.StatusRegexp, sink *diag.Sink) {
	if len(rx.Path) == 0 {
		return
	}
	if rx.Path[0].Kind != ast.AccessorField {
		sink.Errorf(diag.CodeLinkPathField, a.Module.File, &rx.Path[0].Span,
			"a status path must begin with a field accessor")
		return
	}

	current := comp.Vars
	for i := range rx.Path {
		acc := &rx.Path[i]
		switch acc.Kind {
		case ast.AccessorField:
			resolved, err := graph.ResolveFinalType(pkg.Arena, current)
			if err != nil {
				sink.Errorf(diag.CodeLinkPathField, a.Module.File, &acc.Span, "%s", err.Error())
				return
			}
			ct := pkg.Arena.Get(resolved)
			if ct.Kind != graph.KindStruct {
				sink.Errorf(diag.CodeLinkPathField, a.Module.File, &acc.Span,
					"field accessor %q requires a struct, found %s", acc.Field, ct.Kind)
				return
			}
			field, idx, ok := ct.FieldByName(acc.Field)
			if !ok {
				sink.Errorf(diag.CodeLinkPathField, a.Module.File, &acc.Span,
					"unknown field %q on struct %q", acc.Field, ct.Name)
				return
			}
			acc.FieldIndex = idx
			acc.ContainerType = resolved
			acc.ResultType = field.Type
			current = field.Type

		case ast.AccessorIndex, ast.AccessorRange:
			resolved, err := graph.ResolveFinalType(pkg.Arena, current)
			if err != nil {
				sink.Errorf(diag.CodeLinkPathSubscript, a.Module.File, &acc.Span, "%s", err.Error())
				return
			}
			ct := pkg.Arena.Get(resolved)
			var elem graph.TypeID
			var length uint64
			hasLength := false
			switch ct.Kind {
			case graph.KindArray:
				elem, length, hasLength = ct.Elem, ct.Count, true
			case graph.KindDynArray:
				elem, length, hasLength = ct.Elem, ct.MaxCount, true
			default:
				sink.Errorf(diag.CodeLinkPathSubscript, a.Module.File, &acc.Span,
					"subscript over non-array/non-dyn-array type %s", ct.Kind)
				return
			}
			if acc.Kind == ast.AccessorIndex {
				if hasLength && acc.Index >= length {
					sink.Errorf(diag.CodeLinkPathRange, a.Module.File, &acc.Span,
						"index %d out of bounds for container of length %d", acc.Index, length)
					return
				}
			} else {
				if acc.Lower > acc.Upper || (hasLength && acc.Upper > length) {
					sink.Errorf(diag.CodeLinkPathRange, a.Module.File, &acc.Span,
						"range [%d..%d) out of bounds for container of length %d", acc.Lower, acc.Upper, length)
					return
				}
			}
			acc.ContainerType = resolved
			acc.ResultType = elem
			current = elem
		}
	}

	terminal, err := graph.ResolveFinalType(pkg.Arena, current)
	if err != nil {
		sink.Errorf(diag.CodeLinkPathField, a.Module.File, &rx.Span, "%s", err.Error())
		return
	}
	rx.Terminal = terminal
}
