// Package ast holds the per-file declaration tree produced by the parser
// (spec.md §3 "File & module", §4.C).
package ast

import (
	"github.com/cpb9/photongen/internal/graph"
	"github.com/cpb9/photongen/internal/source"
)

// DocBlock is the doc-comment buffer attached to a declaration: the first
// `///` line is the short description, the rest are the long description
// (spec.md §4.C).
type DocBlock struct {
	Short string
	Long  []string
}

// CfgPredicate is the recursive `#[cfg(...)]` predicate tree (spec.md §4.C).
type CfgPredicate struct {
	// Kind is one of "key", "not", "any", "all".
	Kind     string
	Key      string
	Value    string
	Children []*CfgPredicate
}

// Attribute is a parsed `#[...]` annotation. Only `cfg(...)` is structurally
// recognized by the compiler; any other name is stored with Raw populated
// and Cfg nil, and is otherwise inert (spec.md §4.C). `cmd_trait(...)`
// (SPEC_FULL.md §4.P) is likewise recognized structurally via CmdTrait.
type Attribute struct {
	Name      string
	Cfg       *CfgPredicate
	CmdTrait  *CmdTraitInfo
	Raw       string
	Span      source.Span
}

// CmdTraitInfo is the supplemented command-trait descriptor from
// SPEC_FULL.md §4.P, attached to a Command via `#[cmd_trait(name=..., desc=...)]`.
type CmdTraitInfo struct {
	Name string
	Desc string
}

// Const is a top-level named constant (integer-literal valued only; the
// compiler performs no general expression evaluation, spec.md §1 Non-goals).
type Const struct {
	Name  string
	Type  graph.TypeID
	Value int64
	Doc   *DocBlock
	Span  source.Span
}

// NamedType records a module-level named type declaration: its Name maps
// to a graph.TypeID allocated in the package Arena.
type NamedType struct {
	Name string
	Type graph.TypeID
	Doc  *DocBlock
	Span source.Span
}

// ImportedType is one identifier named inside an ImportDecl's `{ ... }` list
// (or the single-identifier form).
type ImportedType struct {
	Name string
	// Type is allocated eagerly as a graph.KindImported stub; the linker
	// fills its Link (spec.md §4.E phase 2).
	Type graph.TypeID
	Span source.Span
}

// ImportDecl is `import <module> :: (<ident> | { <ident>, ... })`.
type ImportDecl struct {
	ModulePath string
	Types      []*ImportedType
	Span       source.Span
}

// Function is a parsed `fn` signature. A body, when present, is skipped by
// the parser and not recorded; the compiler never interprets bodies
// (spec.md §1 Non-goals: "does not execute generated code").
type Function struct {
	Name     string
	Type     graph.TypeID // graph.KindFunction
	Attrs    []*Attribute
	Doc      *DocBlock
	Span     source.Span
}

// ImplBlock is `impl <TypeName> { fn ... }`; TargetName is resolved to a
// NamedType at link time (spec.md §4.C).
type ImplBlock struct {
	TargetName string
	Target     graph.TypeID
	Functions  []*Function
	Span       source.Span
}

// GenericDecl is a top-level `generic <Name><Params> <kind> { ... }`
// declaration; Type is the allocated graph.KindGeneric node.
type GenericDecl struct {
	Name string
	Type graph.TypeID
	Doc  *DocBlock
	Span source.Span
}

// Ast is the parsed content of one IDL source file (spec.md §3 "Package and
// project"). Once inserted into an Ast, declarations are immutable except
// for link-filling (Imported.Link, StatusRegexp accessor back-pointers,
// Component.Number).
type Ast struct {
	Module  *source.ModuleInfo
	Imports []*ImportDecl
	Types   []*NamedType
	Consts  []*Const
	Generic []*GenericDecl
	Impls   []*ImplBlock
	Comp    *Component // at most one per Ast (spec.md §3)

	typeByName map[string]*NamedType
}

// NewAst creates an empty Ast bound to mod.
func NewAst(mod *source.ModuleInfo) *Ast {
	return &Ast{Module: mod, typeByName: make(map[string]*NamedType)}
}

// AddType registers a top-level named type. It returns false if name is
// already declared in this module (spec.md §3 invariant 1).
func (a *Ast) AddType(nt *NamedType) bool {
	if _, dup := a.typeByName[nt.Name]; dup {
		return false
	}
	a.typeByName[nt.Name] = nt
	a.Types = append(a.Types, nt)
	return true
}

// TypeByName looks up a top-level named type declared directly in this Ast
// (not through an import).
func (a *Ast) TypeByName(name string) (*NamedType, bool) {
	nt, ok := a.typeByName[name]
	return nt, ok
}
