package ast

import (
	"github.com/cpb9/photongen/internal/graph"
	"github.com/cpb9/photongen/internal/source"
)

// Command is one entry in a Component's `commands { ... }` section: a
// function signature plus its assigned command number (declaration order).
type Command struct {
	Number   int
	Func     *Function
	CmdTrait *CmdTraitInfo // SPEC_FULL.md §4.P supplement
}

// AccessorKind discriminates a StatusRegexp path step.
type AccessorKind int

const (
	// AccessorField selects a named struct field.
	AccessorField AccessorKind = iota
	// AccessorIndex selects a single array/dyn-array element by index.
	AccessorIndex
	// AccessorRange selects a [lower..upper) sub-range of an array/dyn-array.
	AccessorRange
)

// Accessor is one step of a StatusRegexp path (spec.md §3, §4.E phase 3).
// Field is populated for AccessorField. Index is populated for
// AccessorIndex. Lower/Upper are populated for AccessorRange.
type Accessor struct {
	Kind  AccessorKind
	Field string
	Index uint64
	Lower uint64
	Upper uint64
	Span  source.Span

	// Filled by the linker (spec.md §4.E phase 3):
	// - AccessorField binds FieldIndex into the containing struct's Fields.
	// - AccessorIndex/AccessorRange bind ContainerType to the array/dyn-array
	//   type being subscripted.
	FieldIndex    int
	ContainerType graph.TypeID
	// ResultType is the type produced by this accessor (the field's type,
	// or for subscripts, the accessed array's/range's element type).
	ResultType graph.TypeID
}

// StatusRegexp is one accessor path rooted in the component's Vars,
// producing the value sampled into a telemetry frame (spec.md §3).
type StatusRegexp struct {
	Path []Accessor
	Span source.Span

	// Terminal is the resolved terminal type of the path, filled by the
	// linker.
	Terminal graph.TypeID
}

// StatusMsg is a `[id, priority, enabled]: (path | { path, ... })` entry
// under `statuses { ... }` (spec.md §3).
type StatusMsg struct {
	Name     string
	ID       int
	Priority int
	Enabled  bool
	Regexps  []*StatusRegexp
	Span     source.Span
}

// EventMsg mirrors StatusMsg for the (structurally identical, lower-volume)
// event-message table named in spec.md §3 ("two id-keyed tables: status
// messages and event messages").
type EventMsg struct {
	Name    string
	ID      int
	Regexps []*StatusRegexp
	Span    source.Span
}

// Component belongs to exactly one module (spec.md §3, §4.E phase 1).
type Component struct {
	Number int // assigned at registration (package linker phase 1)

	Vars     graph.TypeID // graph.KindStruct: the component's state
	Commands []*Command
	Statuses map[int]*StatusMsg
	Events   map[int]*EventMsg
	Impl     *ImplBlock

	Module *source.ModuleInfo
	Span   source.Span
}

// NewComponent creates an empty Component bound to mod.
func NewComponent(mod *source.ModuleInfo) *Component {
	return &Component{
		Statuses: make(map[int]*StatusMsg),
		Events:   make(map[int]*EventMsg),
		Module:   mod,
	}
}
