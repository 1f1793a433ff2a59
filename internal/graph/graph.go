// Package graph implements the photon IDL type system: a DAG of type nodes
// held in an arena and referenced by index (spec.md §3, §9 design note on
// preferring arena+index handles over shared-ownership smart pointers).
package graph

import "github.com/cpb9/photongen/internal/source"

// TypeID is an index handle into an Arena; the first allocated node has id
// 0. Nil (-1) is never a valid id and is used to mean "no type" (e.g. a
// function with no return value).
type TypeID int

// Nil denotes the absence of a type reference.
const Nil TypeID = -1

// Kind discriminates the tagged type-kind union of spec.md §3.
type Kind int

const (
	KindBuiltin Kind = iota
	KindReference
	KindArray
	KindDynArray
	KindFunction
	KindEnum
	KindStruct
	KindVariant
	KindImported
	KindAlias
	KindGeneric
	KindGenericInstantiation
	KindGenericParameter
)

func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "Builtin"
	case KindReference:
		return "Reference"
	case KindArray:
		return "Array"
	case KindDynArray:
		return "DynArray"
	case KindFunction:
		return "Function"
	case KindEnum:
		return "Enum"
	case KindStruct:
		return "Struct"
	case KindVariant:
		return "Variant"
	case KindImported:
		return "Imported"
	case KindAlias:
		return "Alias"
	case KindGeneric:
		return "Generic"
	case KindGenericInstantiation:
		return "GenericInstantiation"
	case KindGenericParameter:
		return "GenericParameter"
	default:
		return "?"
	}
}

// Builtin enumerates the builtin scalar kinds (spec.md §3).
type Builtin int

const (
	USize Builtin = iota
	ISize
	Varuint
	Varint
	U8
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
	Bool
	Void
	Char
)

var builtinNames = map[Builtin]string{
	USize: "usize", ISize: "isize", Varuint: "varuint", Varint: "varint",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64",
	I8: "i8", I16: "i16", I32: "i32", I64: "i64",
	F32: "f32", F64: "f64", Bool: "bool", Void: "void", Char: "char",
}

// String returns the IDL spelling of the builtin.
func (b Builtin) String() string { return builtinNames[b] }

// FixedWidth returns the wire size in bytes of a fixed-width builtin and
// true, or (0, false) for variable-width builtins (Varuint/Varint/Void).
// The pointer-width builtins USize/ISize report pointerWidth/8 bytes.
func (b Builtin) FixedWidth(pointerWidth int) (int, bool) {
	switch b {
	case U8, I8, Bool, Char:
		return 1, true
	case U16, I16:
		return 2, true
	case U32, I32, F32:
		return 4, true
	case U64, I64, F64:
		return 8, true
	case USize, ISize:
		return pointerWidth / 8, true
	default:
		return 0, false
	}
}

// RefKind discriminates a Reference type's surface syntax (spec.md §3).
type RefKind int

const (
	Pointer RefKind = iota
	ReferenceKind
)

// Mutability marks whether a Reference/pointer target is mutable.
type Mutability int

const (
	Const Mutability = iota
	Mut
)

// SelfArgKind discriminates a Function type's optional receiver.
type SelfArgKind int

const (
	SelfNone SelfArgKind = iota
	SelfValue
	SelfReference
	SelfMutReference
)

// Arg is a named, typed function argument.
type Arg struct {
	Name string
	Type TypeID
}

// EnumConstant is one member of an Enum (spec.md §3).
type EnumConstant struct {
	Name    string
	Value   int64
	UserSet bool
}

// Field is a named, typed struct/variant-struct-branch field.
type Field struct {
	Name string
	Type TypeID
}

// VariantFieldKind discriminates a Variant branch's payload shape.
type VariantFieldKind int

const (
	VariantConstant VariantFieldKind = iota
	VariantTuple
	VariantStruct
)

// VariantField is one branch of a Variant (spec.md §3).
type VariantField struct {
	Name   string
	Kind   VariantFieldKind
	Tuple  []TypeID
	Fields []Field
}

// Type is the tagged union of spec.md §3's type kinds. Only the fields
// relevant to Kind are populated; callers must switch on Kind before
// reading kind-specific fields.
type Type struct {
	Kind Kind

	// Builtin
	Builtin Builtin

	// Reference
	Pointee TypeID
	RefKind RefKind
	Mut     Mutability

	// Array
	Count uint64
	Elem  TypeID

	// DynArray
	MaxCount uint64
	Owner    *source.ModuleInfo

	// Function
	Return    TypeID
	HasReturn bool
	Args      []Arg
	Self      SelfArgKind

	// Enum / Struct / Variant / Alias / Generic: Name + Module
	Name   string
	Module *source.ModuleInfo

	// Enum
	Constants       []EnumConstant
	constantByValue map[int64]int

	// Struct
	Fields     []Field
	fieldIndex map[string]int

	// Variant
	VariantFields []VariantField

	// Imported
	ImportPath string
	Link       TypeID

	// Alias
	AliasTarget TypeID

	// Generic
	Params []string
	Body   TypeID

	// GenericInstantiation
	Generic       TypeID
	Substitutions []TypeID
	substituted   TypeID

	// GenericParameter
	ParamName string
}

// Arena owns every Type node reachable from a single compilation. Generic
// instantiations share the arena of the Generic they instantiate (spec.md
// §9: "shared arena across generic instantiations").
type Arena struct {
	types    []*Type
	builtins map[Builtin]TypeID
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{builtins: make(map[Builtin]TypeID)}
}

// New allocates t in the arena and returns its handle.
func (a *Arena) New(t Type) TypeID {
	a.types = append(a.types, &t)
	return TypeID(len(a.types) - 1)
}

// Get dereferences a handle. Panics on Nil or out-of-range ids, mirroring
// the teacher's preference for hard failures over silent nil derefs in
// internal invariant violations.
func (a *Arena) Get(id TypeID) *Type {
	return a.types[id]
}

// BuiltinType returns the shared singleton handle for b, allocating it on
// first use (spec.md §4.D: "Builtin singletons are shared per parser
// instance").
func (a *Arena) BuiltinType(b Builtin) TypeID {
	if id, ok := a.builtins[b]; ok {
		return id
	}
	id := a.New(Type{Kind: KindBuiltin, Builtin: b})
	a.builtins[b] = id
	return id
}

// NewStruct allocates a Struct type, building its name index.
func (a *Arena) NewStruct(name string, mod *source.ModuleInfo, fields []Field) TypeID {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[f.Name] = i
	}
	return a.New(Type{Kind: KindStruct, Name: name, Module: mod, Fields: fields, fieldIndex: idx})
}

// NewEnum allocates an Enum type, building its value index.
func (a *Arena) NewEnum(name string, mod *source.ModuleInfo, constants []EnumConstant) TypeID {
	idx := make(map[int64]int, len(constants))
	for i, c := range constants {
		idx[c.Value] = i
	}
	return a.New(Type{Kind: KindEnum, Name: name, Module: mod, Constants: constants, constantByValue: idx})
}

// FieldByName looks up a Struct field by name.
func (t *Type) FieldByName(name string) (Field, int, bool) {
	if t.fieldIndex == nil {
		return Field{}, 0, false
	}
	i, ok := t.fieldIndex[name]
	if !ok {
		return Field{}, 0, false
	}
	return t.Fields[i], i, true
}

// ConstantByValue looks up an Enum constant by its declared value.
func (t *Type) ConstantByValue(v int64) (EnumConstant, bool) {
	if t.constantByValue == nil {
		return EnumConstant{}, false
	}
	i, ok := t.constantByValue[v]
	if !ok {
		return EnumConstant{}, false
	}
	return t.Constants[i], true
}
