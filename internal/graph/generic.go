package graph

import "fmt"

// Instantiate builds a GenericInstantiation for generic with the given
// substitutions, or an error if the arity doesn't match (spec.md §3
// invariant 5). The returned TypeID's substituted body is computed lazily
// by SubstitutedBody.
func Instantiate(a *Arena, generic TypeID, substitutions []TypeID) (TypeID, error) {
	g := a.Get(generic)
	if g.Kind != KindGeneric {
		return Nil, fmt.Errorf("Instantiate: type #%d is not a Generic", generic)
	}
	if len(substitutions) != len(g.Params) {
		return Nil, fmt.Errorf("generic %q expects %d type parameters, got %d", g.Name, len(g.Params), len(substitutions))
	}
	return a.New(Type{
		Kind:          KindGenericInstantiation,
		Generic:       generic,
		Substitutions: substitutions,
		substituted:   Nil,
	}), nil
}

// SubstitutedBody returns (and caches) the concrete, substituted body type
// for a GenericInstantiation, per spec.md §4.D "cloneAndSubstitute".
func SubstitutedBody(a *Arena, inst TypeID) TypeID {
	t := a.Get(inst)
	if t.Kind != KindGenericInstantiation {
		return inst
	}
	if t.substituted != Nil {
		return t.substituted
	}
	g := a.Get(t.Generic)
	binding := make(map[string]TypeID, len(g.Params))
	for i, p := range g.Params {
		binding[p] = t.Substitutions[i]
	}
	t.substituted = cloneAndSubstitute(a, g.Body, binding, make(map[TypeID]TypeID))
	return t.substituted
}

// cloneAndSubstitute produces a fresh type graph for a Generic body,
// replacing GenericParameter leaves positionally with their bound
// substitution (spec.md §4.D). Builtin/Enum/Imported are returned as-is;
// References/Arrays/DynArrays/Functions/Structs/Variants/Aliases produce
// new nodes with substituted children. `seen` is consulted for nodes that
// were already cloned, but the walk never adds to it, so it does not break
// cycles: the walk relies on the body being acyclic.
func cloneAndSubstitute(a *Arena, id TypeID, binding map[string]TypeID, seen map[TypeID]TypeID) TypeID {
	if done, ok := seen[id]; ok {
		return done
	}
	t := a.Get(id)
	switch t.Kind {
	case KindBuiltin, KindEnum, KindImported:
		return id
	case KindGenericParameter:
		if sub, ok := binding[t.ParamName]; ok {
			return sub
		}
		return id
	case KindReference:
		pointee := cloneAndSubstitute(a, t.Pointee, binding, seen)
		return a.New(Type{Kind: KindReference, Pointee: pointee, RefKind: t.RefKind, Mut: t.Mut})
	case KindArray:
		elem := cloneAndSubstitute(a, t.Elem, binding, seen)
		return a.New(Type{Kind: KindArray, Count: t.Count, Elem: elem})
	case KindDynArray:
		elem := cloneAndSubstitute(a, t.Elem, binding, seen)
		return a.New(Type{Kind: KindDynArray, MaxCount: t.MaxCount, Elem: elem, Owner: t.Owner})
	case KindFunction:
		args := make([]Arg, len(t.Args))
		for i, arg := range t.Args {
			args[i] = Arg{Name: arg.Name, Type: cloneAndSubstitute(a, arg.Type, binding, seen)}
		}
		ret := Nil
		if t.HasReturn {
			ret = cloneAndSubstitute(a, t.Return, binding, seen)
		}
		return a.New(Type{Kind: KindFunction, Args: args, Return: ret, HasReturn: t.HasReturn, Self: t.Self})
	case KindStruct:
		fields := make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = Field{Name: f.Name, Type: cloneAndSubstitute(a, f.Type, binding, seen)}
		}
		return a.NewStruct(t.Name, t.Module, fields)
	case KindVariant:
		branches := make([]VariantField, len(t.VariantFields))
		for i, vf := range t.VariantFields {
			nb := VariantField{Name: vf.Name, Kind: vf.Kind}
			switch vf.Kind {
			case VariantTuple:
				nb.Tuple = make([]TypeID, len(vf.Tuple))
				for j, tt := range vf.Tuple {
					nb.Tuple[j] = cloneAndSubstitute(a, tt, binding, seen)
				}
			case VariantStruct:
				nb.Fields = make([]Field, len(vf.Fields))
				for j, f := range vf.Fields {
					nb.Fields[j] = Field{Name: f.Name, Type: cloneAndSubstitute(a, f.Type, binding, seen)}
				}
			}
			branches[i] = nb
		}
		return a.New(Type{Kind: KindVariant, Name: t.Name, Module: t.Module, VariantFields: branches})
	case KindAlias:
		target := cloneAndSubstitute(a, t.AliasTarget, binding, seen)
		return a.New(Type{Kind: KindAlias, Name: t.Name, Module: t.Module, AliasTarget: target})
	case KindGenericInstantiation:
		subs := make([]TypeID, len(t.Substitutions))
		for i, s := range t.Substitutions {
			subs[i] = cloneAndSubstitute(a, s, binding, seen)
		}
		id, err := Instantiate(a, t.Generic, subs)
		if err != nil {
			panic(err)
		}
		return id
	default:
		return id
	}
}
