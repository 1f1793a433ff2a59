package graph

// Equals implements the structural-equality congruence of spec.md §3
// invariant 6 and §4.D: both operands are resolved to their terminal kind
// first, then compared structurally. Unresolved/cyclic aliases compare
// unequal rather than panicking, since equality may be probed before the
// link phase completes generic instantiation caching.
func Equals(a *Arena, x, y TypeID) bool {
	rx, errx := ResolveFinalType(a, x)
	ry, erry := ResolveFinalType(a, y)
	if errx != nil || erry != nil {
		return false
	}
	return equalsResolved(a, rx, ry)
}

func equalsResolved(a *Arena, x, y TypeID) bool {
	tx, ty := a.Get(x), a.Get(y)
	if tx.Kind != ty.Kind {
		return false
	}
	switch tx.Kind {
	case KindBuiltin:
		return tx.Builtin == ty.Builtin
	case KindReference:
		return tx.Mut == ty.Mut && tx.RefKind == ty.RefKind && Equals(a, tx.Pointee, ty.Pointee)
	case KindArray:
		return tx.Count == ty.Count && Equals(a, tx.Elem, ty.Elem)
	case KindDynArray:
		// max size ignored for typing purposes but kept for codegen (spec.md §4.D)
		return Equals(a, tx.Elem, ty.Elem)
	case KindFunction:
		return functionsEqual(a, tx, ty)
	case KindEnum:
		return tx.Name == ty.Name && enumConstantsEqual(tx.Constants, ty.Constants)
	case KindStruct:
		return tx.Name == ty.Name && fieldsEqual(a, tx.Fields, ty.Fields)
	case KindVariant:
		return tx.Name == ty.Name && variantFieldsEqual(a, tx.VariantFields, ty.VariantFields)
	case KindGenericParameter:
		return tx.ParamName == ty.ParamName
	case KindGenericInstantiation:
		// resolveFinalType never strips GenericInstantiation itself, so two
		// instantiations compare equal iff they're the same Generic with
		// pairwise-equal substitutions.
		if tx.Generic != ty.Generic || len(tx.Substitutions) != len(ty.Substitutions) {
			return false
		}
		for i := range tx.Substitutions {
			if !Equals(a, tx.Substitutions[i], ty.Substitutions[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func functionsEqual(a *Arena, x, y *Type) bool {
	if x.Self != y.Self || x.HasReturn != y.HasReturn {
		return false
	}
	if x.HasReturn && !Equals(a, x.Return, y.Return) {
		return false
	}
	if len(x.Args) != len(y.Args) {
		return false
	}
	for i := range x.Args {
		if x.Args[i].Name != y.Args[i].Name || !Equals(a, x.Args[i].Type, y.Args[i].Type) {
			return false
		}
	}
	return true
}

func enumConstantsEqual(x, y []EnumConstant) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i].UserSet != y[i].UserSet || x[i].Value != y[i].Value {
			return false
		}
	}
	return true
}

func fieldsEqual(a *Arena, x, y []Field) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i].Name != y[i].Name || !Equals(a, x[i].Type, y[i].Type) {
			return false
		}
	}
	return true
}

func variantFieldsEqual(a *Arena, x, y []VariantField) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i].Name != y[i].Name || x[i].Kind != y[i].Kind {
			return false
		}
		switch x[i].Kind {
		case VariantTuple:
			if len(x[i].Tuple) != len(y[i].Tuple) {
				return false
			}
			for j := range x[i].Tuple {
				if !Equals(a, x[i].Tuple[j], y[i].Tuple[j]) {
					return false
				}
			}
		case VariantStruct:
			if !fieldsEqual(a, x[i].Fields, y[i].Fields) {
				return false
			}
		}
	}
	return true
}
