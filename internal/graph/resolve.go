package graph

import "fmt"

// ErrCyclicAlias is returned by ResolveFinalType when following Alias/Imported
// links would loop forever (spec.md §9, Open Question (b)).
type ErrCyclicAlias struct {
	Start TypeID
}

func (e *ErrCyclicAlias) Error() string {
	return fmt.Sprintf("cyclic type alias starting at type #%d", e.Start)
}

// ResolveFinalType walks Alias and Imported links until a terminal kind is
// reached (spec.md §3 invariant 2, §4.D). A cycle is reported rather than
// looping forever, per the Open Question resolution in spec.md §9(b).
func ResolveFinalType(a *Arena, id TypeID) (TypeID, error) {
	seen := make(map[TypeID]bool)
	cur := id
	for {
		if seen[cur] {
			return Nil, &ErrCyclicAlias{Start: id}
		}
		seen[cur] = true
		t := a.Get(cur)
		switch t.Kind {
		case KindAlias:
			cur = t.AliasTarget
		case KindImported:
			if t.Link == Nil {
				return Nil, fmt.Errorf("imported type %q from %q is unresolved", t.Name, t.ImportPath)
			}
			cur = t.Link
		default:
			return cur, nil
		}
	}
}

// MustResolveFinalType is ResolveFinalType without an error return, for call
// sites downstream of a successful link phase where the graph is frozen and
// known acyclic (spec.md §3 "Lifecycle").
func MustResolveFinalType(a *Arena, id TypeID) TypeID {
	r, err := ResolveFinalType(a, id)
	if err != nil {
		panic(err)
	}
	return r
}
