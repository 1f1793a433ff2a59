package graph

import "testing"

func TestEqualsIsReflexiveAndTransitive(t *testing.T) {
	a := NewArena()
	u8 := a.BuiltinType(U8)
	s1 := a.NewStruct("Point", nil, []Field{{Name: "x", Type: u8}, {Name: "y", Type: u8}})
	s2 := a.NewStruct("Point", nil, []Field{{Name: "x", Type: u8}, {Name: "y", Type: u8}})
	s3 := a.NewStruct("Point", nil, []Field{{Name: "x", Type: u8}, {Name: "y", Type: u8}})

	if !Equals(a, s1, s1) {
		t.Fatal("Equals must be reflexive")
	}
	if !Equals(a, s1, s2) || !Equals(a, s2, s3) {
		t.Fatal("expected structurally identical structs to compare equal")
	}
	if !Equals(a, s1, s3) {
		t.Fatal("Equals must be transitive: A=B, B=C => A=C")
	}
}

func TestEqualsRejectsDifferentFieldOrder(t *testing.T) {
	a := NewArena()
	u8 := a.BuiltinType(U8)
	u16 := a.BuiltinType(U16)
	s1 := a.NewStruct("S", nil, []Field{{Name: "a", Type: u8}, {Name: "b", Type: u16}})
	s2 := a.NewStruct("S", nil, []Field{{Name: "b", Type: u16}, {Name: "a", Type: u8}})
	if Equals(a, s1, s2) {
		t.Fatal("field order is part of struct identity")
	}
}

func TestResolveFinalTypeFollowsAliasAndImport(t *testing.T) {
	a := NewArena()
	u32 := a.BuiltinType(U32)
	alias := a.New(Type{Kind: KindAlias, Name: "Meters", AliasTarget: u32})
	imported := a.New(Type{Kind: KindImported, Name: "Meters", ImportPath: "physics", Link: alias})

	resolved, err := ResolveFinalType(a, imported)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != u32 {
		t.Fatalf("expected resolution to reach the Builtin U32 node, got kind %v", a.Get(resolved).Kind)
	}
}

func TestResolveFinalTypeRejectsCycles(t *testing.T) {
	a := NewArena()
	// Two aliases pointing at each other.
	idA := a.New(Type{Kind: KindAlias, Name: "A"})
	idB := a.New(Type{Kind: KindAlias, Name: "B", AliasTarget: idA})
	a.Get(idA).AliasTarget = idB

	if _, err := ResolveFinalType(a, idA); err == nil {
		t.Fatal("expected a cyclic alias error")
	}
}

func TestGenericInstantiationSubstitutesPositionally(t *testing.T) {
	a := NewArena()
	u8 := a.BuiltinType(U8)
	u16 := a.BuiltinType(U16)

	paramA := a.New(Type{Kind: KindGenericParameter, ParamName: "A"})
	paramB := a.New(Type{Kind: KindGenericParameter, ParamName: "B"})
	body := a.NewStruct("Pair", nil, []Field{{Name: "a", Type: paramA}, {Name: "b", Type: paramB}})
	generic := a.New(Type{Kind: KindGeneric, Name: "Pair", Params: []string{"A", "B"}, Body: body})

	inst1, err := Instantiate(a, generic, []TypeID{u8, u16})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inst2, err := Instantiate(a, generic, []TypeID{u16, u8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sub1ID := SubstitutedBody(a, inst1)
	sub1 := a.Get(sub1ID)
	if sub1.Kind != KindStruct || len(sub1.Fields) != 2 {
		t.Fatalf("expected a two-field struct, got %+v", sub1)
	}
	if !Equals(a, sub1.Fields[0].Type, u8) || !Equals(a, sub1.Fields[1].Type, u16) {
		t.Fatal("Pair<u8,u16> should substitute A->u8, B->u16 positionally")
	}

	if Equals(a, inst1, inst2) {
		t.Fatal("Pair<u8,u16> must differ from Pair<u16,u8>")
	}

	// The substituted body must contain no GenericParameter nodes.
	var walk func(id TypeID) bool
	walk = func(id TypeID) bool {
		tt := a.Get(id)
		if tt.Kind == KindGenericParameter {
			return true
		}
		for _, f := range tt.Fields {
			if walk(f.Type) {
				return true
			}
		}
		return false
	}
	if walk(sub1ID) {
		t.Fatal("substituted body must not contain GenericParameter nodes")
	}
}

func TestInstantiateRejectsArityMismatch(t *testing.T) {
	a := NewArena()
	u8 := a.BuiltinType(U8)
	generic := a.New(Type{Kind: KindGeneric, Name: "Box", Params: []string{"A"}})
	if _, err := Instantiate(a, generic, []TypeID{u8, u8}); err == nil {
		t.Fatal("expected an arity mismatch error")
	}
}
