package inspect

import (
	"strings"
	"testing"

	"github.com/cpb9/photongen/internal/graph"
	"github.com/cpb9/photongen/internal/source"
)

func TestFixedSizeBuiltins(t *testing.T) {
	a := graph.NewArena()
	if size, ok := FixedSize(a, a.BuiltinType(graph.U32), 32); !ok || size != 4 {
		t.Fatalf("expected u32 fixed size 4, got %d %v", size, ok)
	}
	if _, ok := FixedSize(a, a.BuiltinType(graph.Varuint), 32); ok {
		t.Fatalf("expected varuint to be variable-sized")
	}
}

func TestFixedSizeArrayAndStruct(t *testing.T) {
	a := graph.NewArena()
	u16 := a.BuiltinType(graph.U16)
	arr := a.New(graph.Type{Kind: graph.KindArray, Count: 4, Elem: u16})
	if size, ok := FixedSize(a, arr, 32); !ok || size != 8 {
		t.Fatalf("expected array fixed size 8, got %d %v", size, ok)
	}

	mod := &source.ModuleInfo{Name: "m"}
	st := a.NewStruct("S", mod, []graph.Field{
		{Name: "a", Type: u16},
		{Name: "b", Type: a.BuiltinType(graph.U8)},
	})
	if size, ok := FixedSize(a, st, 32); !ok || size != 3 {
		t.Fatalf("expected struct fixed size 3, got %d %v", size, ok)
	}
}

func TestFixedSizeDynArrayIsVariable(t *testing.T) {
	a := graph.NewArena()
	u16 := a.BuiltinType(graph.U16)
	dyn := a.New(graph.Type{Kind: graph.KindDynArray, MaxCount: 8, Elem: u16})
	if _, ok := FixedSize(a, dyn, 32); ok {
		t.Fatalf("expected dyn-array to be variable-sized")
	}
}

func TestEmitBuiltinSerialize(t *testing.T) {
	a := graph.NewArena()
	var dst strings.Builder
	Emit(&dst, a, a.BuiltinType(graph.U16), "v.x", Serialize, Context{}, true, 32)
	if got := dst.String(); !strings.Contains(got, "WIRE_PUT_U16(dest, v.x)") {
		t.Fatalf("unexpected emit: %q", got)
	}
}

func TestEmitArrayRecursesWithLoopVar(t *testing.T) {
	a := graph.NewArena()
	u16 := a.BuiltinType(graph.U16)
	arr := a.New(graph.Type{Kind: graph.KindArray, Count: 3, Elem: u16})
	var dst strings.Builder
	Emit(&dst, a, arr, "v.items", Serialize, Context{}, true, 32)
	got := dst.String()
	if !strings.Contains(got, "for (int i = 0; i < 3; i++)") {
		t.Fatalf("expected a loop over the array, got %q", got)
	}
	if !strings.Contains(got, "v.items[i]") {
		t.Fatalf("expected indexed element access, got %q", got)
	}
}

func TestEmitStructIsNonInlineCall(t *testing.T) {
	a := graph.NewArena()
	mod := &source.ModuleInfo{Name: "m"}
	st := a.NewStruct("Point", mod, []graph.Field{{Name: "x", Type: a.BuiltinType(graph.U16)}})
	var dst strings.Builder
	Emit(&dst, a, st, "v.p", Serialize, Context{}, true, 32)
	if got := dst.String(); !strings.Contains(got, "MPoint_Serialize(&v.p, dest)") {
		t.Fatalf("unexpected non-inline call, got %q", got)
	}
}

func TestCoalesceFixedRunsGroupsConsecutiveFixedFields(t *testing.T) {
	a := graph.NewArena()
	u16 := a.BuiltinType(graph.U16)
	u8 := a.BuiltinType(graph.U8)
	dyn := a.New(graph.Type{Kind: graph.KindDynArray, MaxCount: 4, Elem: u16})
	fields := []graph.Field{
		{Name: "a", Type: u16},
		{Name: "b", Type: u8},
		{Name: "c", Type: dyn},
		{Name: "d", Type: u16},
	}
	runs := CoalesceFixedRuns(a, fields, 32)
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d: %+v", len(runs), runs)
	}
	if !runs[0].Fixed || len(runs[0].Fields) != 2 || runs[0].TotalSize != 3 {
		t.Fatalf("expected first run to coalesce a+b (3 bytes), got %+v", runs[0])
	}
	if runs[1].Fixed {
		t.Fatalf("expected second run to be the variable-sized dyn-array field")
	}
	if !runs[2].Fixed || len(runs[2].Fields) != 1 {
		t.Fatalf("expected third run to restart coalescing with field d, got %+v", runs[2])
	}
}
