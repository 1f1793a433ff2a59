package include

import (
	"testing"

	"github.com/cpb9/photongen/internal/diag"
	"github.com/cpb9/photongen/internal/graph"
	"github.com/cpb9/photongen/internal/parser"
	"github.com/cpb9/photongen/internal/source"
)

func TestClosureBuiltinAndArrayAreTransparent(t *testing.T) {
	a := graph.NewArena()
	u16 := a.BuiltinType(graph.U16)
	arr := a.New(graph.Type{Kind: graph.KindArray, Count: 4, Elem: u16})
	if entries := Closure(a, arr); len(entries) != 0 {
		t.Fatalf("expected no includes for an array of builtins, got %v", entries)
	}
}

func TestClosureNamedTypeAddedNotDescended(t *testing.T) {
	file := source.NewFileInfo("m.ph", "module m\nstruct Inner { v: u8 }\nstruct Outer { i: Inner }\n")
	arena := graph.NewArena()
	sink := diag.NewSink()
	a := parser.ParseFile(file, arena, sink)
	if a == nil || sink.HasErrors() {
		t.Fatalf("parse failed: %v", sink.Reports())
	}
	outer, ok := a.TypeByName("Outer")
	if !ok {
		t.Fatalf("Outer not found")
	}
	entries := Closure(arena, outer.Type)
	if len(entries) != 1 || entries[0].TypeName != "Inner" {
		t.Fatalf("expected a single Inner include, got %v", entries)
	}
}

func TestClosureDynArrayIncludesSelfAndElement(t *testing.T) {
	file := source.NewFileInfo("m.ph", "module m\nstruct Item { v: u8 }\nstruct Holder { items: &[Item; 4] }\n")
	arena := graph.NewArena()
	sink := diag.NewSink()
	a := parser.ParseFile(file, arena, sink)
	if a == nil || sink.HasErrors() {
		t.Fatalf("parse failed: %v", sink.Reports())
	}
	holder, ok := a.TypeByName("Holder")
	if !ok {
		t.Fatalf("Holder not found")
	}
	field := arena.Get(holder.Type).Fields[0]
	entries := Closure(arena, field.Type)
	kinds := make(map[EntryKind]int)
	for _, e := range entries {
		kinds[e.Kind]++
	}
	if kinds[EntryDynArray] != 1 || kinds[EntryNamed] != 1 {
		t.Fatalf("expected one dyn-array entry and one named entry, got %v", entries)
	}
}

func TestClosureIsMonotone(t *testing.T) {
	before := source.NewFileInfo("m.ph", "module m\nstruct A { v: u8 }\nstruct B { a: A }\n")
	after := source.NewFileInfo("m.ph", "module m\nstruct A { v: u8 }\nstruct B { a: A }\nstruct Unused { v: u8 }\n")

	arenaBefore := graph.NewArena()
	sinkBefore := diag.NewSink()
	astBefore := parser.ParseFile(before, arenaBefore, sinkBefore)
	if astBefore == nil || sinkBefore.HasErrors() {
		t.Fatalf("parse failed: %v", sinkBefore.Reports())
	}
	bType, _ := astBefore.TypeByName("B")
	beforeEntries := Closure(arenaBefore, bType.Type)

	arenaAfter := graph.NewArena()
	sinkAfter := diag.NewSink()
	astAfter := parser.ParseFile(after, arenaAfter, sinkAfter)
	if astAfter == nil || sinkAfter.HasErrors() {
		t.Fatalf("parse failed: %v", sinkAfter.Reports())
	}
	bType2, _ := astAfter.TypeByName("B")
	afterEntries := Closure(arenaAfter, bType2.Type)

	if len(beforeEntries) != len(afterEntries) {
		t.Fatalf("adding an unused type changed B's include set: before=%v after=%v", beforeEntries, afterEntries)
	}
	for i := range beforeEntries {
		if beforeEntries[i].TypeName != afterEntries[i].TypeName || beforeEntries[i].Kind != afterEntries[i].Kind {
			t.Fatalf("adding an unused type changed B's include set: before=%v after=%v", beforeEntries, afterEntries)
		}
	}
}
