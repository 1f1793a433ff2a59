package parser

import (
	"testing"

	"github.com/cpb9/photongen/internal/diag"
	"github.com/cpb9/photongen/internal/graph"
	"github.com/cpb9/photongen/internal/source"
)

func TestParseMinimalModule(t *testing.T) {
	arena := graph.NewArena()
	sink := diag.NewSink()
	file := source.NewFileInfo("test.ph", "module m\n")
	a := ParseFile(file, arena, sink)
	if a == nil {
		t.Fatalf("expected a non-nil ast, reports: %v", sink.Reports())
	}
	if a.Module.Name != "m" {
		t.Fatalf("expected module name m, got %q", a.Module.Name)
	}
}

func TestParseStructRoundTrip(t *testing.T) {
	file := source.NewFileInfo("test.ph", `module m
struct Point {
	x: u16,
	y: u16,
}
`)
	arena := graph.NewArena()
	sink := diag.NewSink()
	a := ParseFile(file, arena, sink)
	if a == nil || sink.HasErrors() {
		t.Fatalf("unexpected parse failure: %v", sink.Reports())
	}
	nt, ok := a.TypeByName("Point")
	if !ok {
		t.Fatalf("struct Point not registered")
	}
	st := arena.Get(nt.Type)
	if st.Kind != graph.KindStruct {
		t.Fatalf("expected KindStruct, got %s", st.Kind)
	}
	if len(st.Fields) != 2 || st.Fields[0].Name != "x" || st.Fields[1].Name != "y" {
		t.Fatalf("unexpected fields: %+v", st.Fields)
	}
}

func TestParseStructDuplicateFieldReported(t *testing.T) {
	file := source.NewFileInfo("test.ph", `module m
struct Point {
	x: u16,
	x: u16,
}
`)
	arena := graph.NewArena()
	sink := diag.NewSink()
	ParseFile(file, arena, sink)
	if !sink.HasErrors() {
		t.Fatalf("expected a duplicate-field diagnostic")
	}
}

func TestParseEnumRequiresExplicitValues(t *testing.T) {
	file := source.NewFileInfo("test.ph", `module m
enum Color {
	Red = 0,
	Green = 1,
	Blue = 2,
}
`)
	arena := graph.NewArena()
	sink := diag.NewSink()
	a := ParseFile(file, arena, sink)
	if a == nil || sink.HasErrors() {
		t.Fatalf("unexpected parse failure: %v", sink.Reports())
	}
	nt, ok := a.TypeByName("Color")
	if !ok {
		t.Fatalf("enum Color not registered")
	}
	et := arena.Get(nt.Type)
	if et.Kind != graph.KindEnum {
		t.Fatalf("expected KindEnum, got %s", et.Kind)
	}
	if len(et.Constants) != 3 {
		t.Fatalf("expected 3 constants, got %d", len(et.Constants))
	}
	if et.Constants[2].Value != 2 {
		t.Fatalf("expected Blue = 2, got %d", et.Constants[2].Value)
	}
}

func TestParseEnumDuplicateValueReported(t *testing.T) {
	file := source.NewFileInfo("test.ph", `module m
enum Color {
	Red = 0,
	Green = 0,
}
`)
	arena := graph.NewArena()
	sink := diag.NewSink()
	ParseFile(file, arena, sink)
	if !sink.HasErrors() {
		t.Fatalf("expected a duplicate-enum-value diagnostic")
	}
}

func TestParseVariantBranches(t *testing.T) {
	file := source.NewFileInfo("test.ph", `module m
variant Shape {
	Point,
	Circle(u16),
	Rect { w: u16, h: u16 },
}
`)
	arena := graph.NewArena()
	sink := diag.NewSink()
	a := ParseFile(file, arena, sink)
	if a == nil || sink.HasErrors() {
		t.Fatalf("unexpected parse failure: %v", sink.Reports())
	}
	nt, ok := a.TypeByName("Shape")
	if !ok {
		t.Fatalf("variant Shape not registered")
	}
	vt := arena.Get(nt.Type)
	if vt.Kind != graph.KindVariant {
		t.Fatalf("expected KindVariant, got %s", vt.Kind)
	}
	if len(vt.VariantFields) != 3 {
		t.Fatalf("expected 3 branches, got %d", len(vt.VariantFields))
	}
	if vt.VariantFields[0].Kind != graph.VariantConstant {
		t.Fatalf("expected branch 0 to be constant")
	}
	if vt.VariantFields[1].Kind != graph.VariantTuple || len(vt.VariantFields[1].Tuple) != 1 {
		t.Fatalf("expected branch 1 to be a 1-tuple")
	}
	if vt.VariantFields[2].Kind != graph.VariantStruct || len(vt.VariantFields[2].Fields) != 2 {
		t.Fatalf("expected branch 2 to be a 2-field struct")
	}
}

func TestParseImportRegistersStub(t *testing.T) {
	file := source.NewFileInfo("test.ph", `module m
import other::{A, B}
struct S {
	a: A,
	b: B,
}
`)
	arena := graph.NewArena()
	sink := diag.NewSink()
	a := ParseFile(file, arena, sink)
	if a == nil || sink.HasErrors() {
		t.Fatalf("unexpected parse failure: %v", sink.Reports())
	}
	nt, ok := a.TypeByName("A")
	if !ok {
		t.Fatalf("imported type A not registered")
	}
	at := arena.Get(nt.Type)
	if at.Kind != graph.KindImported {
		t.Fatalf("expected A to be an Imported stub, got %s", at.Kind)
	}
	if at.ImportPath != "other" {
		t.Fatalf("expected import path 'other', got %q", at.ImportPath)
	}
	if len(a.Imports) != 1 || len(a.Imports[0].Types) != 2 {
		t.Fatalf("expected one import decl with 2 names, got %+v", a.Imports)
	}
}

func TestParseDuplicateImportReported(t *testing.T) {
	file := source.NewFileInfo("test.ph", `module m
import other::A
import other::B
`)
	arena := graph.NewArena()
	sink := diag.NewSink()
	ParseFile(file, arena, sink)
	if !sink.HasErrors() {
		t.Fatalf("expected a duplicate-import diagnostic")
	}
}

func TestParseGenericInstantiation(t *testing.T) {
	file := source.NewFileInfo("test.ph", `module m
generic Pair<A, B> struct {
	first: A,
	second: B,
}
struct S {
	p: Pair<u8, u16>,
}
`)
	arena := graph.NewArena()
	sink := diag.NewSink()
	a := ParseFile(file, arena, sink)
	if a == nil || sink.HasErrors() {
		t.Fatalf("unexpected parse failure: %v", sink.Reports())
	}
	nt, ok := a.TypeByName("S")
	if !ok {
		t.Fatalf("struct S not registered")
	}
	st := arena.Get(nt.Type)
	field, _, ok := st.FieldByName("p")
	if !ok {
		t.Fatalf("field p not found")
	}
	inst := arena.Get(field.Type)
	if inst.Kind != graph.KindGenericInstantiation {
		t.Fatalf("expected KindGenericInstantiation, got %s", inst.Kind)
	}
	if len(inst.Substitutions) != 2 {
		t.Fatalf("expected 2 substitutions, got %d", len(inst.Substitutions))
	}
}

func TestParseGenericArityMismatchReported(t *testing.T) {
	file := source.NewFileInfo("test.ph", `module m
generic Pair<A, B> struct {
	first: A,
	second: B,
}
struct S {
	p: Pair<u8>,
}
`)
	arena := graph.NewArena()
	sink := diag.NewSink()
	ParseFile(file, arena, sink)
	if !sink.HasErrors() {
		t.Fatalf("expected an arity-mismatch diagnostic")
	}
}

func TestParseNoForwardTypeReference(t *testing.T) {
	file := source.NewFileInfo("test.ph", `module m
struct A {
	b: B,
}
struct B {
	v: u8,
}
`)
	arena := graph.NewArena()
	sink := diag.NewSink()
	ParseFile(file, arena, sink)
	if !sink.HasErrors() {
		t.Fatalf("expected a diagnostic: B is declared after A references it")
	}
}

func TestParseComponentStatusAndCommands(t *testing.T) {
	file := source.NewFileInfo("test.ph", `module m
component {
	parameters {
		voltage: u16,
		samples: [u16; 4],
	}
	commands {
		fn reset();
		fn setVoltage(v: u16);
	}
	statuses {
		[0, 1, true]: voltage,
		[1, 1, true]: samples[0],
		[2, 1, true]: samples[1..3],
	}
}
`)
	arena := graph.NewArena()
	sink := diag.NewSink()
	a := ParseFile(file, arena, sink)
	if a == nil || sink.HasErrors() {
		t.Fatalf("unexpected parse failure: %v", sink.Reports())
	}
	if a.Comp == nil {
		t.Fatalf("expected a component to be parsed")
	}
	if len(a.Comp.Commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(a.Comp.Commands))
	}
	if a.Comp.Commands[0].Number != 0 || a.Comp.Commands[1].Number != 1 {
		t.Fatalf("expected commands numbered by declaration order")
	}
	if len(a.Comp.Statuses) != 3 {
		t.Fatalf("expected 3 status entries, got %d", len(a.Comp.Statuses))
	}

	fieldStatus := a.Comp.Statuses[0]
	if len(fieldStatus.Regexps) != 1 || len(fieldStatus.Regexps[0].Path) != 1 {
		t.Fatalf("expected a 1-step accessor path for status 0")
	}

	indexStatus := a.Comp.Statuses[1]
	if len(indexStatus.Regexps) != 1 || len(indexStatus.Regexps[0].Path) != 2 {
		t.Fatalf("expected a 2-step accessor path for status 1")
	}

	rangeStatus := a.Comp.Statuses[2]
	if len(rangeStatus.Regexps) != 1 || len(rangeStatus.Regexps[0].Path) != 2 {
		t.Fatalf("expected a 2-step accessor path for status 2")
	}
	lower := rangeStatus.Regexps[0].Path[1].Lower
	upper := rangeStatus.Regexps[0].Path[1].Upper
	if lower != 1 || upper != 3 {
		t.Fatalf("expected range [1..3), got [%d..%d)", lower, upper)
	}
}

func TestParseDuplicateStatusIDReported(t *testing.T) {
	file := source.NewFileInfo("test.ph", `module m
component {
	parameters {
		voltage: u16,
	}
	statuses {
		[0, 1, true]: voltage,
		[0, 1, true]: voltage,
	}
}
`)
	arena := graph.NewArena()
	sink := diag.NewSink()
	ParseFile(file, arena, sink)
	if !sink.HasErrors() {
		t.Fatalf("expected a duplicate-status-id diagnostic")
	}
}

func TestParseDynArrayType(t *testing.T) {
	file := source.NewFileInfo("test.ph", `module m
struct S {
	items: &[u16; 32],
}
`)
	arena := graph.NewArena()
	sink := diag.NewSink()
	a := ParseFile(file, arena, sink)
	if a == nil || sink.HasErrors() {
		t.Fatalf("unexpected parse failure: %v", sink.Reports())
	}
	nt, _ := a.TypeByName("S")
	st := arena.Get(nt.Type)
	field, _, _ := st.FieldByName("items")
	dt := arena.Get(field.Type)
	if dt.Kind != graph.KindDynArray {
		t.Fatalf("expected KindDynArray, got %s", dt.Kind)
	}
	if dt.MaxCount != 32 {
		t.Fatalf("expected max count 32, got %d", dt.MaxCount)
	}
}

func TestParseAliasDecl(t *testing.T) {
	file := source.NewFileInfo("test.ph", `module m
type VoltageReading = u16;
`)
	arena := graph.NewArena()
	sink := diag.NewSink()
	a := ParseFile(file, arena, sink)
	if a == nil || sink.HasErrors() {
		t.Fatalf("unexpected parse failure: %v", sink.Reports())
	}
	nt, ok := a.TypeByName("VoltageReading")
	if !ok {
		t.Fatalf("alias VoltageReading not registered")
	}
	at := arena.Get(nt.Type)
	if at.Kind != graph.KindAlias {
		t.Fatalf("expected KindAlias, got %s", at.Kind)
	}
}

func TestParseImplBlock(t *testing.T) {
	file := source.NewFileInfo("test.ph", `module m
struct S {
	v: u16,
}
impl S {
	fn get(&self) -> u16;
	fn setValue(&mut self, v: u16);
}
`)
	arena := graph.NewArena()
	sink := diag.NewSink()
	a := ParseFile(file, arena, sink)
	if a == nil || sink.HasErrors() {
		t.Fatalf("unexpected parse failure: %v", sink.Reports())
	}
	if len(a.Impls) != 1 {
		t.Fatalf("expected 1 impl block, got %d", len(a.Impls))
	}
	if a.Impls[0].TargetName != "S" {
		t.Fatalf("expected impl target S, got %q", a.Impls[0].TargetName)
	}
	if len(a.Impls[0].Functions) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(a.Impls[0].Functions))
	}
	getType := arena.Get(a.Impls[0].Functions[0].Type)
	if getType.Self != graph.SelfReference {
		t.Fatalf("expected get() to take &self")
	}
	setType := arena.Get(a.Impls[0].Functions[1].Type)
	if setType.Self != graph.SelfMutReference {
		t.Fatalf("expected setValue() to take &mut self")
	}
}

func TestParseCfgAttribute(t *testing.T) {
	file := source.NewFileInfo("test.ph", `module m
#[cfg(any(target = embedded, not(debug)))]
struct S {
	v: u16,
}
`)
	arena := graph.NewArena()
	sink := diag.NewSink()
	a := ParseFile(file, arena, sink)
	if a == nil || sink.HasErrors() {
		t.Fatalf("unexpected parse failure: %v", sink.Reports())
	}
	if len(a.Types) != 1 {
		t.Fatalf("expected 1 type")
	}
}

func TestParseCmdTraitAttribute(t *testing.T) {
	file := source.NewFileInfo("test.ph", `module m
component {
	commands {
		#[cmd_trait(name = Reset, desc = ResetDesc)]
		fn reset();
	}
}
`)
	arena := graph.NewArena()
	sink := diag.NewSink()
	a := ParseFile(file, arena, sink)
	if a == nil || sink.HasErrors() {
		t.Fatalf("unexpected parse failure: %v", sink.Reports())
	}
	if a.Comp == nil || len(a.Comp.Commands) != 1 {
		t.Fatalf("expected 1 command")
	}
	trait := a.Comp.Commands[0].CmdTrait
	if trait == nil {
		t.Fatalf("expected a CmdTrait descriptor")
	}
	if trait.Name != "Reset" || trait.Desc != "ResetDesc" {
		t.Fatalf("unexpected cmd_trait fields: %+v", trait)
	}
}
