package emit

import (
	"fmt"
	"strings"

	"github.com/cpb9/photongen/internal/codegen/inspect"
	"github.com/cpb9/photongen/internal/codegen/mangle"
	"github.com/cpb9/photongen/internal/graph"
)

// GroundControlHeader emits a type's `photongen::<module>` namespace with
// inline `serialize`/`deserialize` functions (spec.md §4.J "Ground-control
// headers").
func GroundControlHeader(a *graph.Arena, id graph.TypeID, pointerWidth int) File {
	t := a.Get(id)
	name := "Photon" + mangle.Name(a, id)
	ns := moduleNameOf(t)
	var b Builder
	b.Linef("namespace photongen::%s {", ns)
	b.Linef("")
	b.Linef("inline void serialize(const %s& self, Writer& dest) {", name)
	var serBody strings.Builder
	emitGCStructOrEnumBody(&serBody, a, t, "self", inspect.Serialize, pointerWidth)
	b.WriteString(serBody.String())
	b.Linef("}")
	b.Linef("")
	b.Linef("inline void deserialize(%s& self, Reader& src) {", name)
	var deserBody strings.Builder
	emitGCStructOrEnumBody(&deserBody, a, t, "self", inspect.Deserialize, pointerWidth)
	b.WriteString(deserBody.String())
	b.Linef("}")
	b.Linef("")
	b.Linef("} // namespace photongen::%s", ns)
	return File{Path: name + ".hpp", Text: b.String()}
}

func emitGCStructOrEnumBody(b *strings.Builder, a *graph.Arena, t *graph.Type, self string, dir inspect.Direction, pointerWidth int) {
	if t.Kind != graph.KindStruct {
		return
	}
	runs := inspect.CoalesceFixedRuns(a, t.Fields, pointerWidth)
	for _, run := range runs {
		for _, f := range run.Fields {
			inspect.Emit(b, a, f.Type, self+"."+f.Name, dir, inspect.Context{Indent: 1}, false, pointerWidth)
		}
	}
}

func moduleNameOf(t *graph.Type) string {
	if t.Module == nil {
		return "anon"
	}
	return t.Module.Name
}

// Validator emits a component's runtime type-shape validator: at startup
// it rediscovers each of the component's types by name in the connected
// package and asserts structural equality against the generator-time view,
// reporting any mismatch (spec.md §4.J "Ground-control headers").
func Validator(moduleName string, typeNames []string) File {
	var b Builder
	b.Linef("namespace photongen::%s {", moduleName)
	b.Linef("")
	b.Linef("class Validator {")
	b.Linef("public:")
	b.Linef("    std::vector<std::string> validate(const PackageModel& pkg) const {")
	b.Linef("        std::vector<std::string> mismatches;")
	for _, name := range typeNames {
		b.Linef("        if (!pkg.structurallyEquals(%q, kExpected_%s)) {", name, name)
		b.Linef("            mismatches.push_back(%q);", name)
		b.Linef("        }")
	}
	b.Linef("        return mismatches;")
	b.Linef("    }")
	b.Linef("};")
	b.Linef("")
	b.Linef("} // namespace photongen::%s", moduleName)
	return File{Path: fmt.Sprintf("%sValidator.hpp", strings.Title(moduleName)), Text: b.String()}
}
