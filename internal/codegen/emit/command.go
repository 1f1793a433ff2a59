package emit

import (
	"fmt"
	"strings"

	"github.com/cpb9/photongen/internal/ast"
	"github.com/cpb9/photongen/internal/codegen/inspect"
	"github.com/cpb9/photongen/internal/graph"
)

// CommandDecoder emits a component's dispatcher: it reads (compNum,
// cmdNum), decodes arguments field-by-field, calls the user's
// implementation, and writes the return value (spec.md §4.J "Command
// decoder").
func CommandDecoder(a *graph.Arena, moduleName string, comp *ast.Component, pointerWidth int) File {
	var b Builder
	b.Linef("void Photon%s_DispatchCommand(uint8_t compNum, uint8_t cmdNum, PhotonReader* src, PhotonWriter* dest) {", strings.Title(moduleName))
	b.Linef("    switch (cmdNum) {")
	for _, cmd := range comp.Commands {
		fn := a.Get(cmd.Func.Type)
		b.Linef("    case %d: {", cmd.Number)
		var args []string
		for i, arg := range fn.Args {
			argVar := fmt.Sprintf("arg%d", i)
			b.Linef("        %s %s;", cTypeName(a, arg.Type, pointerWidth), argVar)
			var body strings.Builder
			inspect.Emit(&body, a, arg.Type, argVar, inspect.Deserialize, inspect.Context{Indent: 2}, true, pointerWidth)
			b.WriteString(body.String())
			args = append(args, argVar)
		}
		callExpr := fmt.Sprintf("%s(%s)", cmd.Func.Name, strings.Join(args, ", "))
		if fn.HasReturn {
			b.Linef("        %s ret = %s;", cTypeName(a, fn.Return, pointerWidth), callExpr)
			var retBody strings.Builder
			inspect.Emit(&retBody, a, fn.Return, "ret", inspect.Serialize, inspect.Context{Indent: 2}, true, pointerWidth)
			b.WriteString(retBody.String())
		} else {
			b.Linef("        %s;", callExpr)
		}
		b.Linef("        break;")
		b.Linef("    }")
	}
	b.Linef("    }")
	b.Linef("}")
	return File{Path: "Cmd" + strings.Title(moduleName) + "Decoder.Private.c", Text: b.String()}
}

// CommandEncoder emits the inverse of CommandDecoder: it writes
// (compNum, cmdNum) then serializes the call's arguments (spec.md §4.J
// "Command encoder").
func CommandEncoder(a *graph.Arena, moduleName string, comp *ast.Component, pointerWidth int) File {
	var b Builder
	for _, cmd := range comp.Commands {
		fn := a.Get(cmd.Func.Type)
		var params []string
		for _, arg := range fn.Args {
			params = append(params, fmt.Sprintf("%s %s", cTypeName(a, arg.Type, pointerWidth), arg.Name))
		}
		b.Linef("void Photon%s_Encode_%s(uint8_t compNum, PhotonWriter* dest%s) {", strings.Title(moduleName), cmd.Func.Name, joinWithLeadingComma(params))
		b.Linef("    WIRE_PUT_U8(dest, compNum);")
		b.Linef("    WIRE_PUT_U8(dest, %d);", cmd.Number)
		for _, arg := range fn.Args {
			var body strings.Builder
			inspect.Emit(&body, a, arg.Type, arg.Name, inspect.Serialize, inspect.Context{Indent: 1}, true, pointerWidth)
			b.WriteString(body.String())
		}
		b.Linef("}")
		b.Linef("")
	}
	return File{Path: "Cmd" + strings.Title(moduleName) + "Encoder.Private.c", Text: b.String()}
}

func joinWithLeadingComma(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return ", " + strings.Join(params, ", ")
}

// CommandTraits emits the ground-control `<Component>CommandTraits.hpp`
// constant table supplemented in SPEC_FULL.md §4.P: a lookup from command
// number to its human-facing name/description, for commands whose `fn` in
// the `commands { }` section carried a `#[cmd_trait(...)]` attribute.
func CommandTraits(moduleName string, comp *ast.Component) File {
	var b Builder
	ns := moduleName
	b.Linef("namespace photongen::%s {", ns)
	b.Linef("")
	b.Linef("struct CommandTrait { const char* name; const char* desc; };")
	b.Linef("")
	b.Linef("inline constexpr CommandTrait kCommandTraits[] = {")
	for _, cmd := range comp.Commands {
		if cmd.CmdTrait == nil {
			continue
		}
		b.Linef("    {%q, %q}, // cmd %d", cmd.CmdTrait.Name, cmd.CmdTrait.Desc, cmd.Number)
	}
	b.Linef("};")
	b.Linef("")
	b.Linef("} // namespace photongen::%s", ns)
	return File{Path: strings.Title(moduleName) + "CommandTraits.hpp", Text: b.String()}
}
