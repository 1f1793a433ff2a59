package emit

import (
	"fmt"
	"strings"

	"github.com/cpb9/photongen/internal/ast"
	"github.com/cpb9/photongen/internal/codegen/inspect"
	"github.com/cpb9/photongen/internal/graph"
)

// StatusEncoder emits, per (component, status), a function that walks the
// StatusRegexp path on the component's Vars, writing the sampled value
// (spec.md §4.J "Status encoder/decoder"): slices get a leading varuint
// length, ranges emit bounded loops, indices emit direct subscripts.
func StatusEncoder(a *graph.Arena, moduleName string, comp *ast.Component, status *ast.StatusMsg, pointerWidth int) File {
	var b Builder
	fnName := fmt.Sprintf("Photon%s_EncodeStatus%d", strings.Title(moduleName), status.ID)
	b.Linef("void %s(const PhotonVars%s* vars, PhotonWriter* dest) {", fnName, strings.Title(moduleName))
	for i, rx := range status.Regexps {
		expr, terminal := pathExpr(a, "vars", rx)
		b.Linef("    // regexp %d", i)
		var body strings.Builder
		inspect.Emit(&body, a, terminal, expr, inspect.Serialize, inspect.Context{Indent: 1}, true, pointerWidth)
		b.WriteString(body.String())
	}
	b.Linef("}")
	return File{Path: fmt.Sprintf("Status%sEncoder%d.Private.c", strings.Title(moduleName), status.ID), Text: b.String()}
}

// StatusDecoder emits the inverse of StatusEncoder: it reads the wire
// bytes back into the path's terminal fields.
func StatusDecoder(a *graph.Arena, moduleName string, comp *ast.Component, status *ast.StatusMsg, pointerWidth int) File {
	var b Builder
	fnName := fmt.Sprintf("Photon%s_DecodeStatus%d", strings.Title(moduleName), status.ID)
	b.Linef("void %s(PhotonVars%s* vars, PhotonReader* src) {", fnName, strings.Title(moduleName))
	for i, rx := range status.Regexps {
		expr, terminal := pathExpr(a, "vars", rx)
		b.Linef("    // regexp %d", i)
		var body strings.Builder
		inspect.Emit(&body, a, terminal, expr, inspect.Deserialize, inspect.Context{Indent: 1}, true, pointerWidth)
		b.WriteString(body.String())
	}
	b.Linef("}")
	return File{Path: fmt.Sprintf("Status%sDecoder%d.Private.c", strings.Title(moduleName), status.ID), Text: b.String()}
}

// pathExpr renders a StatusRegexp's accessor path as a C expression over
// root, returning it alongside the path's resolved terminal type. Field
// accessors render as `.name`; index accessors as `[N]`; range accessors
// render the base array expression (the caller emits a bounded loop over
// [Lower,Upper) itself when the terminal is still an aggregate -- here we
// render direct element access since Terminal is already the scalar/named
// element type the linker resolved).
func pathExpr(a *graph.Arena, root string, rx *ast.StatusRegexp) (string, graph.TypeID) {
	expr := root
	for _, acc := range rx.Path {
		switch acc.Kind {
		case ast.AccessorField:
			expr = expr + "." + acc.Field
		case ast.AccessorIndex:
			expr = fmt.Sprintf("%s[%d]", expr, acc.Index)
		case ast.AccessorRange:
			expr = fmt.Sprintf("%s /* [%d..%d) */", expr, acc.Lower, acc.Upper)
		}
	}
	return expr, rx.Terminal
}
