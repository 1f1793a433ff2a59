package parser

import (
	"github.com/cpb9/photongen/internal/ast"
	"github.com/cpb9/photongen/internal/diag"
	"github.com/cpb9/photongen/internal/graph"
	"github.com/cpb9/photongen/internal/lexer"
)

// parseComponentDecl parses `component { (parameters {…} | commands {…} |
// statuses {…} | impl {…})* }` (spec.md §3 "Component", §4.C grammar
// sketch). The component itself carries no source-level name; its numeric
// id is assigned later, at package-linker registration.
func (p *Parser) parseComponentDecl(attrs []*ast.Attribute) {
	start := p.advance() // 'component'

	comp := ast.NewComponent(p.mod)
	if _, ok := p.expect(lexer.LBrace); !ok {
		p.recoverToNextDecl()
		return
	}

	var sawParameters, sawCommands, sawStatuses bool
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		p.skipDoc()
		switch p.cur().Kind {
		case lexer.KwParameters:
			if sawParameters {
				p.errorf(diag.CodeParseDuplicate, "component can have only one parameters declaration")
			}
			sawParameters = true
			p.parseParametersSection(comp)
		case lexer.KwCommands:
			if sawCommands {
				p.errorf(diag.CodeParseDuplicate, "component can have only one commands declaration")
			}
			sawCommands = true
			p.parseCommandsSection(comp)
		case lexer.KwStatuses:
			if sawStatuses {
				p.errorf(diag.CodeParseDuplicate, "component can have only one statuses declaration")
			}
			sawStatuses = true
			p.parseStatusesSection(comp)
		case lexer.KwImpl:
			p.advance()
			impl := p.parseImplBody("")
			if impl != nil {
				comp.Impl = impl
			}
		case lexer.RBrace:
			// handled by the loop condition
		default:
			p.errorf(diag.CodeParseExpected, "invalid component level token %s", p.cur().Kind)
			p.recoverPastBrace()
		}
	}
	p.expect(lexer.RBrace)

	if comp.Vars == graph.Nil {
		comp.Vars = p.arena.NewStruct("Vars", p.mod, nil)
	}
	comp.Span = p.span(start)
	p.ast.Comp = comp
}

// recoverPastBrace skips tokens until the component's closing brace, used
// when a subsection keyword is unrecognized.
func (p *Parser) recoverPastBrace() {
	for {
		switch p.cur().Kind {
		case lexer.RBrace, lexer.EOF:
			return
		}
		p.advance()
	}
}

// parseParametersSection parses `parameters { name: Type, ... }`: a
// brace-enclosed, comma-separated list of fields (a trailing comma is
// allowed).
func (p *Parser) parseParametersSection(comp *ast.Component) {
	p.advance() // 'parameters'
	if _, ok := p.expect(lexer.LBrace); !ok {
		return
	}
	var fields []graph.Field
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		p.skipDoc()
		if p.at(lexer.RBrace) {
			break
		}
		nameTok, ok := p.expect(lexer.Identifier)
		if !ok {
			p.recoverPastBrace()
			break
		}
		if _, ok := p.expect(lexer.Colon); !ok {
			p.recoverPastBrace()
			break
		}
		t, ok := p.parseType()
		if !ok {
			p.recoverPastBrace()
			break
		}
		fields = append(fields, graph.Field{Name: nameTok.Literal, Type: t})
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RBrace)
	if dup := firstDuplicateField(fields); dup != "" {
		p.errorf(diag.CodeParseDuplicate, "duplicate parameter name %q", dup)
	}
	comp.Vars = p.arena.NewStruct("Vars", p.mod, fields)
}

// parseCommandsSection parses an ordered list of `fn` signatures, each
// optionally preceded by a `#[cmd_trait(...)]` attribute (SPEC_FULL.md §4.P),
// assigning command numbers by declaration order.
func (p *Parser) parseCommandsSection(comp *ast.Component) {
	p.advance() // 'commands'
	if _, ok := p.expect(lexer.LBrace); !ok {
		return
	}
	number := 0
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		p.skipDoc()
		if p.at(lexer.RBrace) {
			break
		}
		attrs := p.parseAttributes()
		if !p.at(lexer.KwFn) {
			p.errorf(diag.CodeParseExpected, "expected 'fn' inside commands section, found %s", p.cur().Kind)
			p.recoverPastBrace()
			break
		}
		fn := p.parseFunctionSig(attrs)
		if fn == nil {
			break
		}
		cmd := &ast.Command{Number: number, Func: fn}
		for _, a := range attrs {
			if a.CmdTrait != nil {
				cmd.CmdTrait = a.CmdTrait
			}
		}
		comp.Commands = append(comp.Commands, cmd)
		number++
	}
	p.expect(lexer.RBrace)
}

// parseStatusesSection parses comma-separated
// `[id, priority, enabled]: (path | {path, ...})` entries (spec.md §3
// "Status message", §4.C grammar sketch).
func (p *Parser) parseStatusesSection(comp *ast.Component) {
	p.advance() // 'statuses'
	if _, ok := p.expect(lexer.LBrace); !ok {
		return
	}
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		p.skipDoc()
		if p.at(lexer.RBrace) {
			break
		}
		p.parseStatusEntry(comp)
		if p.at(lexer.Comma) {
			p.advance()
		}
	}
	p.expect(lexer.RBrace)
}

func (p *Parser) parseStatusEntry(comp *ast.Component) {
	start := p.cur()
	if _, ok := p.expect(lexer.LBracket); !ok {
		p.recoverPastBrace()
		return
	}
	idTok, ok := p.expect(lexer.Number)
	if !ok {
		p.recoverPastBrace()
		return
	}
	id64, ok := parseUint(idTok.Literal)
	if !ok {
		p.errorf(diag.CodeParseExpected, "invalid status id %q", idTok.Literal)
		p.recoverPastBrace()
		return
	}
	p.expect(lexer.Comma)
	priTok, ok := p.expect(lexer.Number)
	if !ok {
		p.recoverPastBrace()
		return
	}
	pri64, _ := parseUint(priTok.Literal)
	p.expect(lexer.Comma)
	enabledTok, ok := p.expect(lexer.Identifier)
	if !ok {
		p.recoverPastBrace()
		return
	}
	var enabled bool
	switch enabledTok.Literal {
	case "true":
		enabled = true
	case "false":
		enabled = false
	default:
		p.errorf(diag.CodeParseExpected, "expected 'true' or 'false', found %q", enabledTok.Literal)
	}
	if _, ok := p.expect(lexer.RBracket); !ok {
		p.recoverPastBrace()
		return
	}
	if _, ok := p.expect(lexer.Colon); !ok {
		p.recoverPastBrace()
		return
	}

	msg := &ast.StatusMsg{ID: int(id64), Priority: int(pri64), Enabled: enabled}

	if p.at(lexer.LBrace) {
		p.advance()
		for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
			if rx := p.parseStatusRegexp(); rx != nil {
				msg.Regexps = append(msg.Regexps, rx)
			}
			if p.at(lexer.Comma) {
				p.advance()
				continue
			}
			break
		}
		p.expect(lexer.RBrace)
	} else if p.at(lexer.Identifier) {
		if rx := p.parseStatusRegexp(); rx != nil {
			msg.Regexps = append(msg.Regexps, rx)
		}
	}

	msg.Span = p.span(start)

	if _, dup := comp.Statuses[msg.ID]; dup {
		p.errorf(diag.CodeParseDuplicate, "status with id %d already defined", msg.ID)
		return
	}
	comp.Statuses[msg.ID] = msg
}

// parseStatusRegexp parses one accessor path: `field (.field | [index] |
// [lower..upper])*` (spec.md §3, §4.E phase 3). A bare subscript
// immediately following another subscript (no intervening `.`) is legal;
// the teacher's grammar only requires `.` before a field accessor.
func (p *Parser) parseStatusRegexp() *ast.StatusRegexp {
	start := p.cur()
	rootTok, ok := p.expect(lexer.Identifier)
	if !ok {
		return nil
	}
	rx := &ast.StatusRegexp{Path: []ast.Accessor{{Kind: ast.AccessorField, Field: rootTok.Literal, Span: p.span(rootTok)}}}

	for {
		switch p.cur().Kind {
		case lexer.Dot:
			p.advance()
			if p.at(lexer.Identifier) {
				fieldTok := p.advance()
				rx.Path = append(rx.Path, ast.Accessor{Kind: ast.AccessorField, Field: fieldTok.Literal, Span: p.span(fieldTok)})
			}
		case lexer.LBracket:
			bstart := p.advance()
			var lo uint64
			haveLo := false
			if p.at(lexer.Number) {
				numTok := p.advance()
				lo, _ = parseUint(numTok.Literal)
				haveLo = true
			}
			if p.at(lexer.DoubleDot) {
				p.advance()
				var hi uint64
				if p.at(lexer.Number) {
					numTok := p.advance()
					hi, _ = parseUint(numTok.Literal)
				}
				p.expect(lexer.RBracket)
				rx.Path = append(rx.Path, ast.Accessor{Kind: ast.AccessorRange, Lower: lo, Upper: hi, Span: p.span(bstart)})
			} else {
				p.expect(lexer.RBracket)
				if haveLo {
					rx.Path = append(rx.Path, ast.Accessor{Kind: ast.AccessorIndex, Index: lo, Span: p.span(bstart)})
				}
			}
		default:
			rx.Span = p.span(start)
			return rx
		}
	}
}
