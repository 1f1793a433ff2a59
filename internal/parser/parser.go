// Package parser implements the photon IDL recursive-descent parser
// (spec.md §4.C). Each failure appends a diagnostic Report and returns a
// null/zero result so the caller can continue or bail; the parser never
// panics on malformed input.
package parser

import (
	"strconv"
	"strings"

	"github.com/cpb9/photongen/internal/ast"
	"github.com/cpb9/photongen/internal/diag"
	"github.com/cpb9/photongen/internal/graph"
	"github.com/cpb9/photongen/internal/lexer"
	"github.com/cpb9/photongen/internal/source"
)

// Parser holds explicit token-consumption state for one file. Nothing here
// is global: the doc-comment buffer is a field cleared after every
// consuming declaration (spec.md §9).
type Parser struct {
	toks  []lexer.Token
	pos   int
	file  *source.FileInfo
	arena *graph.Arena
	sink  *diag.Sink

	mod *source.ModuleInfo
	ast *ast.Ast

	docBuf []string

	// genericScope, when non-nil, maps a generic declaration's type
	// parameter names to their GenericParameter type ids while parsing its
	// body.
	genericScope map[string]graph.TypeID
}

// New creates a Parser for file, normalizing and tokenizing file.Text itself
// before parsing begins. arena is the
// shared package arena every allocated type is placed into (spec.md §9:
// generic instantiations share the Generic's arena; we share one arena per
// package so cross-module Imported links are plain TypeIDs).
func New(file *source.FileInfo, arena *graph.Arena, sink *diag.Sink) *Parser {
	normalized := string(lexer.Normalize([]byte(file.Text)))
	toks := lexer.New(normalized).Tokenize()
	return &Parser{toks: toks, file: file, arena: arena, sink: sink}
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) lexer.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) at(k lexer.Kind) bool { return p.cur().Kind == k }

// nextIs reports whether the token one past the current one has kind k
// (spec.md §4.B: "Lookahead of one token is required").
func (p *Parser) nextIs(k lexer.Kind) bool { return p.peek(1).Kind == k }

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) span(start lexer.Token) source.Span {
	end := p.toks[max(0, p.pos-1)]
	return source.Span{
		Start: source.Pos{Offset: start.Offset, Line: start.Line, Column: start.Column},
		End:   source.Pos{Offset: end.Offset + len(end.Literal), Line: end.Line, Column: end.Column + len(end.Literal)},
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (p *Parser) errorf(code diag.Code, format string, args ...any) {
	tok := p.cur()
	sp := source.Span{Start: source.Pos{Offset: tok.Offset, Line: tok.Line, Column: tok.Column}}
	p.sink.Errorf(code, p.file, &sp, format, args...)
}

// expect consumes the current token if it has kind k, else reports a
// diagnostic and leaves the cursor in place so the caller can attempt
// recovery.
func (p *Parser) expect(k lexer.Kind) (lexer.Token, bool) {
	if p.cur().Kind != k {
		p.errorf(diag.CodeParseExpected, "expected %s, found %s %q", k, p.cur().Kind, p.cur().Literal)
		return lexer.Token{}, false
	}
	return p.advance(), true
}

// skipDoc drains any DocComment tokens immediately preceding the current
// token into the pending doc buffer (spec.md §4.C).
func (p *Parser) skipDoc() {
	for p.at(lexer.DocComment) {
		p.docBuf = append(p.docBuf, p.advance().Literal)
	}
}

// drainDoc converts and clears the pending doc buffer.
func (p *Parser) drainDoc() *ast.DocBlock {
	if len(p.docBuf) == 0 {
		return nil
	}
	lines := make([]string, len(p.docBuf))
	for i, l := range p.docBuf {
		lines[i] = strings.TrimPrefix(l, " ")
	}
	p.docBuf = nil
	return &ast.DocBlock{Short: lines[0], Long: lines}
}

// ParseFile builds the Ast for one file, or returns nil with >=1 Error
// report appended to sink (spec.md §8 "Parse totality").
func ParseFile(file *source.FileInfo, arena *graph.Arena, sink *diag.Sink) *ast.Ast {
	p := New(file, arena, sink)
	return p.parseFile()
}

func (p *Parser) parseFile() *ast.Ast {
	p.skipDoc()
	modName, ok := p.parseModuleDecl()
	if !ok {
		return nil
	}
	p.mod = &source.ModuleInfo{Name: modName, File: p.file}
	p.ast = ast.NewAst(p.mod)

	p.parseImports()

	for {
		p.skipDoc()
		attrs := p.parseAttributes()
		switch p.cur().Kind {
		case lexer.EOF:
			return p.ast
		case lexer.KwStruct, lexer.KwEnum, lexer.KwVariant, lexer.KwType:
			p.parseNamedTypeDecl()
		case lexer.KwGeneric:
			p.parseGenericDecl()
		case lexer.KwConst:
			p.parseConst()
		case lexer.KwImpl:
			p.parseImplBlock()
		case lexer.KwComponent:
			p.parseComponentDecl(attrs)
		default:
			p.errorf(diag.CodeParseExpected, "expected a top-level declaration, found %s %q", p.cur().Kind, p.cur().Literal)
			p.recoverToNextDecl()
		}
	}
}

// recoverToNextDecl skips tokens until one that can start a new top-level
// declaration, so a single malformed declaration doesn't cascade into
// dozens of spurious diagnostics (spec.md §7 policy).
func (p *Parser) recoverToNextDecl() {
	for {
		switch p.cur().Kind {
		case lexer.EOF,
			lexer.KwStruct, lexer.KwEnum, lexer.KwVariant, lexer.KwType,
			lexer.KwGeneric, lexer.KwConst, lexer.KwImpl, lexer.KwComponent, lexer.Hash:
			return
		}
		p.advance()
	}
}

func (p *Parser) parseModuleDecl() (string, bool) {
	if _, ok := p.expect(lexer.KwModule); !ok {
		return "", false
	}
	name, ok := p.expect(lexer.Identifier)
	if !ok {
		return "", false
	}
	return name.Literal, true
}

func (p *Parser) parseImports() {
	for p.at(lexer.KwImport) {
		p.parseOneImport()
	}
}

func (p *Parser) parseOneImport() {
	start := p.advance() // 'import'
	modTok, ok := p.expect(lexer.Identifier)
	if !ok {
		p.recoverToNextDecl()
		return
	}
	if _, ok := p.expect(lexer.DoubleColon); !ok {
		p.recoverToNextDecl()
		return
	}

	for _, existing := range p.ast.Imports {
		if existing.ModulePath == modTok.Literal {
			p.errorf(diag.CodeParseDuplicate, "duplicate import of module %q", modTok.Literal)
		}
	}

	decl := &ast.ImportDecl{ModulePath: modTok.Literal}

	addName := func(nameTok lexer.Token) {
		stub := p.arena.New(graph.Type{Kind: graph.KindImported, Name: nameTok.Literal, ImportPath: modTok.Literal, Link: graph.Nil})
		it := &ast.ImportedType{Name: nameTok.Literal, Type: stub, Span: p.span(nameTok)}
		decl.Types = append(decl.Types, it)
		p.ast.AddType(&ast.NamedType{Name: nameTok.Literal, Type: stub, Span: it.Span})
	}

	if p.at(lexer.Identifier) {
		addName(p.advance())
	} else if p.at(lexer.LBrace) {
		p.advance()
		for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
			nameTok, ok := p.expect(lexer.Identifier)
			if !ok {
				break
			}
			addName(nameTok)
			if p.at(lexer.Comma) {
				p.advance()
				continue
			}
			break
		}
		p.expect(lexer.RBrace)
	} else {
		p.errorf(diag.CodeParseExpected, "expected an identifier or '{' after '::'")
	}

	decl.Span = p.span(start)
	p.ast.Imports = append(p.ast.Imports, decl)
}

// parseAttributes parses zero or more `#[...]` attributes preceding a
// declaration (spec.md §4.C).
func (p *Parser) parseAttributes() []*ast.Attribute {
	var attrs []*ast.Attribute
	for p.at(lexer.Hash) {
		start := p.advance()
		p.expect(lexer.LBracket)
		nameTok, ok := p.expect(lexer.Identifier)
		if !ok {
			p.recoverPastBracket()
			continue
		}
		attr := &ast.Attribute{Name: nameTok.Literal}
		if p.at(lexer.LParen) {
			switch nameTok.Literal {
			case "cfg":
				attr.Cfg = p.parseCfgPredicate()
			case "cmd_trait":
				attr.CmdTrait = p.parseCmdTraitArgs()
			default:
				p.skipParenGroup()
			}
		}
		p.expect(lexer.RBracket)
		attr.Span = p.span(start)
		attrs = append(attrs, attr)
	}
	return attrs
}

func (p *Parser) recoverPastBracket() {
	depth := 0
	for {
		switch p.cur().Kind {
		case lexer.LBracket:
			depth++
		case lexer.RBracket:
			if depth == 0 {
				p.advance()
				return
			}
			depth--
		case lexer.EOF:
			return
		}
		p.advance()
	}
}

func (p *Parser) skipParenGroup() {
	p.expect(lexer.LParen)
	depth := 0
	for {
		switch p.cur().Kind {
		case lexer.LParen:
			depth++
		case lexer.RParen:
			if depth == 0 {
				p.advance()
				return
			}
			depth--
		case lexer.EOF:
			return
		}
		p.advance()
	}
}

// parseCfgPredicate parses the `(...)` body of `#[cfg(...)]`: a single
// key[=value], or `not(p)`, `any(p, ...)`, `all(p, ...)` (spec.md §4.C).
func (p *Parser) parseCfgPredicate() *ast.CfgPredicate {
	p.expect(lexer.LParen)
	pred := p.parseCfgExpr()
	p.expect(lexer.RParen)
	return pred
}

func (p *Parser) parseCfgExpr() *ast.CfgPredicate {
	keyTok, ok := p.expect(lexer.Identifier)
	if !ok {
		return nil
	}
	switch keyTok.Literal {
	case "not":
		p.expect(lexer.LParen)
		child := p.parseCfgExpr()
		p.expect(lexer.RParen)
		return &ast.CfgPredicate{Kind: "not", Children: []*ast.CfgPredicate{child}}
	case "any", "all":
		var children []*ast.CfgPredicate
		p.expect(lexer.LParen)
		for !p.at(lexer.RParen) && !p.at(lexer.EOF) {
			children = append(children, p.parseCfgExpr())
			if p.at(lexer.Comma) {
				p.advance()
				continue
			}
			break
		}
		p.expect(lexer.RParen)
		return &ast.CfgPredicate{Kind: keyTok.Literal, Children: children}
	default:
		pred := &ast.CfgPredicate{Kind: "key", Key: keyTok.Literal}
		if p.at(lexer.Equality) {
			p.advance()
			// values are bare identifiers in this grammar (no string literal kind)
			if valTok, ok := p.expect(lexer.Identifier); ok {
				pred.Value = valTok.Literal
			}
		}
		return pred
	}
}

// parseCmdTraitArgs parses `(name = Ident, desc = Ident)` for
// `#[cmd_trait(...)]` (SPEC_FULL.md §4.P).
func (p *Parser) parseCmdTraitArgs() *ast.CmdTraitInfo {
	info := &ast.CmdTraitInfo{}
	p.expect(lexer.LParen)
	for !p.at(lexer.RParen) && !p.at(lexer.EOF) {
		keyTok, ok := p.expect(lexer.Identifier)
		if !ok {
			break
		}
		p.expect(lexer.Equality)
		valTok, ok := p.expect(lexer.Identifier)
		if !ok {
			break
		}
		switch keyTok.Literal {
		case "name":
			info.Name = valTok.Literal
		case "desc":
			info.Desc = valTok.Literal
		}
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RParen)
	return info
}

func parseUint(lit string) (uint64, bool) {
	base := 10
	s := lit
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		base = 16
		s = lit[2:]
	}
	v, err := strconv.ParseUint(s, base, 64)
	return v, err == nil
}
