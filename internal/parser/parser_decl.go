package parser

import (
	"github.com/cpb9/photongen/internal/ast"
	"github.com/cpb9/photongen/internal/diag"
	"github.com/cpb9/photongen/internal/graph"
	"github.com/cpb9/photongen/internal/lexer"
)

// parseNamedTypeDecl dispatches to struct/enum/variant/alias and registers
// the resulting type under its declared name (spec.md §3 invariant 1).
func (p *Parser) parseNamedTypeDecl() {
	doc := p.drainDoc()
	start := p.cur()
	var id graph.TypeID
	var name string
	var ok bool

	switch p.cur().Kind {
	case lexer.KwStruct:
		name, id, ok = p.parseStructDecl()
	case lexer.KwEnum:
		name, id, ok = p.parseEnumDecl()
	case lexer.KwVariant:
		name, id, ok = p.parseVariantDecl()
	case lexer.KwType:
		name, id, ok = p.parseAliasDecl()
	}
	if !ok {
		p.recoverToNextDecl()
		return
	}
	nt := &ast.NamedType{Name: name, Type: id, Doc: doc, Span: p.span(start)}
	if !p.ast.AddType(nt) {
		p.errorf(diag.CodeParseDuplicate, "duplicate top-level type name %q", name)
	}
}

func (p *Parser) parseFieldList() ([]graph.Field, bool) {
	var fields []graph.Field
	p.expect(lexer.LBrace)
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		p.skipDoc()
		nameTok, ok := p.expect(lexer.Identifier)
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(lexer.Colon); !ok {
			return nil, false
		}
		t, ok := p.parseType()
		if !ok {
			return nil, false
		}
		fields = append(fields, graph.Field{Name: nameTok.Literal, Type: t})
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(lexer.RBrace); !ok {
		return nil, false
	}
	return fields, true
}

func (p *Parser) parseStructDecl() (string, graph.TypeID, bool) {
	p.advance() // 'struct'
	nameTok, ok := p.expect(lexer.Identifier)
	if !ok {
		return "", graph.Nil, false
	}
	fields, ok := p.parseFieldList()
	if !ok {
		return "", graph.Nil, false
	}
	if dup := firstDuplicateField(fields); dup != "" {
		p.errorf(diag.CodeParseDuplicate, "duplicate field name %q in struct %q", dup, nameTok.Literal)
	}
	return nameTok.Literal, p.arena.NewStruct(nameTok.Literal, p.mod, fields), true
}

func firstDuplicateField(fields []graph.Field) string {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			return f.Name
		}
		seen[f.Name] = true
	}
	return ""
}

func (p *Parser) parseEnumDecl() (string, graph.TypeID, bool) {
	p.advance() // 'enum'
	nameTok, ok := p.expect(lexer.Identifier)
	if !ok {
		return "", graph.Nil, false
	}
	p.expect(lexer.LBrace)
	var constants []graph.EnumConstant
	seenValues := make(map[int64]bool)
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		p.skipDoc()
		cnameTok, ok := p.expect(lexer.Identifier)
		if !ok {
			return "", graph.Nil, false
		}
		if _, ok := p.expect(lexer.Equality); !ok {
			return "", graph.Nil, false
		}
		val, ok := p.parseSignedInteger()
		if !ok {
			return "", graph.Nil, false
		}
		if seenValues[val] {
			p.errorf(diag.CodeParseDuplicate, "duplicate enum value %d in %q", val, nameTok.Literal)
		}
		seenValues[val] = true
		constants = append(constants, graph.EnumConstant{Name: cnameTok.Literal, Value: val, UserSet: true})
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(lexer.RBrace); !ok {
		return "", graph.Nil, false
	}
	return nameTok.Literal, p.arena.NewEnum(nameTok.Literal, p.mod, constants), true
}

func (p *Parser) parseSignedInteger() (int64, bool) {
	neg := false
	if p.at(lexer.Dash) {
		neg = true
		p.advance()
	}
	numTok, ok := p.expect(lexer.Number)
	if !ok {
		return 0, false
	}
	u, ok := parseUint(numTok.Literal)
	if !ok {
		p.errorf(diag.CodeParseExpected, "invalid integer literal %q", numTok.Literal)
		return 0, false
	}
	v := int64(u)
	if neg {
		v = -v
	}
	return v, true
}

func (p *Parser) parseVariantDecl() (string, graph.TypeID, bool) {
	p.advance() // 'variant'
	nameTok, ok := p.expect(lexer.Identifier)
	if !ok {
		return "", graph.Nil, false
	}
	p.expect(lexer.LBrace)
	var branches []graph.VariantField
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		p.skipDoc()
		branchName, ok := p.expect(lexer.Identifier)
		if !ok {
			return "", graph.Nil, false
		}
		branch := graph.VariantField{Name: branchName.Literal, Kind: graph.VariantConstant}
		switch p.cur().Kind {
		case lexer.LParen:
			branch.Kind = graph.VariantTuple
			p.advance()
			for !p.at(lexer.RParen) && !p.at(lexer.EOF) {
				t, ok := p.parseType()
				if !ok {
					return "", graph.Nil, false
				}
				branch.Tuple = append(branch.Tuple, t)
				if p.at(lexer.Comma) {
					p.advance()
					continue
				}
				break
			}
			p.expect(lexer.RParen)
		case lexer.LBrace:
			branch.Kind = graph.VariantStruct
			fields, ok := p.parseFieldList()
			if !ok {
				return "", graph.Nil, false
			}
			branch.Fields = fields
		}
		branches = append(branches, branch)
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(lexer.RBrace); !ok {
		return "", graph.Nil, false
	}
	return nameTok.Literal, p.arena.New(graph.Type{Kind: graph.KindVariant, Name: nameTok.Literal, Module: p.mod, VariantFields: branches}), true
}

func (p *Parser) parseAliasDecl() (string, graph.TypeID, bool) {
	p.advance() // 'type'
	nameTok, ok := p.expect(lexer.Identifier)
	if !ok {
		return "", graph.Nil, false
	}
	if _, ok := p.expect(lexer.Equality); !ok {
		return "", graph.Nil, false
	}
	target, ok := p.parseType()
	if !ok {
		return "", graph.Nil, false
	}
	if _, ok := p.expect(lexer.SemiColon); !ok {
		return "", graph.Nil, false
	}
	return nameTok.Literal, p.arena.New(graph.Type{Kind: graph.KindAlias, Name: nameTok.Literal, Module: p.mod, AliasTarget: target}), true
}

// parseGenericDecl parses `generic Name<P, ...>` followed by
// `struct { fields }`, `variant Name { branches }` or a type expression;
// `enum` and `type` bodies are not accepted
// (spec.md §3 "Generic"; this grammar is a SPEC_FULL.md addition absent from
// the original source -- see DESIGN.md).
func (p *Parser) parseGenericDecl() {
	doc := p.drainDoc()
	start := p.advance() // 'generic'
	nameTok, ok := p.expect(lexer.Identifier)
	if !ok {
		p.recoverToNextDecl()
		return
	}
	if _, ok := p.expect(lexer.LessThen); !ok {
		p.recoverToNextDecl()
		return
	}
	var params []string
	for !p.at(lexer.MoreThen) && !p.at(lexer.EOF) {
		paramTok, ok := p.expect(lexer.Identifier)
		if !ok {
			p.recoverToNextDecl()
			return
		}
		params = append(params, paramTok.Literal)
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(lexer.MoreThen); !ok {
		p.recoverToNextDecl()
		return
	}

	p.genericScope = make(map[string]graph.TypeID, len(params))
	for _, name := range params {
		p.genericScope[name] = p.arena.New(graph.Type{Kind: graph.KindGenericParameter, ParamName: name})
	}

	var body graph.TypeID
	switch p.cur().Kind {
	case lexer.KwStruct:
		p.advance()
		fields, ok := p.parseFieldList()
		if !ok {
			p.genericScope = nil
			p.recoverToNextDecl()
			return
		}
		body = p.arena.NewStruct(nameTok.Literal, p.mod, fields)
	case lexer.KwVariant:
		_, id, ok := p.parseVariantDecl()
		if !ok {
			p.genericScope = nil
			p.recoverToNextDecl()
			return
		}
		body = id
	default:
		b, ok := p.parseType()
		if !ok {
			p.genericScope = nil
			p.recoverToNextDecl()
			return
		}
		body = b
	}
	p.genericScope = nil

	id := p.arena.New(graph.Type{Kind: graph.KindGeneric, Name: nameTok.Literal, Module: p.mod, Params: params, Body: body})
	gd := &ast.GenericDecl{Name: nameTok.Literal, Type: id, Doc: doc, Span: p.span(start)}
	p.ast.Generic = append(p.ast.Generic, gd)
	if !p.ast.AddType(&ast.NamedType{Name: nameTok.Literal, Type: id, Doc: doc, Span: gd.Span}) {
		p.errorf(diag.CodeParseDuplicate, "duplicate top-level type name %q", nameTok.Literal)
	}
}

func (p *Parser) parseConst() {
	doc := p.drainDoc()
	start := p.advance() // 'const'
	nameTok, ok := p.expect(lexer.Identifier)
	if !ok {
		p.recoverToNextDecl()
		return
	}
	if _, ok := p.expect(lexer.Colon); !ok {
		p.recoverToNextDecl()
		return
	}
	t, ok := p.parseType()
	if !ok {
		p.recoverToNextDecl()
		return
	}
	if p.arena.Get(t).Kind != graph.KindBuiltin {
		p.errorf(diag.CodeTypeMismatch, "constant %q can only be of builtin type", nameTok.Literal)
	}
	if _, ok := p.expect(lexer.Equality); !ok {
		p.recoverToNextDecl()
		return
	}
	val, ok := p.parseSignedInteger()
	if !ok {
		p.recoverToNextDecl()
		return
	}
	p.expect(lexer.SemiColon)
	p.ast.Consts = append(p.ast.Consts, &ast.Const{Name: nameTok.Literal, Type: t, Value: val, Doc: doc, Span: p.span(start)})
}

// parseFunctionSig parses `fn name([&[mut] self,] (ident: Type)*) [-> Type]`.
func (p *Parser) parseFunctionSig(attrs []*ast.Attribute) *ast.Function {
	doc := p.drainDoc()
	start := p.advance() // 'fn'
	nameTok, ok := p.expect(lexer.Identifier)
	if !ok {
		return nil
	}
	p.expect(lexer.LParen)

	self := graph.SelfNone
	var args []graph.Arg
	first := true
	for !p.at(lexer.RParen) && !p.at(lexer.EOF) {
		if first && p.at(lexer.Ampersand) {
			save := p.pos
			p.advance()
			mut := p.at(lexer.KwMut)
			if mut {
				p.advance()
			}
			if p.at(lexer.KwSelf) {
				p.advance()
				if mut {
					self = graph.SelfMutReference
				} else {
					self = graph.SelfReference
				}
				first = false
				if p.at(lexer.Comma) {
					p.advance()
				}
				continue
			}
			p.pos = save
		}
		if first && p.at(lexer.KwSelf) {
			p.advance()
			self = graph.SelfValue
			first = false
			if p.at(lexer.Comma) {
				p.advance()
			}
			continue
		}
		first = false
		argName, ok := p.expect(lexer.Identifier)
		if !ok {
			return nil
		}
		if _, ok := p.expect(lexer.Colon); !ok {
			return nil
		}
		t, ok := p.parseType()
		if !ok {
			return nil
		}
		args = append(args, graph.Arg{Name: argName.Literal, Type: t})
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RParen)

	ret := graph.Nil
	hasReturn := false
	if p.at(lexer.RightArrow) {
		p.advance()
		r, ok := p.parseType()
		if !ok {
			return nil
		}
		ret, hasReturn = r, true
	}

	// The function body, when present, is opaque to the compiler (spec.md §1
	// Non-goals: "does not execute generated code"); it is skipped verbatim.
	if p.at(lexer.LBrace) {
		p.skipBraceGroup()
	} else {
		p.expect(lexer.SemiColon)
	}

	fnType := p.arena.New(graph.Type{Kind: graph.KindFunction, Args: args, Return: ret, HasReturn: hasReturn, Self: self})
	return &ast.Function{Name: nameTok.Literal, Type: fnType, Attrs: attrs, Doc: doc, Span: p.span(start)}
}

func (p *Parser) skipBraceGroup() {
	p.expect(lexer.LBrace)
	depth := 0
	for {
		switch p.cur().Kind {
		case lexer.LBrace:
			depth++
		case lexer.RBrace:
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

func (p *Parser) parseImplBlock() {
	start := p.advance() // 'impl'
	nameTok, ok := p.expect(lexer.Identifier)
	if !ok {
		p.recoverToNextDecl()
		return
	}
	impl := p.parseImplBody(nameTok.Literal)
	if impl == nil {
		p.recoverToNextDecl()
		return
	}
	impl.Span = p.span(start)
	p.ast.Impls = append(p.ast.Impls, impl)
}

func (p *Parser) parseImplBody(targetName string) *ast.ImplBlock {
	if _, ok := p.expect(lexer.LBrace); !ok {
		return nil
	}
	impl := &ast.ImplBlock{TargetName: targetName}
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		p.skipDoc()
		attrs := p.parseAttributes()
		if !p.at(lexer.KwFn) {
			p.errorf(diag.CodeParseExpected, "expected 'fn' inside impl block, found %s", p.cur().Kind)
			return nil
		}
		fn := p.parseFunctionSig(attrs)
		if fn == nil {
			return nil
		}
		impl.Functions = append(impl.Functions, fn)
	}
	if _, ok := p.expect(lexer.RBrace); !ok {
		return nil
	}
	return impl
}
