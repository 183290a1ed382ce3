package parser

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/source"
	"github.com/lumen-lang/lumen/pkg/token"
)

func (p *Parser) parseItem() ast.Item {
	mustUse := false
	if p.check(token.Directive) && p.peek().Text == "@must_use" {
		mustUse = true
		p.advance()
		p.skipNewlines()
	}

	switch p.peek().Kind {
	case token.KwRecord:
		return p.parseRecordDef()
	case token.KwEnum:
		return p.parseEnumDef()
	case token.KwCell:
		return p.parseCellDef(mustUse)
	case token.KwType:
		return p.parseTypeAlias()
	case token.KwProcess:
		return p.parseProcessDef()
	case token.KwEffect:
		return p.parseEffectDef()
	case token.KwHandler:
		return p.parseHandlerDef()
	case token.KwImport:
		return p.parseImport()
	case token.KwTrait:
		return p.parseTraitDef()
	case token.KwImpl:
		return p.parseImplBlock()
	case token.KwExtern:
		return p.parseExternDecl()
	default:
		p.errorHere("a top-level item")
		p.synchronize()

		return nil
	}
}

func (p *Parser) parseIdentName() string {
	tok := p.expect(token.Ident, "an identifier")
	if tok.Kind != token.Ident {
		return ""
	}

	return tok.Payload.(string)
}

// parseBlock parses an indented block of statements: Newline Indent stmt*
// Dedent. A missing Indent yields an empty block and a diagnostic.
func (p *Parser) parseBlock() []ast.Stmt {
	p.skipNewlines()

	if !p.match(token.Indent) {
		p.errorHere("an indented block")
		return nil
	}

	var stmts []ast.Stmt

	p.skipNewlines()

	for !p.check(token.Dedent) && !p.atEnd() {
		stmts = append(stmts, p.parseStmt())
		p.skipNewlines()
	}

	p.match(token.Dedent)

	return stmts
}

func (p *Parser) parseParamList() []ast.Param {
	p.expect(token.LParen, "'('")

	var params []ast.Param

	for !p.check(token.RParen) && !p.atEnd() {
		start := p.peek().Span
		name := p.parseIdentName()

		var typ ast.TypeExpr
		if p.match(token.Colon) {
			typ = p.parseTypeExpr()
		}

		var def ast.Expr
		if p.match(token.Assign) {
			def = p.parseExpr()
		}

		params = append(params, ast.Param{Name: name, Type: typ, Default: def, Span: start.Join(p.peek().Span)})

		if !p.match(token.Comma) {
			break
		}
	}

	p.expect(token.RParen, "')'")

	return params
}

func (p *Parser) parseRecordDef() ast.Item {
	start := p.advance().Span // 'record'
	name := p.parseIdentName()

	p.skipNewlines()
	p.expect(token.Indent, "an indented field list")
	p.skipNewlines()

	var fields []ast.Field

	for !p.check(token.Dedent) && !p.atEnd() {
		fstart := p.peek().Span
		fname := p.parseIdentName()
		p.expect(token.Colon, "':'")
		ftype := p.parseTypeExpr()

		var where ast.Expr
		if p.match(token.KwWhere) {
			where = p.parseExpr()
		}

		fields = append(fields, ast.Field{Name: fname, Type: ftype, Where: where, Span: fstart.Join(p.peek().Span)})
		p.skipNewlines()
	}

	p.match(token.Dedent)

	return &ast.RecordDef{Name: name, Fields: fields, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseEnumDef() ast.Item {
	start := p.advance().Span // 'enum'
	name := p.parseIdentName()

	p.skipNewlines()
	p.expect(token.Indent, "an indented variant list")
	p.skipNewlines()

	var variants []ast.EnumVariant

	for !p.check(token.Dedent) && !p.atEnd() {
		vstart := p.peek().Span
		vname := p.parseIdentName()

		var payload ast.TypeExpr
		if p.match(token.LParen) {
			payload = p.parseTypeExpr()
			p.expect(token.RParen, "')'")
		}

		variants = append(variants, ast.EnumVariant{Name: vname, Payload: payload, Span: vstart.Join(p.previousEndSpan())})
		p.skipNewlines()
	}

	p.match(token.Dedent)

	return &ast.EnumDef{Name: name, Variants: variants, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseCellDef(mustUse bool) ast.Item {
	start := p.advance().Span // 'cell'
	name := p.parseIdentName()
	params := p.parseParamList()

	var ret ast.TypeExpr
	if p.match(token.Arrow) {
		ret = p.parseTypeExpr()
	}

	body := p.parseBlock()

	return &ast.CellDef{
		Name: name, Params: params, ReturnType: ret, Body: body, MustUse: mustUse,
		Span: start.Join(p.previousEndSpan()),
	}
}

func (p *Parser) parseTypeAlias() ast.Item {
	start := p.advance().Span // 'type'
	name := p.parseIdentName()
	p.expect(token.Assign, "'='")
	typ := p.parseTypeExpr()

	return &ast.TypeAliasDef{Name: name, Type: typ, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseProcessDef() ast.Item {
	start := p.advance().Span // 'process'
	name := p.parseIdentName()
	params := p.parseParamList()
	body := p.parseBlock()

	return &ast.ProcessDef{Name: name, Params: params, Body: body, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseEffectDef() ast.Item {
	start := p.advance().Span // 'effect'
	name := p.parseIdentName()
	params := p.parseParamList()

	var ret ast.TypeExpr
	if p.match(token.Arrow) {
		ret = p.parseTypeExpr()
	}

	return &ast.EffectDef{Name: name, Params: params, ReturnType: ret, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseHandlerDef() ast.Item {
	start := p.advance().Span // 'handler'
	name := p.parseIdentName()

	var effects []string
	if p.match(token.KwFor) {
		effects = append(effects, p.parseIdentName())
		for p.match(token.Comma) {
			effects = append(effects, p.parseIdentName())
		}
	}

	body := p.parseBlock()

	return &ast.HandlerDef{Name: name, Effects: effects, Body: body, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseImport() ast.Item {
	start := p.advance().Span // 'import'

	pathTok := p.expect(token.StringLit, "a module path string")
	path, _ := pathTok.Payload.(string)

	var symbols []string

	if p.match(token.LBrace) {
		for !p.check(token.RBrace) && !p.atEnd() {
			symbols = append(symbols, p.parseIdentName())
			if !p.match(token.Comma) {
				break
			}
		}

		p.expect(token.RBrace, "'}'")
	}

	alias := ""
	if p.match(token.KwAs) {
		alias = p.parseIdentName()
	}

	return &ast.ImportStmt{Path: path, Alias: alias, Symbols: symbols, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseTraitDef() ast.Item {
	start := p.advance().Span // 'trait'
	name := p.parseIdentName()
	p.skipNewlines()
	p.expect(token.Indent, "an indented method list")
	p.skipNewlines()

	var methods []ast.CellDef

	for !p.check(token.Dedent) && !p.atEnd() {
		if m, ok := p.parseCellDef(false).(*ast.CellDef); ok {
			methods = append(methods, *m)
		}

		p.skipNewlines()
	}

	p.match(token.Dedent)

	return &ast.TraitDef{Name: name, Methods: methods, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseImplBlock() ast.Item {
	start := p.advance().Span // 'impl'
	first := p.parseIdentName()

	trait, typ := "", first
	if p.match(token.KwFor) {
		trait = first
		typ = p.parseIdentName()
	}

	p.skipNewlines()
	p.expect(token.Indent, "an indented method list")
	p.skipNewlines()

	var methods []ast.CellDef

	for !p.check(token.Dedent) && !p.atEnd() {
		if m, ok := p.parseCellDef(false).(*ast.CellDef); ok {
			methods = append(methods, *m)
		}

		p.skipNewlines()
	}

	p.match(token.Dedent)

	return &ast.ImplBlock{Trait: trait, Type: typ, Methods: methods, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseExternDecl() ast.Item {
	start := p.advance().Span // 'extern'
	name := p.parseIdentName()
	params := p.parseParamList()

	var ret ast.TypeExpr
	if p.match(token.Arrow) {
		ret = p.parseTypeExpr()
	}

	return &ast.ExternDecl{Name: name, Params: params, ReturnType: ret, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) previousEndSpan() source.Span {
	if p.pos == 0 {
		return source.Span{}
	}

	return p.tokens[p.pos-1].Span
}
