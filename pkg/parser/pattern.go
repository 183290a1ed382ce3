package parser

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/token"
)

func (p *Parser) parsePattern() ast.Pattern {
	switch p.peek().Kind {
	case token.Ident:
		return p.parseIdentOrVariantPattern()
	case token.LParen:
		return p.parseTuplePattern()
	case token.IntLit, token.FloatLit, token.StringLit, token.BoolLit, token.NullLit, token.Minus:
		return p.parseLiteralPattern()
	default:
		p.errorHere("a pattern")
		tok := p.advance()

		return &ast.WildcardPattern{Span: tok.Span}
	}
}

func (p *Parser) parseIdentOrVariantPattern() ast.Pattern {
	tok := p.advance()
	name, _ := tok.Payload.(string)

	if name == "_" {
		return &ast.WildcardPattern{Span: tok.Span}
	}

	if p.match(token.LParen) {
		var payload ast.Pattern
		if !p.check(token.RParen) {
			payload = p.parsePattern()
		}

		p.expect(token.RParen, "')'")

		return &ast.VariantPattern{Variant: name, Payload: payload, Span: tok.Span.Join(p.previousEndSpan())}
	}

	if p.check(token.LBrace) {
		return p.parseRecordPattern(name, tok)
	}

	return &ast.BindPattern{Name: name, Span: tok.Span}
}

func (p *Parser) parseRecordPattern(name string, start token.Token) ast.Pattern {
	p.advance() // '{'

	var fields []ast.RecordFieldPattern

	for !p.check(token.RBrace) && !p.atEnd() {
		fname := p.parseIdentName()
		p.expect(token.Colon, "':'")
		fpat := p.parsePattern()
		fields = append(fields, ast.RecordFieldPattern{Name: fname, Pattern: fpat})

		if !p.match(token.Comma) {
			break
		}
	}

	p.expect(token.RBrace, "'}'")

	return &ast.RecordPattern{Name: name, Fields: fields, Span: start.Span.Join(p.previousEndSpan())}
}

func (p *Parser) parseTuplePattern() ast.Pattern {
	start := p.advance().Span // '('

	var elems []ast.Pattern
	for !p.check(token.RParen) && !p.atEnd() {
		elems = append(elems, p.parsePattern())
		if !p.match(token.Comma) {
			break
		}
	}

	p.expect(token.RParen, "')'")

	return &ast.TuplePattern{Elems: elems, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseLiteralPattern() ast.Pattern {
	start := p.peek().Span
	e := p.parseUnary()

	return &ast.LiteralPattern{Value: e, Span: start.Join(p.previousEndSpan())}
}
