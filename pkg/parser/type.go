package parser

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/token"
)

func (p *Parser) parseTypeExpr() ast.TypeExpr {
	t := p.parseTypePrimary()

	if p.check(token.Pipe) {
		members := []ast.TypeExpr{t}

		for p.match(token.Pipe) {
			members = append(members, p.parseTypePrimary())
		}

		return &ast.UnionType{Members: members, Span: t.SpanOf().Join(p.previousEndSpan())}
	}

	return t
}

func (p *Parser) parseTypePrimary() ast.TypeExpr {
	switch p.peek().Kind {
	case token.LParen:
		start := p.advance().Span

		var elems []ast.TypeExpr
		for !p.check(token.RParen) && !p.atEnd() {
			elems = append(elems, p.parseTypeExpr())
			if !p.match(token.Comma) {
				break
			}
		}

		p.expect(token.RParen, "')'")

		if p.match(token.Arrow) {
			ret := p.parseTypeExpr()
			return &ast.FnType{Params: elems, Return: ret, Span: start.Join(p.previousEndSpan())}
		}

		return &ast.TupleType{Elems: elems, Span: start.Join(p.previousEndSpan())}
	default:
		tok := p.expect(token.Ident, "a type name")
		name, _ := tok.Payload.(string)

		var args []ast.TypeExpr
		if p.match(token.LParen) {
			for !p.check(token.RParen) && !p.atEnd() {
				args = append(args, p.parseTypeExpr())
				if !p.match(token.Comma) {
					break
				}
			}

			p.expect(token.RParen, "')'")
		}

		return &ast.NamedType{Name: name, Args: args, Span: tok.Span.Join(p.previousEndSpan())}
	}
}
