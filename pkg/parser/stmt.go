package parser

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/token"
)

func (p *Parser) parseStmt() ast.Stmt {
	switch p.peek().Kind {
	case token.KwLet:
		return p.parseLetStmt()
	case token.KwReturn:
		return p.parseReturnStmt()
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwWhile:
		return p.parseWhileStmt()
	case token.KwFor:
		return p.parseForStmt()
	case token.KwMatch:
		return p.parseMatchStmt()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseLetStmt() ast.Stmt {
	start := p.advance().Span // 'let'
	mut := p.match(token.KwMut)
	name := p.parseIdentName()

	var typ ast.TypeExpr
	if p.match(token.Colon) {
		typ = p.parseTypeExpr()
	}

	p.expect(token.Assign, "'='")
	value := p.parseExpr()

	return &ast.LetStmt{Name: name, Mut: mut, Type: typ, Value: value, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.advance().Span // 'return'

	if p.check(token.Newline) || p.check(token.Dedent) || p.atEnd() {
		return &ast.ReturnStmt{Span: start}
	}

	value := p.parseExpr()

	return &ast.ReturnStmt{Value: value, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.advance().Span // 'if'
	cond := p.parseExpr()
	then := p.parseBlock()

	var els []ast.Stmt

	p.skipNewlines()

	if p.check(token.KwElse) {
		p.advance()

		if p.check(token.KwIf) {
			els = []ast.Stmt{p.parseIfStmt()}
		} else {
			els = p.parseBlock()
		}
	}

	return &ast.IfStmt{Cond: cond, Then: then, Else: els, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.advance().Span // 'while'
	cond := p.parseExpr()
	body := p.parseBlock()

	return &ast.WhileStmt{Cond: cond, Body: body, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseForStmt() ast.Stmt {
	start := p.advance().Span // 'for'
	pat := p.parsePattern()
	p.expect(token.KwIn, "'in'")
	iter := p.parseExpr()
	body := p.parseBlock()

	return &ast.ForStmt{Pattern: pat, Iter: iter, Body: body, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseMatchStmt() ast.Stmt {
	start := p.advance().Span // 'match'
	scrutinee := p.parseExpr()

	p.skipNewlines()
	p.expect(token.Indent, "an indented arm list")
	p.skipNewlines()

	var arms []ast.MatchStmtArm

	for !p.check(token.Dedent) && !p.atEnd() {
		astart := p.peek().Span
		pat := p.parsePattern()

		var guard ast.Expr
		if p.match(token.KwIf) {
			guard = p.parseExpr()
		}

		p.expect(token.FatArrow, "'=>'")
		body := p.parseBlock()

		arms = append(arms, ast.MatchStmtArm{Pattern: pat, Guard: guard, Body: body, Span: astart.Join(p.previousEndSpan())})
		p.skipNewlines()
	}

	p.match(token.Dedent)

	return &ast.MatchStmt{Scrutinee: scrutinee, Arms: arms, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.peek().Span
	e := p.parseExpr()

	if p.match(token.Assign) {
		value := p.parseExpr()
		return &ast.AssignStmt{Target: e, Value: value, Span: start.Join(p.previousEndSpan())}
	}

	return &ast.ExprStmt{Expr: e, Span: start.Join(p.previousEndSpan())}
}
