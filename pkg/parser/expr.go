package parser

import (
	"math"

	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lex"
	"github.com/lumen-lang/lumen/pkg/token"
)

// i64MinMagnitude is the unsigned magnitude of i64::MIN (i64::MAX + 1). The
// lexer hands it back as a raw uint64 payload, since a bare digit run has no
// sign and that magnitude doesn't fit a positive int64.
const i64MinMagnitude = uint64(math.MaxInt64) + 1

// parseExpr is the entry point for expression parsing, following spec.md
// §4.3's 13-level precedence table (low to high): or, and, not, comparisons,
// in, bitwise, shift, additive, multiplicative, power, unary, postfix,
// primary. The pipeline operator and null-coalescing operator sit below
// `or`, the lowest table level, since both are whole-expression combinators
// rather than part of the listed arithmetic/logical ladder.
func (p *Parser) parseExpr() ast.Expr {
	return p.parsePipeline()
}

func (p *Parser) parsePipeline() ast.Expr {
	left := p.parseNullCoalesce()

	for p.check(token.PipeOp) {
		opSpan := p.advance().Span
		rhs := p.parseNullCoalesce()

		call, ok := rhs.(*ast.CallExpr)
		if !ok {
			call = &ast.CallExpr{Callee: rhs, Span: rhs.SpanOf()}
		}

		desugared := &ast.CallExpr{
			Callee: call.Callee,
			Args:   append([]ast.Expr{left}, call.Args...),
			Span:   left.SpanOf().Join(opSpan).Join(rhs.SpanOf()),
		}

		left = &ast.PipelineExpr{Left: left, Call: call, Desugared: desugared, Span: desugared.Span}
	}

	return left
}

func (p *Parser) parseNullCoalesce() ast.Expr {
	left := p.parseOr()

	for p.check(token.QQ) {
		p.advance()
		right := p.parseOr()
		left = &ast.NullCoalesceExpr{Left: left, Right: right, Span: left.SpanOf().Join(right.SpanOf())}
	}

	return left
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()

	for p.check(token.KwOr) {
		p.advance()
		right := p.parseAnd()
		left = &ast.BinaryExpr{Op: ast.OpOr, Left: left, Right: right, Span: left.SpanOf().Join(right.SpanOf())}
	}

	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseNot()

	for p.check(token.KwAnd) {
		p.advance()
		right := p.parseNot()
		left = &ast.BinaryExpr{Op: ast.OpAnd, Left: left, Right: right, Span: left.SpanOf().Join(right.SpanOf())}
	}

	return left
}

func (p *Parser) parseNot() ast.Expr {
	if p.check(token.KwNot) {
		start := p.advance().Span
		operand := p.parseNot()

		return &ast.UnaryExpr{Op: ast.OpNot, Operand: operand, Span: start.Join(operand.SpanOf())}
	}

	return p.parseComparison()
}

var comparisonOps = map[token.Kind]ast.BinOp{
	token.EqEq: ast.OpEq, token.NotEq: ast.OpNotEq, token.Lt: ast.OpLt, token.LtEq: ast.OpLtEq,
	token.Gt: ast.OpGt, token.GtEq: ast.OpGtEq, token.Spaceship: ast.OpSpaceship,
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseInLevel()

	for {
		op, ok := comparisonOps[p.peek().Kind]
		if !ok {
			break
		}

		p.advance()
		right := p.parseInLevel()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Span: left.SpanOf().Join(right.SpanOf())}
	}

	return left
}

func (p *Parser) parseInLevel() ast.Expr {
	left := p.parseBitwise()

	for p.check(token.KwIn) {
		p.advance()
		right := p.parseBitwise()
		left = &ast.BinaryExpr{Op: ast.OpIn, Left: left, Right: right, Span: left.SpanOf().Join(right.SpanOf())}
	}

	return left
}

var bitwiseOps = map[token.Kind]ast.BinOp{
	token.Pipe: ast.OpBitOr, token.Caret: ast.OpBitXor, token.Amp: ast.OpBitAnd,
}

func (p *Parser) parseBitwise() ast.Expr {
	left := p.parseShift()

	for {
		op, ok := bitwiseOps[p.peek().Kind]
		if !ok {
			break
		}

		p.advance()
		right := p.parseShift()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Span: left.SpanOf().Join(right.SpanOf())}
	}

	return left
}

func (p *Parser) parseShift() ast.Expr {
	left := p.parseAdditive()

	for p.check(token.Shl) || p.check(token.Shr) {
		op := ast.OpShl
		if p.peek().Kind == token.Shr {
			op = ast.OpShr
		}

		p.advance()
		right := p.parseAdditive()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Span: left.SpanOf().Join(right.SpanOf())}
	}

	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()

	for p.check(token.Plus) || p.check(token.Minus) {
		op := ast.OpAdd
		if p.peek().Kind == token.Minus {
			op = ast.OpSub
		}

		p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Span: left.SpanOf().Join(right.SpanOf())}
	}

	return left
}

var mulOps = map[token.Kind]ast.BinOp{
	token.Star: ast.OpMul, token.Slash: ast.OpDiv, token.SlashSlash: ast.OpFloorDiv, token.Percent: ast.OpMod,
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parsePow()

	for {
		op, ok := mulOps[p.peek().Kind]
		if !ok {
			break
		}

		p.advance()
		right := p.parsePow()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Span: left.SpanOf().Join(right.SpanOf())}
	}

	return left
}

func (p *Parser) parsePow() ast.Expr {
	left := p.parseUnary()

	if p.check(token.StarStar) {
		p.advance()
		right := p.parsePow() // right-associative

		return &ast.BinaryExpr{Op: ast.OpPow, Left: left, Right: right, Span: left.SpanOf().Join(right.SpanOf())}
	}

	return left
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.peek().Kind {
	case token.Minus:
		start := p.advance().Span

		// -9223372036854775808 (i64::MIN) folds from this single digit run,
		// not from negating an overflowed positive IntLit: i64::MAX + 1
		// doesn't fit in an int64, so it can only be recovered by literal
		// text immediately following a unary minus.
		if p.check(token.IntLit) {
			if mag, ok := p.peek().Payload.(uint64); ok && mag == i64MinMagnitude {
				tok := p.advance()

				return &ast.IntLit{Value: math.MinInt64, Span: start.Join(tok.Span)}
			}
		}

		operand := p.parseUnary()

		if lit, ok := operand.(*ast.IntLit); ok {
			return &ast.IntLit{Value: -lit.Value, Span: start.Join(operand.SpanOf())}
		}

		return &ast.UnaryExpr{Op: ast.OpNeg, Operand: operand, Span: start.Join(operand.SpanOf())}
	case token.Tilde:
		start := p.advance().Span
		operand := p.parseUnary()

		return &ast.UnaryExpr{Op: ast.OpBitNot, Operand: operand, Span: start.Join(operand.SpanOf())}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expr {
	e := p.parsePrimary()

	for {
		switch p.peek().Kind {
		case token.LParen:
			e = p.parseCallTail(e)
		case token.LBracket:
			start := p.advance().Span
			idx := p.parseExpr()
			p.expect(token.RBracket, "']'")
			e = &ast.IndexExpr{Receiver: e, Index: idx, Span: e.SpanOf().Join(start).Join(p.previousEndSpan())}
		case token.QBracket:
			start := p.advance().Span
			idx := p.parseExpr()
			p.expect(token.RBracket, "']'")
			e = &ast.IndexExpr{Receiver: e, Index: idx, NullSafe: true, Span: e.SpanOf().Join(start).Join(p.previousEndSpan())}
		case token.Dot:
			p.advance()
			name := p.parseIdentName()
			e = &ast.FieldExpr{Receiver: e, Field: name, Span: e.SpanOf().Join(p.previousEndSpan())}
		case token.QDot:
			p.advance()
			name := p.parseIdentName()
			e = &ast.FieldExpr{Receiver: e, Field: name, NullSafe: true, Span: e.SpanOf().Join(p.previousEndSpan())}
		case token.Question:
			qspan := p.advance().Span
			e = &ast.TryPropagateExpr{Operand: e, Span: e.SpanOf().Join(qspan)}
		case token.LBrace:
			// trailing-lambda call sugar: f(x) { ... } => f(x, |...| {...})
			if call, ok := e.(*ast.CallExpr); ok {
				lam := p.parseTrailingLambdaBody()
				call.Args = append(call.Args, lam)
				call.Span = call.Span.Join(lam.SpanOf())
				e = call
				continue
			}

			return e
		default:
			return e
		}
	}
}

func (p *Parser) parseCallTail(callee ast.Expr) ast.Expr {
	start := p.advance().Span // '('

	var args []ast.Expr
	for !p.check(token.RParen) && !p.atEnd() {
		args = append(args, p.parseExpr())
		if !p.match(token.Comma) {
			break
		}
	}

	p.expect(token.RParen, "')'")

	return &ast.CallExpr{Callee: callee, Args: args, Span: callee.SpanOf().Join(start).Join(p.previousEndSpan())}
}

// parseTrailingLambdaBody parses `{ stmt* }` used as a zero-argument
// trailing-lambda block, represented as a zero-arg LambdaExpr. Since
// LambdaExpr.Body is a single Expr and a BlockExpr is not part of the
// expression grammar, the block is reduced by stmtsToExpr: only its final
// expression statement becomes the body, and the statements before it are
// parsed but not kept in the AST.
func (p *Parser) parseTrailingLambdaBody() ast.Expr {
	start := p.advance().Span // '{'

	var stmts []ast.Stmt
	for !p.check(token.RBrace) && !p.atEnd() {
		p.skipNewlines()

		if p.check(token.RBrace) {
			break
		}

		stmts = append(stmts, p.parseStmt())
		p.skipNewlines()
	}

	p.expect(token.RBrace, "'}'")

	return &ast.LambdaExpr{Body: stmtsToExpr(stmts), Span: start.Join(p.previousEndSpan())}
}

// stmtsToExpr adapts a statement list to a single tail Expr for LambdaExpr's
// Body field: the last ExprStmt's expression becomes the tail; an empty
// list or any other trailing statement yields a null literal. Every
// statement before the last is dropped.
func stmtsToExpr(stmts []ast.Stmt) ast.Expr {
	if len(stmts) == 0 {
		return &ast.NullLit{}
	}

	if last, ok := stmts[len(stmts)-1].(*ast.ExprStmt); ok {
		return last.Expr
	}

	return &ast.NullLit{Span: stmts[len(stmts)-1].SpanOf()}
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.IntLit:
		p.advance()

		v, ok := tok.Payload.(int64)
		if !ok {
			p.errs = append(p.errs, &Error{
				Kind:     InvalidNumber,
				Found:    tok.Kind,
				Expected: "integer literal out of range",
				Line:     1,
				Span:     tok.Span,
			})

			return &ast.IntLit{Value: 0, Span: tok.Span}
		}

		return &ast.IntLit{Value: v, Span: tok.Span}
	case token.FloatLit:
		p.advance()
		return &ast.FloatLit{Value: tok.Payload.(float64), Span: tok.Span}
	case token.StringLit:
		p.advance()
		return &ast.StringLit{Value: tok.Payload.(string), Span: tok.Span}
	case token.InterpStringLit:
		p.advance()
		return p.buildInterpString(tok)
	case token.BoolLit:
		p.advance()
		return &ast.BoolLit{Value: tok.Payload.(bool), Span: tok.Span}
	case token.NullLit:
		p.advance()
		return &ast.NullLit{Span: tok.Span}
	case token.BytesLit:
		p.advance()
		return &ast.BytesLit{Value: tok.Payload.([]byte), Span: tok.Span}
	case token.Ident:
		p.advance()
		return p.parseIdentOrRecordLit(tok)
	case token.LParen:
		return p.parseParenOrTuple()
	case token.LBracket:
		return p.parseListOrComprehension()
	case token.LBrace:
		return p.parseMapOrSetLit()
	case token.KwMatch:
		return p.parseMatchExpr()
	case token.KwIf:
		return p.parseIfExpr()
	case token.Pipe:
		return p.parseLambda()
	case token.KwTry:
		return p.parseTryElse()
	default:
		p.errorHere("an expression")
		tok := p.advance()

		return &ast.NullLit{Span: tok.Span}
	}
}

func (p *Parser) buildInterpString(tok token.Token) ast.Expr {
	segs := tok.Payload.([]token.InterpSegment)

	var parts []ast.InterpStringPart

	for _, seg := range segs {
		if seg.IsExpr {
			parts = append(parts, ast.InterpStringPart{Expr: p.parseEmbeddedExpr(seg.ExprSource)})
		} else if seg.Literal != "" {
			parts = append(parts, ast.InterpStringPart{Literal: seg.Literal})
		}
	}

	return &ast.InterpStringLit{Parts: parts, Span: tok.Span}
}

// parseEmbeddedExpr re-lexes and parses a `${...}` interpolation segment's
// raw source as a standalone expression, folding any lexical errors into the
// enclosing parser's diagnostics.
func (p *Parser) parseEmbeddedExpr(src string) ast.Expr {
	toks, err := lex.Lex(src, 1, 0)
	if err != nil {
		p.errs = append(p.errs, err)
	}

	sub := New(toks, p.file)
	e := sub.parseExpr()
	p.errs = append(p.errs, sub.errs...)

	return e
}

func (p *Parser) parseIdentOrRecordLit(tok token.Token) ast.Expr {
	name, _ := tok.Payload.(string)

	if p.check(token.LBrace) && p.looksLikeRecordLit() {
		p.advance() // '{'

		var fields []ast.MapEntry

		for !p.check(token.RBrace) && !p.atEnd() {
			fname := p.parseIdentName()
			p.expect(token.Colon, "':'")
			value := p.parseExpr()
			fields = append(fields, ast.MapEntry{Key: &ast.Ident{Name: fname}, Value: value})

			if !p.match(token.Comma) {
				break
			}
		}

		p.expect(token.RBrace, "'}'")

		return &ast.RecordLit{Name: name, Fields: fields, Span: tok.Span.Join(p.previousEndSpan())}
	}

	return &ast.Ident{Name: name, Span: tok.Span}
}

// looksLikeRecordLit disambiguates `Name { field: value }` from a trailing
// lambda call's block by requiring an identifier immediately followed by a
// colon after the brace (a trailing-lambda block only follows a call's
// closing paren, never a bare identifier).
func (p *Parser) looksLikeRecordLit() bool {
	return p.peekAt(1).Kind == token.Ident && p.peekAt(2).Kind == token.Colon
}

func (p *Parser) parseParenOrTuple() ast.Expr {
	start := p.advance().Span // '('

	if p.match(token.RParen) {
		return &ast.TupleLit{Span: start.Join(p.previousEndSpan())}
	}

	first := p.parseExpr()

	if !p.check(token.Comma) {
		p.expect(token.RParen, "')'")
		return first
	}

	elems := []ast.Expr{first}

	for p.match(token.Comma) {
		if p.check(token.RParen) {
			break
		}

		elems = append(elems, p.parseExpr())
	}

	p.expect(token.RParen, "')'")

	return &ast.TupleLit{Elems: elems, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseListOrComprehension() ast.Expr {
	start := p.advance().Span // '['

	if p.match(token.RBracket) {
		return &ast.ListLit{Span: start.Join(p.previousEndSpan())}
	}

	first := p.parseExpr()

	if p.check(token.KwFor) {
		p.advance()
		pat := p.parsePattern()
		p.expect(token.KwIn, "'in'")
		iter := p.parseExpr()

		var cond ast.Expr
		if p.match(token.KwIf) {
			cond = p.parseExpr()
		}

		p.expect(token.RBracket, "']'")

		return &ast.Comprehension{
			Kind: ast.ComprehensionList, Result: first, Pattern: pat, Iter: iter, Cond: cond,
			Span: start.Join(p.previousEndSpan()),
		}
	}

	elems := []ast.Expr{first}

	for p.match(token.Comma) {
		if p.check(token.RBracket) {
			break
		}

		elems = append(elems, p.parseExpr())
	}

	p.expect(token.RBracket, "']'")

	return &ast.ListLit{Elems: elems, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseMapOrSetLit() ast.Expr {
	start := p.advance().Span // '{'

	if p.match(token.RBrace) {
		return &ast.MapLit{Span: start.Join(p.previousEndSpan())}
	}

	firstKey := p.parseExpr()

	if p.match(token.Colon) {
		firstVal := p.parseExpr()

		if p.check(token.KwFor) {
			p.advance()
			pat := p.parsePattern()
			p.expect(token.KwIn, "'in'")
			iter := p.parseExpr()

			var cond ast.Expr
			if p.match(token.KwIf) {
				cond = p.parseExpr()
			}

			p.expect(token.RBrace, "'}'")

			return &ast.Comprehension{
				Kind: ast.ComprehensionMap, Key: firstKey, Result: firstVal, Pattern: pat, Iter: iter, Cond: cond,
				Span: start.Join(p.previousEndSpan()),
			}
		}

		entries := []ast.MapEntry{{Key: firstKey, Value: firstVal}}

		for p.match(token.Comma) {
			if p.check(token.RBrace) {
				break
			}

			k := p.parseExpr()
			p.expect(token.Colon, "':'")
			v := p.parseExpr()
			entries = append(entries, ast.MapEntry{Key: k, Value: v})
		}

		p.expect(token.RBrace, "'}'")

		return &ast.MapLit{Entries: entries, Span: start.Join(p.previousEndSpan())}
	}

	if p.check(token.KwFor) {
		p.advance()
		pat := p.parsePattern()
		p.expect(token.KwIn, "'in'")
		iter := p.parseExpr()

		var cond ast.Expr
		if p.match(token.KwIf) {
			cond = p.parseExpr()
		}

		p.expect(token.RBrace, "'}'")

		return &ast.Comprehension{
			Kind: ast.ComprehensionSet, Result: firstKey, Pattern: pat, Iter: iter, Cond: cond,
			Span: start.Join(p.previousEndSpan()),
		}
	}

	elems := []ast.Expr{firstKey}

	for p.match(token.Comma) {
		if p.check(token.RBrace) {
			break
		}

		elems = append(elems, p.parseExpr())
	}

	p.expect(token.RBrace, "'}'")

	return &ast.SetLit{Elems: elems, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseMatchExpr() ast.Expr {
	start := p.advance().Span // 'match'
	scrutinee := p.parseExpr()

	p.skipNewlines()
	p.expect(token.Indent, "an indented arm list")
	p.skipNewlines()

	var arms []ast.MatchArm

	for !p.check(token.Dedent) && !p.atEnd() {
		astart := p.peek().Span
		pat := p.parsePattern()

		var guard ast.Expr
		if p.match(token.KwIf) {
			guard = p.parseExpr()
		}

		p.expect(token.FatArrow, "'=>'")
		body := p.parseExpr()

		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body, Span: astart.Join(p.previousEndSpan())})
		p.skipNewlines()
	}

	p.match(token.Dedent)

	return &ast.MatchExpr{Scrutinee: scrutinee, Arms: arms, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseIfExpr() ast.Expr {
	start := p.advance().Span // 'if'
	cond := p.parseExpr()
	p.expect(token.KwThen, "'then'")
	then := p.parseExpr()

	var els ast.Expr
	if p.match(token.KwElse) {
		els = p.parseExpr()
	}

	return &ast.IfExpr{Cond: cond, Then: then, Else: els, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseLambda() ast.Expr {
	start := p.advance().Span // '|'

	var params []ast.Param
	for !p.check(token.Pipe) && !p.atEnd() {
		pstart := p.peek().Span
		name := p.parseIdentName()

		var typ ast.TypeExpr
		if p.match(token.Colon) {
			typ = p.parseTypeExpr()
		}

		params = append(params, ast.Param{Name: name, Type: typ, Span: pstart.Join(p.previousEndSpan())})

		if !p.match(token.Comma) {
			break
		}
	}

	p.expect(token.Pipe, "'|'")
	body := p.parseExpr()

	return &ast.LambdaExpr{Params: params, Body: body, Span: start.Join(p.previousEndSpan())}
}

func (p *Parser) parseTryElse() ast.Expr {
	start := p.advance().Span // 'try'
	operand := p.parseExpr()

	p.expect(token.KwElse, "'else'")
	p.expect(token.Pipe, "'|'")
	errName := p.parseIdentName()
	p.expect(token.Pipe, "'|'")
	fallback := p.parseExpr()

	return &ast.TryElseExpr{Operand: operand, ErrName: errName, Fallback: fallback, Span: start.Join(p.previousEndSpan())}
}
