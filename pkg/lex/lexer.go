// Package lex turns Lumen source text into a token stream with spans,
// synthesizing Indent/Dedent/Newline tokens from significant indentation.
//
// The lexer is a single hand-rolled scanner (grounded on the manual
// index-advancing style of go-corset's pkg/asm/assembler/lexer.go) rather
// than the corpus's combinator-rule style, because indentation tracking and
// string-escape decoding both need mutable scanner state that a pure
// character-matching rule cannot carry.
package lex

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lumen-lang/lumen/pkg/source"
	"github.com/lumen-lang/lumen/pkg/token"
	"go.uber.org/multierr"
)

const tabWidth = 8

// Lex tokenizes code, a raw code string, into a token stream. startLine and
// startOffset stitch the resulting spans back to a literate source's
// original position (1 and 0 for a raw .lm file; lines are 1-based). Lex accumulates as
// many errors as it can recover from rather than stopping at the first.
func Lex(code string, startLine, startOffset int) ([]token.Token, error) {
	l := &lexer{
		runes:       []rune(code),
		line:        startLine,
		baseOffset:  startOffset,
		indentStack: []int{0},
		atLineStart: true,
	}

	l.run()

	if len(l.errs) == 0 {
		return l.tokens, nil
	}

	return l.tokens, multierr.Combine(l.errs...)
}

type lexer struct {
	runes       []rune
	pos         int
	line        int
	baseOffset  int
	indentStack []int
	atLineStart bool
	parenDepth  int
	tokens      []token.Token
	errs        []error
}

func (l *lexer) run() {
	for l.pos < len(l.runes) {
		if l.atLineStart && l.parenDepth == 0 {
			l.handleIndent()

			if l.pos >= len(l.runes) {
				break
			}
		}

		l.atLineStart = false
		c := l.peek()

		switch {
		case c == '\n':
			l.advance()
			l.line++

			if l.parenDepth == 0 {
				l.emit(token.Newline, l.pos-1, l.pos, "\n", nil)
			}

			l.atLineStart = true
		case c == ' ' || c == '\t' || c == '\r':
			l.advance()
		case c == '/' && l.peekAt(1) == '/':
			l.skipLineComment()
		case isDigit(c):
			l.lexNumber()
		case c == '"':
			l.lexString(false)
		case c == 'r' && l.peekAt(1) == '"':
			l.advance()
			l.lexString(true)
		case c == 'b' && l.peekAt(1) == '"':
			l.advance()
			l.lexBytes()
		case isIdentStart(c):
			l.lexIdent()
		case c == '@':
			l.lexDirective()
		case c == '(' || c == '[' || c == '{':
			l.parenDepth++
			l.lexOperator()
		case c == ')' || c == ']' || c == '}':
			if l.parenDepth > 0 {
				l.parenDepth--
			}

			l.lexOperator()
		default:
			if !l.lexOperator() {
				start := l.pos
				l.advance()
				l.errorf(UnexpectedChar, start, l.pos, fmt.Sprintf("unexpected character %q", c))
			}
		}
	}

	// Closing newline + dedents to balance the indent stack.
	if len(l.tokens) > 0 && l.tokens[len(l.tokens)-1].Kind != token.Newline {
		l.emit(token.Newline, l.pos, l.pos, "", nil)
	}

	for len(l.indentStack) > 1 {
		l.indentStack = l.indentStack[:len(l.indentStack)-1]
		l.emit(token.Dedent, l.pos, l.pos, "", nil)
	}

	l.emit(token.Eof, l.pos, l.pos, "", nil)
}

// handleIndent measures the indentation of the current line and emits
// Indent/Dedent tokens as needed, comparing against the indent stack. Blank
// lines and comment-only lines do not affect indentation.
func (l *lexer) handleIndent() {
	start := l.pos
	depth := 0
	prefix := strings.Builder{}

	for l.pos < len(l.runes) {
		c := l.runes[l.pos]
		if c == ' ' {
			depth++
			prefix.WriteRune(c)
			l.pos++
		} else if c == '\t' {
			depth += tabWidth
			prefix.WriteRune(c)
			l.pos++
		} else {
			break
		}
	}

	// Blank line or comment-only line: skip without affecting the stack.
	if l.pos >= len(l.runes) || l.runes[l.pos] == '\n' ||
		(l.runes[l.pos] == '/' && l.pos+1 < len(l.runes) && l.runes[l.pos+1] == '/') {
		l.atLineStart = false
		return
	}

	top := l.indentStack[len(l.indentStack)-1]

	switch {
	case depth > top:
		l.indentStack = append(l.indentStack, depth)
		l.emit(token.Indent, start, l.pos, prefix.String(), nil)
	case depth < top:
		for len(l.indentStack) > 1 && l.indentStack[len(l.indentStack)-1] > depth {
			l.indentStack = l.indentStack[:len(l.indentStack)-1]
			l.emit(token.Dedent, start, l.pos, "", nil)
		}

		if l.indentStack[len(l.indentStack)-1] != depth {
			l.errorf(InconsistentIndent, start, l.pos, "indentation does not match any enclosing level")
			l.indentStack = append(l.indentStack, depth)
		}
	}

	l.atLineStart = false
}

func (l *lexer) skipLineComment() {
	for l.pos < len(l.runes) && l.runes[l.pos] != '\n' {
		l.pos++
	}
}

func (l *lexer) lexIdent() {
	start := l.pos

	for l.pos < len(l.runes) && isIdentPart(l.runes[l.pos]) {
		l.pos++
	}

	text := string(l.runes[start:l.pos])

	if kw, ok := token.Keywords[text]; ok {
		switch kw {
		case token.KwTrue:
			l.emit(token.BoolLit, start, l.pos, text, true)
		case token.KwFalse:
			l.emit(token.BoolLit, start, l.pos, text, false)
		case token.KwNull:
			l.emit(token.NullLit, start, l.pos, text, nil)
		default:
			l.emit(kw, start, l.pos, text, nil)
		}

		return
	}

	l.emit(token.Ident, start, l.pos, text, text)
}

func (l *lexer) lexDirective() {
	start := l.pos
	l.pos++ // consume '@'

	nameStart := l.pos
	for l.pos < len(l.runes) && isIdentPart(l.runes[l.pos]) {
		l.pos++
	}

	name := string(l.runes[nameStart:l.pos])
	l.emit(token.Directive, start, l.pos, "@"+name, name)
}

func (l *lexer) lexNumber() {
	start := l.pos

	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.lexRadixInt(start, 2, isHexDigit)
		return
	}

	if l.peek() == '0' && (l.peekAt(1) == 'o' || l.peekAt(1) == 'O') {
		l.lexRadixInt(start, 2, isOctalDigit)
		return
	}

	if l.peek() == '0' && (l.peekAt(1) == 'b' || l.peekAt(1) == 'B') {
		l.lexRadixInt(start, 2, isBinaryDigit)
		return
	}

	for l.pos < len(l.runes) && (isDigit(l.runes[l.pos]) || l.runes[l.pos] == '_') {
		l.pos++
	}

	isFloat := false

	if l.pos < len(l.runes) && l.runes[l.pos] == '.' && l.pos+1 < len(l.runes) && isDigit(l.runes[l.pos+1]) {
		isFloat = true
		l.pos++

		for l.pos < len(l.runes) && (isDigit(l.runes[l.pos]) || l.runes[l.pos] == '_') {
			l.pos++
		}
	}

	if l.pos < len(l.runes) && (l.runes[l.pos] == 'e' || l.runes[l.pos] == 'E') {
		save := l.pos
		l.pos++

		if l.pos < len(l.runes) && (l.runes[l.pos] == '+' || l.runes[l.pos] == '-') {
			l.pos++
		}

		if l.pos < len(l.runes) && isDigit(l.runes[l.pos]) {
			isFloat = true

			for l.pos < len(l.runes) && isDigit(l.runes[l.pos]) {
				l.pos++
			}
		} else {
			l.pos = save
		}
	}

	text := strings.ReplaceAll(string(l.runes[start:l.pos]), "_", "")

	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			l.errorf(InvalidNumber, start, l.pos, "invalid float literal")
			return
		}

		l.emit(token.FloatLit, start, l.pos, text, f)

		return
	}

	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		l.errorf(InvalidNumber, start, l.pos, "invalid integer literal")
		return
	}

	// A bare digit run has no sign, so a magnitude above i64::MAX can only
	// ever be valid as the operand of an immediately preceding unary minus
	// folding to exactly i64::MIN. Keep the token's payload as the honest
	// unsigned magnitude here rather than silently wrapping it into a
	// negative int64; the parser decides whether that magnitude is
	// acceptable once it knows what follows it.
	if n > math.MaxInt64 {
		l.emit(token.IntLit, start, l.pos, text, n)
		return
	}

	l.emit(token.IntLit, start, l.pos, text, int64(n))
}

func (l *lexer) lexRadixInt(start, skip int, valid func(rune) bool) {
	prefix := string(l.runes[start : start+skip])
	l.pos += skip
	digitsStart := l.pos

	for l.pos < len(l.runes) && (valid(l.runes[l.pos]) || l.runes[l.pos] == '_') {
		l.pos++
	}

	digits := strings.ReplaceAll(string(l.runes[digitsStart:l.pos]), "_", "")
	if digits == "" {
		l.errorf(InvalidNumber, start, l.pos, "missing digits after "+prefix)
		return
	}

	base := 16
	switch strings.ToLower(prefix) {
	case "0o":
		base = 8
	case "0b":
		base = 2
	}

	n, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		l.errorf(InvalidNumber, start, l.pos, "invalid "+prefix+" literal")
		return
	}

	l.emit(token.IntLit, start, l.pos, string(l.runes[start:l.pos]), int64(n))
}

// lexString lexes a double-quoted string, possibly raw. Interpolated strings
// (containing ${...}) are lexed into an InterpStringLit token carrying the
// ordered segments; otherwise a plain StringLit is emitted.
func (l *lexer) lexString(raw bool) {
	start := l.pos
	l.pos++ // opening quote

	var (
		cur      strings.Builder
		segments []token.InterpSegment
		interp   bool
	)

	for {
		if l.pos >= len(l.runes) {
			l.errorf(UnterminatedString, start, l.pos, "unterminated string literal")
			l.emit(token.StringLit, start, l.pos, string(l.runes[start:l.pos]), cur.String())

			return
		}

		c := l.runes[l.pos]

		if c == '"' {
			l.pos++
			break
		}

		if !raw && c == '\\' {
			l.pos++
			l.decodeEscape(&cur, start)

			continue
		}

		if !raw && c == '$' && l.peekAt(1) == '{' {
			interp = true
			segments = append(segments, token.InterpSegment{Literal: cur.String()})
			cur.Reset()
			l.pos += 2
			exprStart := l.pos
			depth := 1

			for l.pos < len(l.runes) && depth > 0 {
				switch l.runes[l.pos] {
				case '{':
					depth++
				case '}':
					depth--

					if depth == 0 {
						continue
					}
				}

				l.pos++
			}

			segments = append(segments, token.InterpSegment{ExprSource: string(l.runes[exprStart:l.pos]), IsExpr: true})

			if l.pos < len(l.runes) {
				l.pos++ // closing '}'
			}

			continue
		}

		if c == '\n' {
			l.errorf(UnterminatedString, start, l.pos, "unterminated string literal")
			l.emit(token.StringLit, start, l.pos, string(l.runes[start:l.pos]), cur.String())

			return
		}

		cur.WriteRune(c)
		l.pos++
	}

	text := string(l.runes[start:l.pos])

	if interp {
		segments = append(segments, token.InterpSegment{Literal: cur.String()})
		l.emit(token.InterpStringLit, start, l.pos, text, segments)

		return
	}

	l.emit(token.StringLit, start, l.pos, text, cur.String())
}

func (l *lexer) decodeEscape(cur *strings.Builder, litStart int) {
	if l.pos >= len(l.runes) {
		l.errorf(UnterminatedString, litStart, l.pos, "unterminated escape sequence")
		return
	}

	c := l.runes[l.pos]
	l.pos++

	switch c {
	case 'n':
		cur.WriteByte('\n')
	case 't':
		cur.WriteByte('\t')
	case 'r':
		cur.WriteByte('\r')
	case '\\':
		cur.WriteByte('\\')
	case '"':
		cur.WriteByte('"')
	case 'x':
		if l.pos+2 > len(l.runes) {
			l.errorf(InvalidUnicodeEscape, litStart, l.pos, "truncated \\xNN escape")
			return
		}

		hex := string(l.runes[l.pos : l.pos+2])
		l.pos += 2

		n, err := strconv.ParseUint(hex, 16, 8)
		if err != nil {
			l.errorf(InvalidUnicodeEscape, litStart, l.pos, "invalid \\xNN escape")
			return
		}

		cur.WriteByte(byte(n))
	case 'u':
		if l.pos >= len(l.runes) || l.runes[l.pos] != '{' {
			l.errorf(InvalidUnicodeEscape, litStart, l.pos, "expected '{' after \\u")
			return
		}

		l.pos++
		digStart := l.pos

		for l.pos < len(l.runes) && l.runes[l.pos] != '}' {
			l.pos++
		}

		if l.pos >= len(l.runes) {
			l.errorf(InvalidUnicodeEscape, litStart, l.pos, "unterminated \\u{...} escape")
			return
		}

		hex := string(l.runes[digStart:l.pos])
		l.pos++ // consume '}'

		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			l.errorf(InvalidUnicodeEscape, litStart, l.pos, "invalid \\u{...} escape")
			return
		}

		cur.WriteRune(rune(n))
	default:
		l.errorf(InvalidUnicodeEscape, litStart, l.pos, fmt.Sprintf("unknown escape sequence \\%c", c))
	}
}

func (l *lexer) lexBytes() {
	start := l.pos
	l.pos++ // opening quote

	var bytes []byte

	for {
		if l.pos >= len(l.runes) {
			l.errorf(UnterminatedString, start, l.pos, "unterminated bytes literal")
			break
		}

		c := l.runes[l.pos]

		if c == '"' {
			l.pos++
			break
		}

		if c > 127 {
			l.errorf(InvalidBytesLiteral, start, l.pos, "non-ASCII byte in bytes literal")
			l.pos++

			continue
		}

		if c == '\\' {
			l.pos++

			var sb strings.Builder
			l.decodeEscape(&sb, start)
			bytes = append(bytes, []byte(sb.String())...)

			continue
		}

		bytes = append(bytes, byte(c))
		l.pos++
	}

	l.emit(token.BytesLit, start, l.pos, string(l.runes[start:l.pos]), bytes)
}

// operators lists multi-character operators in maximal-munch order: longest
// first, so "<=>" is tried before "<=" before "<".
var operators = []struct {
	text string
	kind token.Kind
}{
	{"<=>", token.Spaceship},
	{"..=", token.DotDotEq},
	{"**", token.StarStar},
	{"//", token.SlashSlash},
	{"==", token.EqEq},
	{"!=", token.NotEq},
	{"<=", token.LtEq},
	{">=", token.GtEq},
	{"<<", token.Shl},
	{">>", token.Shr},
	{"->", token.Arrow},
	{"=>", token.FatArrow},
	{"|>", token.PipeOp},
	{"??", token.QQ},
	{"?.", token.QDot},
	{"?[", token.QBracket},
	{"::", token.ColonColon},
	{"..", token.DotDot},
	{"+", token.Plus},
	{"-", token.Minus},
	{"*", token.Star},
	{"/", token.Slash},
	{"%", token.Percent},
	{"&", token.Amp},
	{"|", token.Pipe},
	{"^", token.Caret},
	{"~", token.Tilde},
	{"<", token.Lt},
	{">", token.Gt},
	{"=", token.Assign},
	{"?", token.Question},
	{".", token.Dot},
	{",", token.Comma},
	{":", token.Colon},
	{";", token.Semicolon},
	{"(", token.LParen},
	{")", token.RParen},
	{"[", token.LBracket},
	{"]", token.RBracket},
	{"{", token.LBrace},
	{"}", token.RBrace},
}

func (l *lexer) lexOperator() bool {
	remaining := l.runes[l.pos:]

	for _, op := range operators {
		n := len(op.text)
		if len(remaining) >= n && string(remaining[:n]) == op.text {
			start := l.pos
			l.pos += n
			l.emit(op.kind, start, l.pos, op.text, nil)

			return true
		}
	}

	return false
}

func (l *lexer) peek() rune {
	if l.pos >= len(l.runes) {
		return 0
	}

	return l.runes[l.pos]
}

func (l *lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.runes) {
		return 0
	}

	return l.runes[l.pos+offset]
}

func (l *lexer) advance() {
	l.pos++
}

func (l *lexer) emit(kind token.Kind, start, end int, text string, payload any) {
	span := source.NewSpan(l.baseOffset+start, l.baseOffset+end)
	l.tokens = append(l.tokens, token.Token{Kind: kind, Span: span, Text: text, Payload: payload})
}

func (l *lexer) errorf(kind Kind, start, end int, msg string) {
	ctxEnd := min(end+8, len(l.runes))
	ctxStart := max(start-8, 0)
	l.errs = append(l.errs, &Error{
		Kind:    kind,
		Line:    l.line,
		Span:    source.NewSpan(l.baseOffset+start, l.baseOffset+end),
		Context: string(l.runes[ctxStart:ctxEnd]),
		Message: msg,
	})
}

func isDigit(c rune) bool      { return c >= '0' && c <= '9' }
func isHexDigit(c rune) bool   { return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }
func isOctalDigit(c rune) bool { return c >= '0' && c <= '7' }
func isBinaryDigit(c rune) bool { return c == '0' || c == '1' }

func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || isDigit(c)
}
