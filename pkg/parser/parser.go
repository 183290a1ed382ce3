package parser

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/diag"
	"github.com/lumen-lang/lumen/pkg/source"
	"github.com/lumen-lang/lumen/pkg/token"
	"go.uber.org/multierr"
)

// Parser holds parsing state over a fixed token slice, grounded on the
// teacher's hand-rolled recursive-descent shape
// (Parser{srcfile, tokens, srcmap, index}).
type Parser struct {
	tokens []token.Token
	pos    int
	errs   []error
	file   *source.File // nil when parsing a standalone token stream (e.g. from tests)
}

// New constructs a Parser over tokens. file, if non-nil, is used to anchor
// diag.Diagnostics produced by ParseProgramWithRecovery.
func New(tokens []token.Token, file *source.File) *Parser {
	return &Parser{tokens: tokens, file: file}
}

// Parse parses a complete program, returning every accumulated parse error
// combined via multierr.
func Parse(tokens []token.Token, file *source.File) (*ast.Program, error) {
	p := New(tokens, file)
	prog := p.parseProgram()

	if len(p.errs) == 0 {
		return prog, nil
	}

	return prog, multierr.Combine(p.errs...)
}

// ParseProgramWithRecovery parses as far as possible, returning both the
// (possibly partial) program and a list of LSP-style diagnostics — for
// incremental/editor use (spec.md §4.3 "parse_program_with_recovery").
func ParseProgramWithRecovery(tokens []token.Token, file *source.File) (*ast.Program, []diag.Diagnostic) {
	p := New(tokens, file)
	prog := p.parseProgram()

	var diags []diag.Diagnostic

	for _, err := range p.errs {
		pe, ok := err.(*Error)
		if !ok {
			continue
		}

		d := diag.Diagnostic{Severity: diag.Error, Message: pe.Error()}

		if file != nil {
			d.Range = diag.FromSpan(file, pe.Span)
		}

		diags = append(diags, d)
	}

	return prog, diags
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	p.skipNewlines()

	for !p.atEnd() {
		if p.check(token.Directive) {
			tok := p.advance()
			prog.Directives = append(prog.Directives, ast.Directive{
				Name: tok.Payload.(string),
				Span: tok.Span,
			})
			p.skipNewlines()

			continue
		}

		item := p.parseItem()
		if item != nil {
			prog.Items = append(prog.Items, item)
		}

		p.skipNewlines()
	}

	if len(p.tokens) > 0 {
		prog.Span = source.NewSpan(p.tokens[0].Span.Start(), p.tokens[len(p.tokens)-1].Span.End())
	}

	return prog
}

// --- cursor helpers ---

func (p *Parser) atEnd() bool {
	return p.peek().Kind == token.Eof
}

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.Eof}
	}

	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) token.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return token.Token{Kind: token.Eof}
	}

	return p.tokens[idx]
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}

	return tok
}

func (p *Parser) check(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}

	return false
}

func (p *Parser) expect(k token.Kind, what string) token.Token {
	if p.check(k) {
		return p.advance()
	}

	p.errorHere(what)

	return p.peek()
}

func (p *Parser) errorHere(expected string) {
	tok := p.peek()
	kind := Unexpected

	if tok.Kind == token.Eof {
		kind = UnexpectedEof
	}

	p.errs = append(p.errs, &Error{
		Kind:     kind,
		Found:    tok.Kind,
		Expected: expected,
		Line:     1,
		Span:     tok.Span,
	})
}

func (p *Parser) skipNewlines() {
	for p.check(token.Newline) {
		p.advance()
	}
}

// synchronize advances past tokens until it finds a plausible statement/item
// boundary, used to recover from a parse error and keep accumulating
// diagnostics rather than aborting the whole parse.
func (p *Parser) synchronize() {
	for !p.atEnd() {
		if p.check(token.Newline) || p.check(token.Dedent) {
			p.advance()
			return
		}

		p.advance()
	}
}
