// Package parser implements a recursive-descent parser with precedence
// climbing for expressions, turning a token stream into an *ast.Program.
package parser

import (
	"fmt"

	"github.com/lumen-lang/lumen/pkg/source"
	"github.com/lumen-lang/lumen/pkg/token"
)

// Kind enumerates parse error kinds (spec.md §4.3 "Failures").
type Kind uint8

const (
	Unexpected Kind = iota
	UnexpectedEof
	InvalidNumber
)

func (k Kind) String() string {
	switch k {
	case UnexpectedEof:
		return "UnexpectedEof"
	case InvalidNumber:
		return "InvalidNumber"
	default:
		return "Unexpected"
	}
}

// Error is a single parse diagnostic.
type Error struct {
	Kind     Kind
	Found    token.Kind
	Expected string
	Line     int
	Span     source.Span
}

func (e *Error) Error() string {
	switch e.Kind {
	case UnexpectedEof:
		return fmt.Sprintf("unexpected end of input at line %d, expected %s", e.Line, e.Expected)
	case InvalidNumber:
		return fmt.Sprintf("%s at line %d", e.Expected, e.Line)
	default:
		return fmt.Sprintf("unexpected %s at line %d, expected %s", e.Found, e.Line, e.Expected)
	}
}
