package lex

import (
	"fmt"

	"github.com/lumen-lang/lumen/pkg/source"
)

// Kind enumerates the taxonomy of lexical errors from spec.md §7.
type Kind uint8

// Lexical error kinds.
const (
	UnexpectedChar Kind = iota
	UnterminatedString
	InconsistentIndent
	InvalidNumber
	InvalidBytesLiteral
	InvalidUnicodeEscape
)

func (k Kind) String() string {
	switch k {
	case UnexpectedChar:
		return "UnexpectedChar"
	case UnterminatedString:
		return "UnterminatedString"
	case InconsistentIndent:
		return "InconsistentIndent"
	case InvalidNumber:
		return "InvalidNumber"
	case InvalidBytesLiteral:
		return "InvalidBytesLiteral"
	case InvalidUnicodeEscape:
		return "InvalidUnicodeEscape"
	default:
		return "LexError"
	}
}

// Error is a single lexical diagnostic, carrying the line on which it arose
// (per spec.md §4.2) as well as the precise span and surrounding context.
type Error struct {
	Kind    Kind
	Line    int
	Span    source.Span
	Context string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s at line %d: %s (near %q)", e.Kind, e.Line, e.Message, e.Context)
}
