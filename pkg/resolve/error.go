// Package resolve walks the AST binding every identifier use to its
// definition site, producing a symbol table and UndefinedVar/Duplicate
// diagnostics (spec.md §4.5). UndefinedType, UndefinedCell, UndefinedTool,
// MissingEffectGrant and UndeclaredEffect are declared kinds that the
// resolver does not report.
package resolve

import (
	"fmt"

	"github.com/lumen-lang/lumen/pkg/source"
)

// Kind enumerates resolver error kinds (spec.md §7 "ResolveError").
type Kind uint8

const (
	UndefinedType Kind = iota
	UndefinedCell
	UndefinedVar
	UndefinedTool
	Duplicate
	MissingEffectGrant
	UndeclaredEffect
)

func (k Kind) String() string {
	switch k {
	case UndefinedType:
		return "UndefinedType"
	case UndefinedCell:
		return "UndefinedCell"
	case UndefinedVar:
		return "UndefinedVar"
	case UndefinedTool:
		return "UndefinedTool"
	case Duplicate:
		return "Duplicate"
	case MissingEffectGrant:
		return "MissingEffectGrant"
	case UndeclaredEffect:
		return "UndeclaredEffect"
	default:
		return "ResolveError"
	}
}

// Error is a single name-resolution diagnostic.
type Error struct {
	Kind    Kind
	Name    string
	Span    source.Span
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%q)", e.Kind, e.Message, e.Name)
}
