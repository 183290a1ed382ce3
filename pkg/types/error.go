package types

import (
	"fmt"

	"github.com/lumen-lang/lumen/pkg/source"
)

// Kind enumerates type-checker error kinds (spec.md §7 "TypeError").
type Kind uint8

const (
	Mismatch Kind = iota
	UndefinedVar
	NotCallable
	ArgCount
	UnknownField
	UndefinedType
	MissingReturn
	ImmutableAssign
	MustUseIgnored
	NonExhaustiveMatch
)

func (k Kind) String() string {
	switch k {
	case Mismatch:
		return "Mismatch"
	case UndefinedVar:
		return "UndefinedVar"
	case NotCallable:
		return "NotCallable"
	case ArgCount:
		return "ArgCount"
	case UnknownField:
		return "UnknownField"
	case UndefinedType:
		return "UndefinedType"
	case MissingReturn:
		return "MissingReturn"
	case ImmutableAssign:
		return "ImmutableAssign"
	case MustUseIgnored:
		return "MustUseIgnored"
	case NonExhaustiveMatch:
		return "NonExhaustiveMatch"
	default:
		return "TypeError"
	}
}

// Error is a single type-checking diagnostic.
type Error struct {
	Kind     Kind
	Expected string
	Found    string
	Span     source.Span
	Message  string
}

func (e *Error) Error() string {
	if e.Expected != "" || e.Found != "" {
		return fmt.Sprintf("%s: %s (expected %s, found %s)", e.Kind, e.Message, e.Expected, e.Found)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
