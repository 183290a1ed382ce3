package lower

import "fmt"

// Kind enumerates lowering error kinds (spec.md §7 "LowerError").
type Kind uint8

const (
	// ErrRegisterBudget is raised when a cell's register high-water mark
	// exceeds even the wide (64-bit) encoding's addressable range.
	ErrRegisterBudget Kind = iota
	// ErrInternal wraps a panic recovered by Safe, so lowering is total
	// (spec.md §4.8 "lower_safe... the toolchain never crashes on
	// malformed input").
	ErrInternal
)

func (k Kind) String() string {
	if k == ErrRegisterBudget {
		return "RegisterBudgetExceeded"
	}

	return "InternalError"
}

// Error is a single lowering failure.
type Error struct {
	Kind    Kind
	Cell    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s in cell %q: %s", e.Kind, e.Cell, e.Message)
}
