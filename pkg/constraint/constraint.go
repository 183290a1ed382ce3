// Package constraint validates record-field `where` clauses (spec.md §4.7):
// only boolean connectives, comparisons, arithmetic, and the whitelisted
// functions length/count/matches are permitted.
package constraint

import (
	"fmt"

	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/source"
	"go.uber.org/multierr"
)

// allowedFns is the whitelist of function calls permitted inside a `where`
// clause (spec.md §4.7).
var allowedFns = map[string]bool{
	"length":  true,
	"count":   true,
	"matches": true,
}

// Error is a single constraint-validation diagnostic (spec.md §7
// "ConstraintError::Invalid").
type Error struct {
	Span    source.Span
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid constraint expression: %s", e.Message)
}

// Validate checks every record field's `where` clause in prog, returning
// every violation combined into one error (nil when there are none).
func Validate(prog *ast.Program) error {
	errs := ValidatePartial(prog)
	if len(errs) == 0 {
		return nil
	}

	var err error
	for _, e := range errs {
		err = multierr.Append(err, e)
	}

	return err
}

// ValidatePartial validates every `where` clause, accumulating every
// violation rather than stopping at the first.
func ValidatePartial(prog *ast.Program) []*Error {
	var errs []*Error

	for _, item := range prog.Items {
		record, ok := item.(*ast.RecordDef)
		if !ok {
			continue
		}

		for _, field := range record.Fields {
			if field.Where == nil {
				continue
			}

			errs = append(errs, validateExpr(field.Where)...)
		}
	}

	return errs
}

// validateExpr recursively validates a `where` clause expression tree,
// rejecting any construct outside spec.md §4.7's whitelist.
func validateExpr(e ast.Expr) []*Error {
	switch ex := e.(type) {
	case *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.BoolLit, *ast.NullLit, *ast.Ident:
		return nil
	case *ast.UnaryExpr:
		if ex.Op != ast.OpNot && ex.Op != ast.OpNeg {
			return []*Error{{Span: ex.Span, Message: "unsupported unary operator in where clause"}}
		}
		return validateExpr(ex.Operand)
	case *ast.BinaryExpr:
		if !isSupportedOp(ex.Op) {
			return []*Error{{Span: ex.Span, Message: fmt.Sprintf("unsupported operator %v in where clause", ex.Op)}}
		}
		errs := validateExpr(ex.Left)
		errs = append(errs, validateExpr(ex.Right)...)
		return errs
	case *ast.CallExpr:
		return validateCall(ex)
	default:
		return []*Error{{Span: e.SpanOf(), Message: "unsupported expression kind in where clause"}}
	}
}

func isSupportedOp(op ast.BinOp) bool {
	switch op {
	case ast.OpAnd, ast.OpOr,
		ast.OpEq, ast.OpNotEq, ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq,
		ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpFloorDiv, ast.OpMod, ast.OpPow:
		return true
	default:
		return false
	}
}

func validateCall(ex *ast.CallExpr) []*Error {
	callee, ok := ex.Callee.(*ast.Ident)
	if !ok || !allowedFns[callee.Name] {
		name := "<expr>"
		if ok {
			name = callee.Name
		}
		return []*Error{{Span: ex.Span, Message: fmt.Sprintf("function %q is not permitted in a where clause", name)}}
	}

	var errs []*Error
	for _, a := range ex.Args {
		errs = append(errs, validateExpr(a)...)
	}

	return errs
}
