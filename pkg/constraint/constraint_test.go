package constraint

import (
	"testing"

	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lex"
	"github.com/lumen-lang/lumen/pkg/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()

	toks, err := lex.Lex(src, 1, 0)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	prog, err := parser.Parse(toks, nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return prog
}

func TestValidate_AllowedWhereClausePasses(t *testing.T) {
	prog := mustParse(t, "record User\n  name: String where length(name) > 0\n")

	if errs := ValidatePartial(prog); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidate_ArithmeticAndComparisonAllowed(t *testing.T) {
	prog := mustParse(t, "record Account\n  balance: Int where balance >= 0 and balance < 1000000\n")

	if errs := ValidatePartial(prog); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidate_DisallowedFunctionRejected(t *testing.T) {
	prog := mustParse(t, "record User\n  name: String where trim(name) > 0\n")

	errs := ValidatePartial(prog)
	if len(errs) == 0 {
		t.Fatal("expected an error for a non-whitelisted function call")
	}
}

func TestValidate_FieldsWithoutWhereClauseIgnored(t *testing.T) {
	prog := mustParse(t, "record Point\n  x: Int\n  y: Int\n")

	if errs := ValidatePartial(prog); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidate_ErrorAggregatesAllViolations(t *testing.T) {
	prog := mustParse(t, "record Bad\n  a: String where trim(a) > 0\n  b: String where upper(b) > 0\n")

	errs := ValidatePartial(prog)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
}

func TestValidate_WrapsErrorsWithMultierr(t *testing.T) {
	prog := mustParse(t, "record Bad\n  a: String where trim(a) > 0\n")

	if err := Validate(prog); err == nil {
		t.Fatal("expected a non-nil aggregate error")
	}
}

func TestValidate_ValidProgramReturnsNilError(t *testing.T) {
	prog := mustParse(t, "record User\n  name: String where length(name) > 0\n")

	if err := Validate(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
