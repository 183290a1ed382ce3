package resolve

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

func TestResolve_ValidProgramHasNoErrors(t *testing.T) {
	prog := mustParse(t, "cell add(a: Int, b: Int) -> Int\n  return a + b\n")

	table, errs := Partial(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if _, ok := table.Cells["add"]; !ok {
		t.Fatal("expected cell \"add\" to be declared")
	}
}

func TestResolve_DuplicateCellDefinitionReported(t *testing.T) {
	prog := mustParse(t, "cell add(a: Int) -> Int\n  return a\n\ncell add(a: Int) -> Int\n  return a\n")

	_, errs := Partial(prog)
	if len(errs) == 0 || errs[0].Kind != Duplicate {
		t.Fatalf("got %v, want a Duplicate error", errs)
	}
}

func TestResolve_DuplicateTypeDefinitionReported(t *testing.T) {
	prog := mustParse(t, "record Point\n  x: Int\n\nrecord Point\n  y: Int\n")

	_, errs := Partial(prog)
	if len(errs) == 0 || errs[0].Kind != Duplicate {
		t.Fatalf("got %v, want a Duplicate error", errs)
	}
}

func TestResolve_UndefinedVarReported(t *testing.T) {
	prog := mustParse(t, "cell bad() -> Int\n  return missing\n")

	_, errs := Partial(prog)
	if len(errs) == 0 || errs[0].Kind != UndefinedVar {
		t.Fatalf("got %v, want an UndefinedVar error", errs)
	}
}

func TestResolve_DuplicateLocalInSameScopeReported(t *testing.T) {
	prog := mustParse(t, "cell bad() -> Int\n  let x = 1\n  let x = 2\n  return x\n")

	_, errs := Partial(prog)
	if len(errs) == 0 || errs[0].Kind != Duplicate {
		t.Fatalf("got %v, want a Duplicate error", errs)
	}
}

func TestResolve_ShadowingInNestedScopeAllowed(t *testing.T) {
	prog := mustParse(t, "cell ok() -> Int\n  let x = 1\n  if true\n    let x = 2\n    return x\n  return x\n")

	_, errs := Partial(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors for shadowing in a nested scope: %v", errs)
	}
}

func TestResolve_ForLoopPatternScopedToBody(t *testing.T) {
	prog := mustParse(t, "cell sumOf(xs: List)\n  for x in xs\n    let y = x\n")

	_, errs := Partial(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestResolve_FailFastWrapsErrorsWithMultierr(t *testing.T) {
	prog := mustParse(t, "cell bad() -> Int\n  return missing\n")

	if _, err := Resolve(prog); err == nil {
		t.Fatal("expected a non-nil aggregate error")
	}
}
