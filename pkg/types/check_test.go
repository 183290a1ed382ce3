package types

import (
	"strings"
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

func TestCheck_SimpleCellOK(t *testing.T) {
	prog := mustParse(t, "cell add(a: Int, b: Int) -> Int\n  return a + b\n")

	res, errs := Partial(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	info, ok := res.Cells["add"]
	if !ok {
		t.Fatal("expected cell \"add\" to be registered")
	}

	if len(info.Params) != 2 || info.Params[0].Kind != Int || info.Return.Kind != Int {
		t.Fatalf("got signature %+v", info)
	}
}

func TestCheck_RecordFieldTypesResolved(t *testing.T) {
	prog := mustParse(t, "record Point\n  x: Int\n  y: Int\n")

	res, errs := Partial(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	info, ok := res.Records["Point"]
	if !ok {
		t.Fatal("expected record \"Point\" to be registered")
	}

	if info.Types["x"].Kind != Int || info.Types["y"].Kind != Int {
		t.Fatalf("got field types %+v", info.Types)
	}
}

func TestCheck_UndefinedVarReported(t *testing.T) {
	prog := mustParse(t, "cell identity() -> Int\n  return missing\n")

	_, errs := Partial(prog)
	if len(errs) == 0 {
		t.Fatal("expected an UndefinedVar error")
	}

	if errs[0].Kind != UndefinedVar {
		t.Fatalf("got kind %v, want UndefinedVar", errs[0].Kind)
	}
}

func TestCheck_ArgCountMismatchReported(t *testing.T) {
	prog := mustParse(t, "cell add(a: Int, b: Int) -> Int\n  return a + b\n\ncell bad() -> Int\n  return add(1)\n")

	_, errs := Partial(prog)

	var found bool
	for _, e := range errs {
		if e.Kind == ArgCount {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected an ArgCount error, got %v", errs)
	}
}

func TestCheck_ImmutableAssignReported(t *testing.T) {
	prog := mustParse(t, "cell bad() -> Int\n  let x = 1\n  x = 2\n  return x\n")

	_, errs := Partial(prog)

	var found bool
	for _, e := range errs {
		if e.Kind == ImmutableAssign {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected an ImmutableAssign error, got %v", errs)
	}
}

func TestCheck_LetBindingMismatchReported(t *testing.T) {
	prog := mustParse(t, "cell bad() -> Int\n  let x: Int = true\n  return x\n")

	_, errs := Partial(prog)

	var found bool
	for _, e := range errs {
		if e.Kind == Mismatch {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected a Mismatch error, got %v", errs)
	}
}

func TestCheck_NonExhaustiveMatchReported(t *testing.T) {
	src := "enum Direction\n  North\n  South\n  East\n  West\n\n" +
		"cell describe(d: Direction) -> Int\n" +
		"  return match d\n" +
		"    North() => 1\n" +
		"    South() => 2\n" +
		"    East() => 3\n"

	prog := mustParse(t, src)

	_, errs := Partial(prog)

	var found *Error

	for _, e := range errs {
		if e.Kind == NonExhaustiveMatch {
			found = e
		}
	}

	if found == nil {
		t.Fatalf("expected a NonExhaustiveMatch error, got %v", errs)
	}

	if !strings.Contains(found.Message, "West") {
		t.Fatalf("expected the missing variant West to be named, got %q", found.Message)
	}
}

func TestCheck_MustUseIgnoredReported(t *testing.T) {
	src := "@must_use\ncell compute() -> Int\n  return 1\n\n" +
		"cell caller() -> Int\n" +
		"  compute()\n" +
		"  return 0\n"

	prog := mustParse(t, src)

	_, errs := Partial(prog)

	var found bool

	for _, e := range errs {
		if e.Kind == MustUseIgnored {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected a MustUseIgnored error, got %v", errs)
	}
}

func TestCheck_NotCallableReported(t *testing.T) {
	prog := mustParse(t, "cell bad() -> Int\n  let x = 1\n  return x()\n")

	_, errs := Partial(prog)

	var found bool
	for _, e := range errs {
		if e.Kind == NotCallable {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected a NotCallable error, got %v", errs)
	}
}
