package parser

import (
	"testing"

	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lex"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()

	toks, err := lex.Lex(src, 1, 0)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	prog, err := Parse(toks, nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return prog
}

func TestParse_RecordDef(t *testing.T) {
	src := "record Point\n  x: Int\n  y: Int\n"

	prog := mustParse(t, src)
	if len(prog.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(prog.Items))
	}

	rec, ok := prog.Items[0].(*ast.RecordDef)
	if !ok {
		t.Fatalf("got %T, want *ast.RecordDef", prog.Items[0])
	}

	if rec.Name != "Point" || len(rec.Fields) != 2 {
		t.Fatalf("got %+v", rec)
	}
}

func TestParse_EnumDef(t *testing.T) {
	src := "enum Option\n  Some(Int)\n  None\n"

	prog := mustParse(t, src)
	en, ok := prog.Items[0].(*ast.EnumDef)
	if !ok || len(en.Variants) != 2 {
		t.Fatalf("got %+v", prog.Items[0])
	}

	if en.Variants[0].Payload == nil {
		t.Error("expected Some to carry a payload type")
	}

	if en.Variants[1].Payload != nil {
		t.Error("expected None to carry no payload")
	}
}

func TestParse_CellDefAndBody(t *testing.T) {
	src := "cell add(a: Int, b: Int) -> Int\n  return a + b\n"

	prog := mustParse(t, src)
	cell, ok := prog.Items[0].(*ast.CellDef)
	if !ok {
		t.Fatalf("got %T", prog.Items[0])
	}

	if cell.Name != "add" || len(cell.Params) != 2 || len(cell.Body) != 1 {
		t.Fatalf("got %+v", cell)
	}

	ret, ok := cell.Body[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("got %T", cell.Body[0])
	}

	bin, ok := ret.Value.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.OpAdd {
		t.Fatalf("got %+v", ret.Value)
	}
}

func TestParse_OperatorPrecedence(t *testing.T) {
	src := "cell f() -> Int\n  return 1 + 2 * 3\n"

	prog := mustParse(t, src)
	cell := prog.Items[0].(*ast.CellDef)
	ret := cell.Body[0].(*ast.ReturnStmt)
	bin := ret.Value.(*ast.BinaryExpr)

	if bin.Op != ast.OpAdd {
		t.Fatalf("expected top-level Add, got %v", bin.Op)
	}

	rhs, ok := bin.Right.(*ast.BinaryExpr)
	if !ok || rhs.Op != ast.OpMul {
		t.Fatalf("expected RHS to be Mul, got %+v", bin.Right)
	}
}

func TestParse_PowRightAssoc(t *testing.T) {
	src := "cell f() -> Int\n  return 2 ** 3 ** 2\n"

	prog := mustParse(t, src)
	cell := prog.Items[0].(*ast.CellDef)
	ret := cell.Body[0].(*ast.ReturnStmt)
	bin := ret.Value.(*ast.BinaryExpr)

	if bin.Op != ast.OpPow {
		t.Fatalf("got %v", bin.Op)
	}

	if _, ok := bin.Right.(*ast.BinaryExpr); !ok {
		t.Fatalf("expected right-associative nesting, got %+v", bin.Right)
	}

	if _, ok := bin.Left.(*ast.IntLit); !ok {
		t.Fatalf("expected left operand to be the literal 2, got %+v", bin.Left)
	}
}

func TestParse_NegativeIntLiteralFolds(t *testing.T) {
	src := "cell f() -> Int\n  return -5\n"

	prog := mustParse(t, src)
	cell := prog.Items[0].(*ast.CellDef)
	ret := cell.Body[0].(*ast.ReturnStmt)

	lit, ok := ret.Value.(*ast.IntLit)
	if !ok || lit.Value != -5 {
		t.Fatalf("got %+v", ret.Value)
	}
}

func TestParse_IfExpr(t *testing.T) {
	src := "cell f() -> Int\n  return if x then 1 else 2\n"

	prog := mustParse(t, src)
	cell := prog.Items[0].(*ast.CellDef)
	ret := cell.Body[0].(*ast.ReturnStmt)

	ifE, ok := ret.Value.(*ast.IfExpr)
	if !ok {
		t.Fatalf("got %T", ret.Value)
	}

	if ifE.Else == nil {
		t.Error("expected an else branch")
	}
}

func TestParse_MatchExpr(t *testing.T) {
	src := "cell f() -> Int\n  return match x\n    Some(v) => v\n    None => 0\n"

	prog := mustParse(t, src)
	cell := prog.Items[0].(*ast.CellDef)
	ret := cell.Body[0].(*ast.ReturnStmt)

	m, ok := ret.Value.(*ast.MatchExpr)
	if !ok || len(m.Arms) != 2 {
		t.Fatalf("got %+v", ret.Value)
	}
}

func TestParse_Lambda(t *testing.T) {
	src := "cell f() -> Int\n  return |x, y| x + y\n"

	prog := mustParse(t, src)
	cell := prog.Items[0].(*ast.CellDef)
	ret := cell.Body[0].(*ast.ReturnStmt)

	lam, ok := ret.Value.(*ast.LambdaExpr)
	if !ok || len(lam.Params) != 2 {
		t.Fatalf("got %+v", ret.Value)
	}
}

func TestParse_Pipeline(t *testing.T) {
	src := "cell f() -> Int\n  return a |> g(b, c)\n"

	prog := mustParse(t, src)
	cell := prog.Items[0].(*ast.CellDef)
	ret := cell.Body[0].(*ast.ReturnStmt)

	pipe, ok := ret.Value.(*ast.PipelineExpr)
	if !ok {
		t.Fatalf("got %T", ret.Value)
	}

	call, ok := pipe.Desugared.(*ast.CallExpr)
	if !ok || len(call.Args) != 3 {
		t.Fatalf("got %+v", pipe.Desugared)
	}
}

func TestParse_TryElse(t *testing.T) {
	src := "cell f() -> Int\n  return try risky() else |err| 0\n"

	prog := mustParse(t, src)
	cell := prog.Items[0].(*ast.CellDef)
	ret := cell.Body[0].(*ast.ReturnStmt)

	te, ok := ret.Value.(*ast.TryElseExpr)
	if !ok || te.ErrName != "err" {
		t.Fatalf("got %+v", ret.Value)
	}
}

func TestParse_NullSafeAndCoalesce(t *testing.T) {
	src := "cell f() -> Int\n  return a?.b ?? c\n"

	prog := mustParse(t, src)
	cell := prog.Items[0].(*ast.CellDef)
	ret := cell.Body[0].(*ast.ReturnStmt)

	nc, ok := ret.Value.(*ast.NullCoalesceExpr)
	if !ok {
		t.Fatalf("got %T", ret.Value)
	}

	field, ok := nc.Left.(*ast.FieldExpr)
	if !ok || !field.NullSafe {
		t.Fatalf("got %+v", nc.Left)
	}
}

func TestParse_ListComprehension(t *testing.T) {
	src := "cell f() -> Int\n  return [x * 2 for x in xs if x > 0]\n"

	prog := mustParse(t, src)
	cell := prog.Items[0].(*ast.CellDef)
	ret := cell.Body[0].(*ast.ReturnStmt)

	comp, ok := ret.Value.(*ast.Comprehension)
	if !ok || comp.Kind != ast.ComprehensionList || comp.Cond == nil {
		t.Fatalf("got %+v", ret.Value)
	}
}

func TestParse_ImportStmt(t *testing.T) {
	src := `import "math" { sqrt, pow } as m` + "\n"

	prog := mustParse(t, src)
	imp, ok := prog.Items[0].(*ast.ImportStmt)
	if !ok || imp.Path != "math" || len(imp.Symbols) != 2 || imp.Alias != "m" {
		t.Fatalf("got %+v", prog.Items[0])
	}
}

func TestParse_IfStmtElseIfElse(t *testing.T) {
	src := "cell f() -> Int\n  if a\n    return 1\n  else if b\n    return 2\n  else\n    return 3\n"

	prog := mustParse(t, src)
	cell := prog.Items[0].(*ast.CellDef)

	ifS, ok := cell.Body[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("got %T", cell.Body[0])
	}

	if len(ifS.Else) != 1 {
		t.Fatalf("expected a nested else-if, got %+v", ifS.Else)
	}

	if _, ok := ifS.Else[0].(*ast.IfStmt); !ok {
		t.Fatalf("got %T", ifS.Else[0])
	}
}

func TestParse_WhileAndFor(t *testing.T) {
	src := "cell f() -> Int\n  while a\n    return 1\n  for x in xs\n    return x\n  return 0\n"

	prog := mustParse(t, src)
	cell := prog.Items[0].(*ast.CellDef)

	if _, ok := cell.Body[0].(*ast.WhileStmt); !ok {
		t.Fatalf("got %T", cell.Body[0])
	}

	if _, ok := cell.Body[1].(*ast.ForStmt); !ok {
		t.Fatalf("got %T", cell.Body[1])
	}
}

func TestParse_RecordLiteral(t *testing.T) {
	src := "cell f() -> Int\n  let p = Point { x: 1, y: 2 }\n  return 0\n"

	prog := mustParse(t, src)
	cell := prog.Items[0].(*ast.CellDef)
	let := cell.Body[0].(*ast.LetStmt)

	rec, ok := let.Value.(*ast.RecordLit)
	if !ok || rec.Name != "Point" || len(rec.Fields) != 2 {
		t.Fatalf("got %+v", let.Value)
	}
}

func TestParse_InterpolatedStringExpr(t *testing.T) {
	src := "cell f() -> Int\n  let s = \"hi ${1 + 2}\"\n  return 0\n"

	prog := mustParse(t, src)
	cell := prog.Items[0].(*ast.CellDef)
	let := cell.Body[0].(*ast.LetStmt)

	interp, ok := let.Value.(*ast.InterpStringLit)
	if !ok || len(interp.Parts) != 2 {
		t.Fatalf("got %+v", let.Value)
	}

	if interp.Parts[1].Expr == nil {
		t.Fatal("expected the second part to carry a parsed expression")
	}
}

func TestParse_I64MinLiteralFoldsWithoutOverflow(t *testing.T) {
	src := "cell f() -> Int\n  return -9223372036854775808\n"

	prog := mustParse(t, src)
	cell := prog.Items[0].(*ast.CellDef)
	ret := cell.Body[0].(*ast.ReturnStmt)

	lit, ok := ret.Value.(*ast.IntLit)
	if !ok || lit.Value != -9223372036854775808 {
		t.Fatalf("got %+v, want IntLit(-9223372036854775808)", ret.Value)
	}
}

func TestParse_OutOfRangePositiveLiteralReportsInvalidNumber(t *testing.T) {
	src := "cell f() -> Int\n  return 9223372036854775808\n"

	toks, err := lex.Lex(src, 1, 0)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	_, err = Parse(toks, nil)
	if err == nil {
		t.Fatal("expected an InvalidNumber parse error for a bare out-of-i64-range literal")
	}

	perr, ok := err.(*Error)
	if !ok || perr.Kind != InvalidNumber {
		t.Fatalf("got %v, want a single *Error{Kind: InvalidNumber}", err)
	}
}
