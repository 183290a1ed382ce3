package lower

import (
	"testing"

	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lex"
	"github.com/lumen-lang/lumen/pkg/lir"
	"github.com/lumen-lang/lumen/pkg/parser"
	"github.com/lumen-lang/lumen/pkg/types"
)

func mustLower(t *testing.T, src string) (*ast.Program, *lir.Module) {
	t.Helper()

	toks, err := lex.Lex(src, 1, 0)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	prog, err := parser.Parse(toks, nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	typed, errs := types.Partial(prog)
	if len(errs) != 0 {
		t.Fatalf("type errors: %v", errs)
	}

	mod, err := Lower(prog, typed, "sha256:test")
	if err != nil {
		t.Fatalf("lower error: %v", err)
	}

	return prog, mod
}

func findCell(mod *lir.Module, name string) *lir.Cell {
	for i := range mod.Cells {
		if mod.Cells[i].Name == name {
			return &mod.Cells[i]
		}
	}

	return nil
}

func TestLower_SimpleArithmeticCell(t *testing.T) {
	_, mod := mustLower(t, "cell add(a: Int, b: Int) -> Int\n  return a + b\n")

	cell := findCell(mod, "add")
	if cell == nil {
		t.Fatal("expected a lowered cell named \"add\"")
	}

	if len(cell.Params) != 2 {
		t.Fatalf("got %d params, want 2", len(cell.Params))
	}

	var sawAdd, sawReturn bool
	for _, instr := range cell.Instrs {
		switch instr.Op {
		case lir.OpAdd:
			sawAdd = true
		case lir.OpReturn:
			sawReturn = true
		}
	}

	if !sawAdd || !sawReturn {
		t.Fatalf("expected Add and Return opcodes, got %+v", cell.Instrs)
	}
}

func TestLower_ImplicitReturnAppended(t *testing.T) {
	_, mod := mustLower(t, "cell noop()\n  let x = 1\n")

	cell := findCell(mod, "noop")
	if cell == nil {
		t.Fatal("expected a lowered cell named \"noop\"")
	}

	last := cell.Instrs[len(cell.Instrs)-1]
	if last.Op != lir.OpReturn {
		t.Fatalf("last opcode = %v, want Return", last.Op)
	}
}

func TestLower_IfStatementEmitsConditionalJumps(t *testing.T) {
	_, mod := mustLower(t, "cell pick(flag: Bool) -> Int\n  if flag\n    return 1\n  return 2\n")

	cell := findCell(mod, "pick")
	if cell == nil {
		t.Fatal("expected a lowered cell named \"pick\"")
	}

	var sawJump bool
	for _, instr := range cell.Instrs {
		if instr.Op == lir.OpJumpIfFalse || instr.Op == lir.OpJumpIfTrue {
			sawJump = true
		}
	}

	if !sawJump {
		t.Fatalf("expected a conditional jump opcode, got %+v", cell.Instrs)
	}
}

func TestLower_RecordAndEnumDescriptorsPopulated(t *testing.T) {
	_, mod := mustLower(t, "record Point\n  x: Int\n  y: Int\n\nenum Option\n  Some(Int)\n  None\n")

	if len(mod.Types) != 2 {
		t.Fatalf("got %d type descriptors, want 2", len(mod.Types))
	}

	var record, enum *lir.TypeDescriptor
	for i := range mod.Types {
		switch mod.Types[i].Name {
		case "Point":
			record = &mod.Types[i]
		case "Option":
			enum = &mod.Types[i]
		}
	}

	if record == nil || len(record.Fields) != 2 {
		t.Fatalf("got record descriptor %+v", record)
	}

	if enum == nil || !enum.IsEnum || len(enum.Variants) != 2 {
		t.Fatalf("got enum descriptor %+v", enum)
	}
}

func TestLower_DocHashAndVersionStamped(t *testing.T) {
	_, mod := mustLower(t, "cell noop()\n  let x = 1\n")

	if mod.DocHash != "sha256:test" {
		t.Fatalf("doc hash = %q, want sha256:test", mod.DocHash)
	}

	if mod.Version != lir.CurrentVersion {
		t.Fatalf("version = %d, want %d", mod.Version, lir.CurrentVersion)
	}
}
