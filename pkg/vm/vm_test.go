package vm

import (
	"testing"

	"github.com/lumen-lang/lumen/pkg/lex"
	"github.com/lumen-lang/lumen/pkg/lir"
	"github.com/lumen-lang/lumen/pkg/lower"
	"github.com/lumen-lang/lumen/pkg/parser"
	"github.com/lumen-lang/lumen/pkg/types"
	"github.com/lumen-lang/lumen/pkg/value"
)

func mustModule(t *testing.T, src string) *lir.Module {
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

	mod, err := lower.Lower(prog, typed, "sha256:test")
	if err != nil {
		t.Fatalf("lower error: %v", err)
	}

	return mod
}

// fixedCounter never exhausts its budget; it satisfies ReductionCounter for
// tests that want to run a task to completion without a scheduler.
type fixedCounter struct{ ticks int }

func (c *fixedCounter) Tick() bool { c.ticks++; return false }

// exhaustAfter yields StatusYielded after n ticks, for testing cooperative
// preemption without pkg/sched.
type exhaustAfter struct {
	remaining int
}

func (c *exhaustAfter) Tick() bool {
	if c.remaining <= 0 {
		return true
	}

	c.remaining--

	return false
}

func TestVM_RunSimpleArithmeticToCompletion(t *testing.T) {
	mod := mustModule(t, "cell add(a: Int, b: Int) -> Int\n  return a + b\n")
	machine := NewVM(mod)

	task, err := machine.NewTask(1, "add", []value.Value{value.NewInt(2), value.NewInt(3)})
	if err != nil {
		t.Fatalf("NewTask error: %v", err)
	}

	status, runErr := machine.Run(task, nil)
	if runErr != nil {
		t.Fatalf("Run error: %v", runErr)
	}

	if status != StatusDone {
		t.Fatalf("status = %v, want StatusDone", status)
	}

	if task.Result.Kind != value.KindInt || task.Result.Int != 5 {
		t.Fatalf("result = %+v, want Int(5)", task.Result)
	}
}

func TestVM_UnknownCellReportsError(t *testing.T) {
	mod := mustModule(t, "cell noop()\n  let x = 1\n")
	machine := NewVM(mod)

	_, err := machine.NewTask(1, "missing", nil)
	if err == nil {
		t.Fatal("expected an UnknownCell error")
	}

	if err.Kind != UnknownCell {
		t.Fatalf("got kind %v, want UnknownCell", err.Kind)
	}
}

func TestVM_DivisionByZeroRaisesStructuredError(t *testing.T) {
	mod := mustModule(t, "cell div(a: Int, b: Int) -> Int\n  return a / b\n")
	machine := NewVM(mod)

	task, err := machine.NewTask(1, "div", []value.Value{value.NewInt(1), value.NewInt(0)})
	if err != nil {
		t.Fatalf("NewTask error: %v", err)
	}

	status, runErr := machine.Run(task, nil)
	if status != StatusFailed || runErr == nil {
		t.Fatalf("status = %v, err = %v, want StatusFailed with an error", status, runErr)
	}

	rerr, ok := runErr.(*Error)
	if !ok || rerr.Kind != DivisionByZero {
		t.Fatalf("got error %v, want *Error{Kind: DivisionByZero}", runErr)
	}
}

func TestVM_ReductionBudgetYieldsAndResumes(t *testing.T) {
	mod := mustModule(t, "cell add(a: Int, b: Int) -> Int\n  return a + b\n")
	machine := NewVM(mod)

	task, err := machine.NewTask(1, "add", []value.Value{value.NewInt(2), value.NewInt(3)})
	if err != nil {
		t.Fatalf("NewTask error: %v", err)
	}

	budget := &exhaustAfter{remaining: 0}

	status, runErr := machine.Run(task, budget)
	if runErr != nil {
		t.Fatalf("Run error: %v", runErr)
	}

	if status != StatusYielded {
		t.Fatalf("status = %v, want StatusYielded", status)
	}

	status, runErr = machine.Run(task, &fixedCounter{})
	if runErr != nil {
		t.Fatalf("Run error: %v", runErr)
	}

	if status != StatusDone {
		t.Fatalf("status after resume = %v, want StatusDone", status)
	}

	if task.Result.Int != 5 {
		t.Fatalf("result after resume = %+v, want Int(5)", task.Result)
	}
}

func TestVM_CancelledTaskReportsStatusCancelled(t *testing.T) {
	mod := mustModule(t, "cell add(a: Int, b: Int) -> Int\n  return a + b\n")
	machine := NewVM(mod)

	task, err := machine.NewTask(1, "add", []value.Value{value.NewInt(2), value.NewInt(3)})
	if err != nil {
		t.Fatalf("NewTask error: %v", err)
	}

	task.Cancel()

	status, runErr := machine.Run(task, nil)
	if runErr != nil {
		t.Fatalf("Run error: %v", runErr)
	}

	if status != StatusCancelled {
		t.Fatalf("status = %v, want StatusCancelled", status)
	}
}

func TestVM_IfStatementTakesBothBranches(t *testing.T) {
	mod := mustModule(t, "cell pick(flag: Bool) -> Int\n  if flag\n    return 1\n  return 2\n")
	machine := NewVM(mod)

	taskTrue, _ := machine.NewTask(1, "pick", []value.Value{value.NewBool(true)})
	if _, err := machine.Run(taskTrue, nil); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if taskTrue.Result.Int != 1 {
		t.Fatalf("true-branch result = %+v, want Int(1)", taskTrue.Result)
	}

	taskFalse, _ := machine.NewTask(2, "pick", []value.Value{value.NewBool(false)})
	if _, err := machine.Run(taskFalse, nil); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if taskFalse.Result.Int != 2 {
		t.Fatalf("false-branch result = %+v, want Int(2)", taskFalse.Result)
	}
}

func TestVM_CallInvokesCalleeAndReturnsResult(t *testing.T) {
	mod := mustModule(t, "cell add(a: Int, b: Int) -> Int\n  return a + b\n\ncell caller() -> Int\n  return add(2, 3)\n")
	machine := NewVM(mod)

	task, err := machine.NewTask(1, "caller", nil)
	if err != nil {
		t.Fatalf("NewTask error: %v", err)
	}

	status, runErr := machine.Run(task, nil)
	if runErr != nil {
		t.Fatalf("Run error: %v", runErr)
	}

	if status != StatusDone || task.Result.Int != 5 {
		t.Fatalf("status = %v, result = %+v, want StatusDone/Int(5)", status, task.Result)
	}
}

func TestVM_CollectGarbageReclaimsUnrootedList(t *testing.T) {
	mod := mustModule(t, "cell noop()\n  let x = 1\n")
	machine := NewVM(mod)

	v := value.NewList([]value.Value{value.NewInt(1)})
	v.Shared = machine.heap.NewHeader()
	v.Shared.Release()

	stats := machine.CollectGarbage(nil)
	if stats.LinesReclaimed != 1 {
		t.Fatalf("lines reclaimed = %d, want 1", stats.LinesReclaimed)
	}
}
