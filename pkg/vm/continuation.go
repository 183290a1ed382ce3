package vm

import (
	"github.com/lumen-lang/lumen/pkg/lir"
	"github.com/lumen-lang/lumen/pkg/value"
)

// continuationSnapshot is a frozen copy of a task's call stack (frames and
// registers) and handler depth at the point an OpCaptureContinuation
// instruction ran. It is multi-shot: resuming it does not consume it, so it
// may be invoked any number of times. pkg/lower emits neither
// OpCaptureContinuation nor OpResumeContinuation, and no
// `__capture_continuation` intrinsic is recognised, so only LIR that
// contains these opcodes directly reaches this facility.
type continuationSnapshot struct {
	stack        []Frame
	handlerDepth int
}

func cloneFrame(f Frame) Frame {
	regs := make([]value.Value, len(f.Regs))
	copy(regs, f.Regs)

	var captures map[string]value.Value
	if f.Captures != nil {
		captures = make(map[string]value.Value, len(f.Captures))
		for k, v := range f.Captures {
			captures[k] = v
		}
	}

	return Frame{CellName: f.CellName, IP: f.IP, Regs: regs, Captures: captures, ReturnTo: f.ReturnTo, Handlers: f.Handlers}
}

// captureContinuation snapshots t's current stack, registers the snapshot
// under a fresh ID, and returns a ContinuationRef value naming it.
func (vm *VM) captureContinuation(t *Task) value.Value {
	snap := &continuationSnapshot{handlerDepth: len(t.Handlers)}

	for _, f := range t.Stack {
		snap.stack = append(snap.stack, cloneFrame(f))
	}

	id := vm.nextContID
	vm.nextContID++
	vm.continuations[id] = snap

	return value.NewContinuationRef(id)
}

// resumeContinuation implements OpResumeContinuation: A holds the
// ContinuationRef, B holds the value to deliver as the result of the
// capturing call. Resuming replaces t's entire current stack with a fresh
// clone of the snapshot (the task abandons whatever it was doing at the
// resume point, matching a one-shot `call/cc`-style jump generalized to
// multi-shot by never mutating the stored snapshot).
func (vm *VM) resumeContinuation(t *Task, regs []value.Value, instr lir.Instruction) (Status, *Error) {
	ref := regs[instr.A]
	if ref.Kind != value.KindContinuation {
		return 0, raise(t.current(), TypeCastFailure, "ResumeContinuation requires a continuation value")
	}

	snap, ok := vm.continuations[ref.Continuation.ID]
	if !ok {
		return 0, raise(t.current(), TypeCastFailure, "unknown continuation")
	}

	resumed := make([]Frame, len(snap.stack))
	for i, f := range snap.stack {
		resumed[i] = cloneFrame(f)
	}

	t.Stack = resumed
	if len(t.Handlers) > snap.handlerDepth {
		t.Handlers = t.Handlers[:snap.handlerDepth]
	}

	if len(t.Stack) > 0 {
		top := t.current()
		dest := instr.B
		if cell, ok := vm.Module.CellByName(top.CellName); ok && top.IP > 0 && top.IP <= int64(len(cell.Instrs)) {
			if capture := cell.Instrs[top.IP-1]; capture.Op == lir.OpCaptureContinuation {
				dest = capture.A
			}
		}
		top.Regs[dest] = regs[instr.B]
	}

	return StatusRunning, nil
}
