package vm

import (
	"github.com/lumen-lang/lumen/pkg/gc"
	"github.com/lumen-lang/lumen/pkg/lir"
	"github.com/lumen-lang/lumen/pkg/value"
)

// resolveCallee extracts the target cell name and (for a closure) its
// captured environment from a callee register's value: either a plain
// String naming the cell statically, or a Closure produced by MakeClosure.
func resolveCallee(frame *Frame, v value.Value) (string, map[string]value.Value, *Error) {
	switch v.Kind {
	case value.KindString:
		return v.AsString(), nil, nil
	case value.KindClosure:
		return v.Closure.Cell, v.Closure.Captures, nil
	default:
		return "", nil, raise(frame, NotCallable, "value is not callable")
	}
}

// call implements OpCall / OpTailCall. The argument window is packed into
// C as (firstArgReg<<8 | argCount), matching pkg/lower's lowerCall.
func (vm *VM) call(t *Task, frame *Frame, regs []value.Value, instr lir.Instruction, tail bool) (Status, *Error) {
	calleeVal := regs[instr.B]

	cellName, captures, cerr := resolveCallee(frame, calleeVal)
	if cerr != nil {
		return 0, cerr
	}

	firstArg := instr.C >> 8
	argCount := instr.C & 0xff

	callee, ok := vm.Module.CellByName(cellName)
	if !ok {
		return 0, raise(frame, UnknownCell, "no such cell: "+cellName)
	}

	newFrame := NewFrame(cellName, callee.Registers)
	if argCount > 0 {
		copy(newFrame.Regs, regs[firstArg:firstArg+argCount])

		for i := int64(0); i < argCount; i++ {
			retainIfHeap(newFrame.Regs[i])
		}
	}

	newFrame.Captures = captures
	newFrame.ReturnTo = instr.A

	if tail {
		newFrame.ReturnTo = frame.ReturnTo
		t.Stack[len(t.Stack)-1] = newFrame
	} else {
		t.Stack = append(t.Stack, newFrame)
	}

	return StatusRunning, nil
}

// popReturn pops the current (topmost) frame, delivering result into the
// caller's ReturnTo register. It reports whether a caller remained (false
// means the task's outermost cell just returned). The finished frame's own
// register references are released, except for result's own header: that
// ownership transfers to the caller's register rather than being dropped.
func (vm *VM) popReturn(t *Task, result value.Value) bool {
	finished := t.Stack[len(t.Stack)-1]
	t.Stack = t.Stack[:len(t.Stack)-1]
	releaseFrameRegs(finished, result.Shared)

	if len(t.Stack) == 0 {
		return false
	}

	caller := t.current()
	caller.Regs[finished.ReturnTo] = result

	return true
}

func releaseFrameRegs(f Frame, keep *gc.Header) {
	for _, r := range f.Regs {
		if r.Shared != nil && r.Shared != keep {
			releaseIfHeap(r)
		}
	}
}
