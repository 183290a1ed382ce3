package vm

import (
	"github.com/lumen-lang/lumen/pkg/lir"
	"github.com/lumen-lang/lumen/pkg/value"
)

// performEffect implements OpEffectPerform: it resolves the named effect to
// a handler cell and invokes it like a call, preferring a dynamically
// installed handler (via OpHandlerPush) over the module's static
// effect_binds table (spec.md §6.9 "effect ops: EffectPerform, HandlerPush,
// HandlerPop").
func (vm *VM) performEffect(t *Task, frame *Frame, regs []value.Value, instr lir.Instruction) (Status, *Error) {
	effectName := displayFor(regs[instr.B])

	handlerCell, ok := vm.resolveHandler(t, effectName)
	if !ok {
		return 0, raise(frame, EffectUnhandled, "no handler installed for effect "+effectName)
	}

	firstArg := instr.C >> 8
	argCount := instr.C & 0xff

	callee, ok := vm.Module.CellByName(handlerCell)
	if !ok {
		return 0, raise(frame, UnknownCell, "no such handler cell: "+handlerCell)
	}

	newFrame := NewFrame(handlerCell, callee.Registers)
	if argCount > 0 {
		copy(newFrame.Regs, regs[firstArg:firstArg+argCount])
	}

	newFrame.ReturnTo = instr.A
	t.Stack = append(t.Stack, newFrame)

	return StatusRunning, nil
}

func (vm *VM) resolveHandler(t *Task, effectName string) (string, bool) {
	for i := len(t.Handlers) - 1; i >= 0; i-- {
		for _, e := range t.Handlers[i].effects {
			if e == effectName {
				return t.Handlers[i].cell, true
			}
		}
	}

	for _, bind := range vm.Module.Binds {
		if bind.Effect == effectName {
			return bind.Handler, true
		}
	}

	return "", false
}
