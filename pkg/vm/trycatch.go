package vm

import (
	"github.com/lumen-lang/lumen/pkg/lir"
	"github.com/lumen-lang/lumen/pkg/value"
)

// tryUnwrap implements `expr?`: on Ok(payload) it stores payload in the
// destination register; on anything else it short-circuits the current
// frame, returning the original value upward unchanged (spec.md §4.3 "e? on
// a Result desugars to early-return-on-err").
func (vm *VM) tryUnwrap(t *Task, frame *Frame, regs []value.Value, instr lir.Instruction) (Status, *Error) {
	operand := regs[instr.B]

	if operand.Kind == value.KindUnion && operand.Union.Tag == "Ok" {
		regs[instr.A] = operand.Union.Payload
		return StatusRunning, nil
	}

	if !vm.popReturn(t, operand) {
		t.Result = operand
		return StatusDone, nil
	}

	return StatusRunning, nil
}
