package lir

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate checks the invariants spec.md §3/§8 require of every LIR cell:
// every register index used is < cell.Registers, every constant index is <
// len(cell.Constants), and every jump target lies within the cell's
// instruction range. It accumulates every violation found rather than
// stopping at the first.
func Validate(m *Module) error {
	var err error

	for _, cell := range m.Cells {
		err = multierr.Append(err, validateCell(&cell))
	}

	return err
}

func validateCell(c *Cell) error {
	var err error
	n := int64(len(c.Instrs))

	for idx, instr := range c.Instrs {
		for _, reg := range registerOperands(instr) {
			if reg < 0 || reg >= c.Registers {
				err = multierr.Append(err, fmt.Errorf(
					"cell %q instr %d: register %d >= cell.registers %d", c.Name, idx, reg, c.Registers))
			}
		}

		if usesConstant(instr.Op) {
			if instr.B < 0 || instr.B >= int64(len(c.Constants)) {
				err = multierr.Append(err, fmt.Errorf(
					"cell %q instr %d: constant index %d out of range [0,%d)", c.Name, idx, instr.B, len(c.Constants)))
			}
		}

		if isJump(instr.Op) {
			target := instr.B
			if instr.Op == OpJump {
				target = instr.A
			}

			if target < 0 || target >= n {
				err = multierr.Append(err, fmt.Errorf(
					"cell %q instr %d: jump target %d out of range [0,%d)", c.Name, idx, target, n))
			}
		}
	}

	return err
}

// registerOperands reports which of an instruction's fields actually hold a
// register index, decoding the opcode-specific packing (call argument
// windows, collection-builder windows, slice bounds) where a field's bits
// don't name a register at all. Fields that hold a jump target, a constant
// index, or a plain count/immediate are excluded.
func registerOperands(instr Instruction) []int64 {
	switch instr.Op {
	case OpLoadK, OpLoadNull, OpLoadBool, OpReturn, OpHalt, OpCaptureContinuation:
		// OpLoadBool.B is an immediate 0/1, not a register.
		// OpReturn/OpHalt.A is the source register; B/C are unused.
		return []int64{instr.A}

	case OpMove, OpNeg, OpNot, OpWrapNeg, OpBitNot, OpLen,
		OpUnionTag, OpUnionUnbox, OpTryUnwrap, OpCaptureLoad,
		OpMakeClosure, OpResumeContinuation, OpHandlerPush:
		return []int64{instr.A, instr.B}

	case OpAdd, OpSub, OpMul, OpDiv, OpFloorDiv, OpMod, OpPow,
		OpWrapAdd, OpWrapSub, OpWrapMul,
		OpBitAnd, OpBitOr, OpBitXor, OpShl, OpShr,
		OpEq, OpNotEq, OpLt, OpLtEq, OpGt, OpGtEq, OpCmp3,
		OpConcat, OpInterpolate, OpIn,
		OpIndex, OpIndexSet, OpIsVariant, OpMakeUnion, OpCaptureStore:
		return []int64{instr.A, instr.B, instr.C}

	case OpNewMap:
		return []int64{instr.A}

	case OpNewList, OpNewSet, OpNewTuple:
		// B is the first element's register, C the window's element count
		// (not a register); the window is empty when C == 0, in which case
		// B is an unused placeholder.
		if instr.C > 0 {
			return []int64{instr.A, instr.B}
		}

		return []int64{instr.A}

	case OpNewRecord:
		return []int64{instr.A, instr.B}

	case OpSlice:
		// C packs lo<<32|hi slice bounds, not a register.
		return []int64{instr.A, instr.B}

	case OpCall, OpTailCall, OpEffectPerform:
		// C packs firstArgReg<<8|argCount.
		regs := []int64{instr.A, instr.B}
		if argCount := instr.C & 0xff; argCount > 0 {
			regs = append(regs, instr.C>>8)
		}

		return regs

	case OpJump:
		// A is a backpatched instruction index, not a register.
		return nil

	case OpJumpIfTrue, OpJumpIfFalse:
		// B is a backpatched instruction index, not a register.
		return []int64{instr.A}

	case OpHandlerPop:
		return nil

	default:
		return nil
	}
}

func usesConstant(op Opcode) bool {
	return op == OpLoadK
}

func isJump(op Opcode) bool {
	switch op {
	case OpJump, OpJumpIfTrue, OpJumpIfFalse:
		return true
	default:
		return false
	}
}
