package lir

import (
	"strings"
	"testing"

	"github.com/lumen-lang/lumen/pkg/value"
)

func TestValidate_JumpTargetPastRegisterCountIsNotARegisterViolation(t *testing.T) {
	// flag, a literal-1 temp, a literal-2 temp: 3 registers, both jumps
	// targeting 4, past them (pkg/lower/lower_test.go's pick cell shape).
	cell := Cell{
		Name:      "pick",
		Registers: 3,
		Instrs: []Instruction{
			{Op: OpJumpIfFalse, A: 0, B: 4},
			{Op: OpLoadK, A: 1, B: 0},
			{Op: OpReturn, A: 1},
			{Op: OpJump, A: 4},
			{Op: OpLoadK, A: 2, B: 1},
			{Op: OpReturn, A: 2},
		},
		Constants: []value.Value{value.NewInt(1), value.NewInt(2)},
	}

	if err := validateCell(&cell); err != nil {
		t.Fatalf("unexpected error for a cell whose jump targets exceed its register count: %v", err)
	}
}

func TestValidate_LoadKOutOfRangeDestinationReported(t *testing.T) {
	cell := Cell{
		Name:      "bad",
		Registers: 1,
		Instrs: []Instruction{
			{Op: OpLoadK, A: 5, B: 0},
		},
		Constants: []value.Value{value.NewInt(1)},
	}

	err := validateCell(&cell)
	if err == nil || !strings.Contains(err.Error(), "register 5 >= cell.registers 1") {
		t.Fatalf("got %v, want a register-out-of-range error for OpLoadK's destination", err)
	}
}

func TestValidate_MakeClosureBothRegistersChecked(t *testing.T) {
	cell := Cell{
		Name:      "bad",
		Registers: 1,
		Instrs: []Instruction{
			{Op: OpMakeClosure, A: 0, B: 9, C: 0},
		},
	}

	err := validateCell(&cell)
	if err == nil || !strings.Contains(err.Error(), "register 9 >= cell.registers 1") {
		t.Fatalf("got %v, want a register-out-of-range error for OpMakeClosure's nameReg", err)
	}
}

func TestValidate_CollectionWindowCountNotTreatedAsRegister(t *testing.T) {
	cell := Cell{
		Name:      "ok",
		Registers: 2,
		Instrs: []Instruction{
			{Op: OpNewList, A: 0, B: 1, C: 50}, // C is an element count, not a register
		},
	}

	if err := validateCell(&cell); err != nil {
		t.Fatalf("unexpected error treating a window count as a register: %v", err)
	}
}

func TestValidate_CallPackedArgRegisterChecked(t *testing.T) {
	cell := Cell{
		Name:      "bad",
		Registers: 2,
		Instrs: []Instruction{
			// firstArgReg=7 (out of range), argCount=1, packed as 7<<8|1.
			{Op: OpCall, A: 0, B: 1, C: 7<<8 | 1},
		},
	}

	err := validateCell(&cell)
	if err == nil || !strings.Contains(err.Error(), "register 7 >= cell.registers 2") {
		t.Fatalf("got %v, want a register-out-of-range error for OpCall's packed firstArgReg", err)
	}
}
