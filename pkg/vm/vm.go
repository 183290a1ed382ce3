// Package vm implements the register-based bytecode interpreter: opcode
// dispatch over an explicit (not Go-native) call stack so execution can
// suspend at a reduction-budget checkpoint and resume later, possibly on a
// different scheduler worker (spec.md §4.9, §4.11).
package vm

import (
	"github.com/lumen-lang/lumen/pkg/gc"
	"github.com/lumen-lang/lumen/pkg/lir"
	"github.com/lumen-lang/lumen/pkg/value"
)

// ReductionCounter is the cooperative-preemption checkpoint a Task's Run
// call consults once per instruction. It is satisfied by
// *pkg/sched.ReductionCounter; the VM depends only on this narrow interface
// so pkg/vm never imports pkg/sched (scheduler depends on VM, not the
// reverse).
type ReductionCounter interface {
	// Tick consumes one reduction and reports whether the budget is now
	// exhausted.
	Tick() bool
}

// VM executes cells from a single compiled Module.
type VM struct {
	Module        *lir.Module
	heap          *gc.Heap
	continuations map[uint64]*continuationSnapshot
	nextContID    uint64
}

// NewVM constructs a VM bound to mod.
func NewVM(mod *lir.Module) *VM {
	return &VM{Module: mod, heap: gc.NewHeap(), continuations: map[uint64]*continuationSnapshot{}}
}

// CollectGarbage runs one mark-sweep-evacuate cycle over the VM's shared
// heap, rooted at every register and capture slot live across tasks. The
// scheduler calls this once every sched.DefaultGCEvery task completions;
// it is also safe to call with a single in-flight task from the `run` CLI
// command.
func (vm *VM) CollectGarbage(tasks []*Task) gc.Stats {
	var roots []gc.Object

	for _, t := range tasks {
		for _, f := range t.Stack {
			for _, r := range f.Regs {
				roots = append(roots, r)
			}

			for _, c := range f.Captures {
				roots = append(roots, c)
			}
		}
	}

	return vm.heap.Collect(roots)
}

func retainIfHeap(v value.Value) {
	if v.Shared != nil {
		v.Shared.Retain()
	}
}

func releaseIfHeap(v value.Value) {
	if v.Shared != nil {
		v.Shared.Release()
	}
}

// NewTask creates a fresh Task ready to execute cellName with the given
// arguments, seeded into the cell's first len(args) registers (spec.md §3
// "Frame... base_reg").
func (vm *VM) NewTask(id uint64, cellName string, args []value.Value) (*Task, *Error) {
	cell, ok := vm.Module.CellByName(cellName)
	if !ok {
		return nil, &Error{Kind: UnknownCell, Message: "no such cell: " + cellName, Cell: cellName}
	}

	frame := NewFrame(cellName, cell.Registers)
	copy(frame.Regs, args)

	return &Task{ID: id, Stack: []Frame{frame}}, nil
}

// Run executes t until it finishes, fails, is cancelled, or exhausts budget
// (pass nil for an unbudgeted run-to-completion, e.g. from the `run` CLI
// command outside the scheduler). Calling Run again on a StatusYielded task
// resumes exactly where it left off.
func (vm *VM) Run(t *Task, budget ReductionCounter) (Status, error) {
	for {
		if t.Cancelled() {
			return StatusCancelled, nil
		}

		if budget != nil && budget.Tick() {
			return StatusYielded, nil
		}

		frame := t.current()

		cell, ok := vm.Module.CellByName(frame.CellName)
		if !ok {
			t.Err = &Error{Kind: UnknownCell, Message: "no such cell: " + frame.CellName, Cell: frame.CellName}
			return StatusFailed, t.Err
		}

		if frame.IP >= int64(len(cell.Instrs)) {
			if !vm.popReturn(t, value.Null) {
				t.Result = value.Null
				return StatusDone, nil
			}

			continue
		}

		instr := cell.Instrs[frame.IP]
		frame.IP++

		status, err := vm.dispatch(t, frame, cell, instr)
		if err != nil {
			t.Err = err
			return StatusFailed, err
		}

		if status != StatusRunning {
			if status == StatusDone {
				return StatusDone, nil
			}

			return status, nil
		}
	}
}

// StatusRunning is an internal sentinel dispatch returns to mean "keep
// looping"; it is never returned from Run.
const StatusRunning Status = 255

func (vm *VM) dispatch(t *Task, frame *Frame, cell *lir.Cell, instr lir.Instruction) (Status, *Error) {
	regs := frame.Regs

	switch instr.Op {
	case lir.OpLoadK:
		regs[instr.A] = cell.Constants[instr.B]
	case lir.OpMove:
		releaseIfHeap(regs[instr.A])
		v := regs[instr.B]
		retainIfHeap(v)
		regs[instr.A] = v
	case lir.OpLoadNull:
		regs[instr.A] = value.Null
	case lir.OpLoadBool:
		regs[instr.A] = value.NewBool(instr.B != 0)

	case lir.OpAdd:
		return vm.binArith(frame, regs, instr, opAdd)
	case lir.OpSub:
		return vm.binArith(frame, regs, instr, opSub)
	case lir.OpMul:
		return vm.binArith(frame, regs, instr, opMul)
	case lir.OpDiv:
		return vm.binArith(frame, regs, instr, opDiv)
	case lir.OpFloorDiv:
		return vm.binArith(frame, regs, instr, opFloorDiv)
	case lir.OpMod:
		return vm.binArith(frame, regs, instr, opMod)
	case lir.OpPow:
		return vm.binArith(frame, regs, instr, opPow)
	case lir.OpNeg:
		return vm.unaryNeg(frame, regs, instr)
	case lir.OpNot:
		regs[instr.A] = value.NewBool(!regs[instr.B].IsTruthy())
	case lir.OpWrapAdd:
		regs[instr.A] = wrappingOp(opAdd, regs[instr.B].Int, regs[instr.C].Int)
	case lir.OpWrapSub:
		regs[instr.A] = wrappingOp(opSub, regs[instr.B].Int, regs[instr.C].Int)
	case lir.OpWrapMul:
		regs[instr.A] = wrappingOp(opMul, regs[instr.B].Int, regs[instr.C].Int)
	case lir.OpWrapNeg:
		regs[instr.A] = value.NewInt(-regs[instr.B].Int)

	case lir.OpBitAnd:
		regs[instr.A] = value.NewInt(regs[instr.B].Int & regs[instr.C].Int)
	case lir.OpBitOr:
		regs[instr.A] = value.NewInt(regs[instr.B].Int | regs[instr.C].Int)
	case lir.OpBitXor:
		regs[instr.A] = value.NewInt(regs[instr.B].Int ^ regs[instr.C].Int)
	case lir.OpBitNot:
		regs[instr.A] = value.NewInt(^regs[instr.B].Int)
	case lir.OpShl:
		regs[instr.A] = value.NewInt(regs[instr.B].Int << uint(regs[instr.C].Int))
	case lir.OpShr:
		regs[instr.A] = value.NewInt(regs[instr.B].Int >> uint(regs[instr.C].Int))

	case lir.OpEq:
		regs[instr.A] = value.NewBool(regs[instr.B].Equal(regs[instr.C]))
	case lir.OpNotEq:
		regs[instr.A] = value.NewBool(!regs[instr.B].Equal(regs[instr.C]))
	case lir.OpLt, lir.OpLtEq, lir.OpGt, lir.OpGtEq:
		return vm.compareOp(frame, regs, instr)
	case lir.OpCmp3:
		r, err := compare3(frame, regs[instr.B], regs[instr.C])
		if err != nil {
			return 0, err
		}

		regs[instr.A] = r

	case lir.OpConcat:
		l, r := regs[instr.B], regs[instr.C]
		if l.Kind != value.KindString || r.Kind != value.KindString {
			return 0, raise(frame, TypeCastFailure, "Concat requires two strings")
		}

		regs[instr.A] = value.NewString(l.AsString() + r.AsString())
	case lir.OpInterpolate:
		regs[instr.A] = value.NewString(displayFor(regs[instr.B]) + displayFor(regs[instr.C]))

	case lir.OpNewList:
		v := value.NewList(windowCopy(regs, instr.B, instr.C))
		v.Shared = vm.heap.NewHeader()
		regs[instr.A] = v
	case lir.OpNewTuple:
		// Tuples are fixed-arity and never indexed-assigned; no header
		// needed since they're never mutated in place.
		regs[instr.A] = value.NewTuple(windowCopy(regs, instr.B, instr.C))
	case lir.OpNewSet:
		elems := windowCopy(regs, instr.B, instr.C)
		set := make(map[string]value.Value, len(elems))

		for _, e := range elems {
			set[e.AsString()] = e
		}

		v := value.NewSet(set)
		v.Shared = vm.heap.NewHeader()
		regs[instr.A] = v
	case lir.OpNewMap:
		v := value.NewMap(make(map[string]value.Value))
		v.Shared = vm.heap.NewHeader()
		regs[instr.A] = v
	case lir.OpNewRecord:
		v := value.NewRecord(displayFor(regs[instr.B]), make(map[string]value.Value))
		v.Shared = vm.heap.NewHeader()
		regs[instr.A] = v

	case lir.OpIndex:
		return vm.indexGet(frame, regs, instr)
	case lir.OpIndexSet:
		return vm.indexSet(frame, regs, instr)
	case lir.OpSlice:
		return vm.sliceOp(frame, regs, instr)
	case lir.OpLen:
		n, err := lengthOf(frame, regs[instr.B])
		if err != nil {
			return 0, err
		}

		regs[instr.A] = value.NewInt(n)
	case lir.OpIn:
		regs[instr.A] = value.NewBool(membershipOf(regs[instr.C], regs[instr.B]))

	case lir.OpCall:
		return vm.call(t, frame, regs, instr, false)
	case lir.OpTailCall:
		return vm.call(t, frame, regs, instr, true)
	case lir.OpReturn:
		result := regs[instr.A]
		if !vm.popReturn(t, result) {
			t.Result = result
			return StatusDone, nil
		}
	case lir.OpHalt:
		t.Result = regs[instr.A]
		return StatusDone, nil

	case lir.OpJump:
		frame.IP = instr.A
	case lir.OpJumpIfTrue:
		if regs[instr.A].IsTruthy() {
			frame.IP = instr.B
		}
	case lir.OpJumpIfFalse:
		if !regs[instr.A].IsTruthy() {
			frame.IP = instr.B
		}

	case lir.OpUnionTag:
		regs[instr.A] = value.NewString(regs[instr.B].Union.Tag)
	case lir.OpUnionUnbox:
		regs[instr.A] = regs[instr.B].Union.Payload
	case lir.OpIsVariant:
		regs[instr.A] = value.NewBool(regs[instr.B].Kind == value.KindUnion && regs[instr.B].Union.Tag == displayFor(regs[instr.C]))
	case lir.OpMakeUnion:
		regs[instr.A] = value.NewUnion(displayFor(regs[instr.B]), regs[instr.C])

	case lir.OpEffectPerform:
		return vm.performEffect(t, frame, regs, instr)
	case lir.OpHandlerPush:
		t.Handlers = append(t.Handlers, handlerEntry{
			effects: []string{displayFor(regs[instr.A])},
			cell:    displayFor(regs[instr.B]),
			depth:   len(t.Stack),
		})
	case lir.OpHandlerPop:
		if len(t.Handlers) > 0 {
			t.Handlers = t.Handlers[:len(t.Handlers)-1]
		}

	case lir.OpMakeClosure:
		v := value.NewClosure(displayFor(regs[instr.B]), make(map[string]value.Value))
		v.Shared = vm.heap.NewHeader()
		regs[instr.A] = v
	case lir.OpCaptureLoad:
		name := displayFor(regs[instr.B])
		if v, ok := frame.Captures[name]; ok {
			regs[instr.A] = v
		} else {
			regs[instr.A] = value.Null
		}
	case lir.OpCaptureStore:
		clo := regs[instr.A]
		if clo.Kind == value.KindClosure {
			captured := regs[instr.C]
			retainIfHeap(captured)
			clo.Closure.Captures[displayFor(regs[instr.B])] = captured
		}

	case lir.OpTryUnwrap:
		return vm.tryUnwrap(t, frame, regs, instr)

	case lir.OpCaptureContinuation:
		regs[instr.A] = vm.captureContinuation(t)
	case lir.OpResumeContinuation:
		return vm.resumeContinuation(t, regs, instr)
	default:
		return 0, raise(frame, TypeCastFailure, "unhandled opcode")
	}

	return StatusRunning, nil
}

func displayFor(v value.Value) string {
	if v.Kind == value.KindString {
		return v.AsString()
	}

	return v.DisplayPretty()
}

func windowCopy(regs []value.Value, first, count int64) []value.Value {
	if count == 0 {
		return nil
	}

	out := make([]value.Value, count)
	copy(out, regs[first:first+count])

	return out
}

func (vm *VM) binArith(frame *Frame, regs []value.Value, instr lir.Instruction, op byte) (Status, *Error) {
	l, r := regs[instr.B], regs[instr.C]

	if op == opAdd && l.Kind == value.KindString && r.Kind == value.KindString {
		regs[instr.A] = value.NewString(l.AsString() + r.AsString())
		return StatusRunning, nil
	}

	result, err := vm.numericOp(frame, op, l, r)
	if err != nil {
		return 0, err
	}

	regs[instr.A] = result

	return StatusRunning, nil
}

func (vm *VM) unaryNeg(frame *Frame, regs []value.Value, instr lir.Instruction) (Status, *Error) {
	v := regs[instr.B]

	switch v.Kind {
	case value.KindInt:
		if v.Int == -9223372036854775808 {
			return 0, raise(frame, ArithmeticOverflow, "negation of Int minimum overflows")
		}

		regs[instr.A] = value.NewInt(-v.Int)
	case value.KindFloat:
		regs[instr.A] = value.NewFloat(-v.Float)
	default:
		return 0, raise(frame, TypeCastFailure, "Neg requires a number")
	}

	return StatusRunning, nil
}

func (vm *VM) compareOp(frame *Frame, regs []value.Value, instr lir.Instruction) (Status, *Error) {
	less, err := numericLess(frame, regs[instr.B], regs[instr.C])
	if err != nil {
		return 0, err
	}

	eq := regs[instr.B].Equal(regs[instr.C])

	var result bool

	switch instr.Op {
	case lir.OpLt:
		result = less
	case lir.OpLtEq:
		result = less || eq
	case lir.OpGt:
		result = !less && !eq
	case lir.OpGtEq:
		result = !less || eq
	}

	regs[instr.A] = value.NewBool(result)

	return StatusRunning, nil
}
