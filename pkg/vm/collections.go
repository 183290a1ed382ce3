package vm

import (
	"github.com/lumen-lang/lumen/pkg/lir"
	"github.com/lumen-lang/lumen/pkg/value"
)

func (vm *VM) indexGet(frame *Frame, regs []value.Value, instr lir.Instruction) (Status, *Error) {
	recv, idx := regs[instr.B], regs[instr.C]

	switch recv.Kind {
	case value.KindList, value.KindTuple:
		elems := recv.List
		if recv.Kind == value.KindTuple {
			elems = recv.Tuple
		}

		i, ok := idx.AsInt()
		if !ok || i < 0 || i >= int64(len(elems)) {
			return 0, raise(frame, IndexOutOfBounds, "index out of bounds")
		}

		regs[instr.A] = elems[i]
	case value.KindMap:
		v, ok := recv.Map[displayFor(idx)]
		if !ok {
			regs[instr.A] = value.Null
		} else {
			regs[instr.A] = v
		}
	case value.KindRecord:
		v, ok := recv.Record.Fields[displayFor(idx)]
		if !ok {
			regs[instr.A] = value.Null
		} else {
			regs[instr.A] = v
		}
	case value.KindString:
		i, ok := idx.AsInt()
		s := recv.AsString()

		if !ok || i < 0 || i >= int64(len(s)) {
			return 0, raise(frame, IndexOutOfBounds, "string index out of bounds")
		}

		regs[instr.A] = value.NewString(string(s[i]))
	case value.KindNull:
		return 0, raise(frame, NullDereference, "index into null")
	default:
		return 0, raise(frame, TypeCastFailure, "value is not indexable")
	}

	return StatusRunning, nil
}

// indexSet mutates the collection held in regs[A] in place when this
// register is its sole owner, or clones it first when another register or
// frame shares the same header (spec.md §5 "exclusive mutation requires
// the 'sole owner' check (refcount == 1) — otherwise clone"). Either way
// the (possibly reallocated) result is written back so growth-by-append or
// a fresh clone is visible through regs[A].
func (vm *VM) indexSet(frame *Frame, regs []value.Value, instr lir.Instruction) (Status, *Error) {
	recv, key, val := regs[instr.A], regs[instr.B], regs[instr.C]

	if recv.Shared != nil && !recv.Shared.SoleOwner() {
		recv = vm.cloneShared(recv)
	}

	switch recv.Kind {
	case value.KindList:
		if i, ok := key.AsInt(); ok && i >= 0 && i < int64(len(recv.List)) {
			recv.List[i] = val
			regs[instr.A] = recv

			return StatusRunning, nil
		}

		recv.List = append(recv.List, val)
		regs[instr.A] = recv
	case value.KindMap:
		recv.Map[displayFor(key)] = val
		regs[instr.A] = recv
	case value.KindRecord:
		recv.Record.Fields[displayFor(key)] = val
		regs[instr.A] = recv
	default:
		return 0, raise(frame, TypeCastFailure, "value does not support indexed assignment")
	}

	return StatusRunning, nil
}

// cloneShared deep-copies a shared List/Map/Record's backing store under a
// fresh header, releasing this register's claim on the old one (one owner
// fewer there, one new owner — this register alone — on the copy).
func (vm *VM) cloneShared(v value.Value) value.Value {
	switch v.Kind {
	case value.KindList:
		v.List = append([]value.Value(nil), v.List...)
	case value.KindMap:
		fresh := make(map[string]value.Value, len(v.Map))
		for k, e := range v.Map {
			fresh[k] = e
		}

		v.Map = fresh
	case value.KindRecord:
		fresh := make(map[string]value.Value, len(v.Record.Fields))
		for k, e := range v.Record.Fields {
			fresh[k] = e
		}

		v.Record.Fields = fresh
	}

	v.Shared.Release()
	v.Shared = vm.heap.NewHeader()

	return v
}

// sliceOp implements `list[lo:hi]`: C packs the bounds as lo<<32|hi, with
// hi == -1 (all bits set in the low word) meaning "to the end".
func (vm *VM) sliceOp(frame *Frame, regs []value.Value, instr lir.Instruction) (Status, *Error) {
	recv := regs[instr.B]
	if recv.Kind != value.KindList {
		return 0, raise(frame, TypeCastFailure, "Slice requires a List")
	}

	lo := instr.C >> 32
	hi := instr.C & 0xffffffff

	if hi == 0xffffffff {
		hi = int64(len(recv.List))
	}

	if lo < 0 || hi > int64(len(recv.List)) || lo > hi {
		return 0, raise(frame, IndexOutOfBounds, "slice bounds out of range")
	}

	regs[instr.A] = value.NewList(append([]value.Value(nil), recv.List[lo:hi]...))

	return StatusRunning, nil
}

func lengthOf(frame *Frame, v value.Value) (int64, *Error) {
	switch v.Kind {
	case value.KindList:
		return int64(len(v.List)), nil
	case value.KindTuple:
		return int64(len(v.Tuple)), nil
	case value.KindMap:
		return int64(len(v.Map)), nil
	case value.KindSet:
		return int64(len(v.Set)), nil
	case value.KindString:
		return int64(len(v.AsString())), nil
	case value.KindBytes:
		return int64(len(v.Bytes)), nil
	default:
		return 0, raise(frame, TypeCastFailure, "value has no length")
	}
}

func membershipOf(haystack, needle value.Value) bool {
	switch haystack.Kind {
	case value.KindList:
		for _, e := range haystack.List {
			if e.Equal(needle) {
				return true
			}
		}
	case value.KindSet:
		_, ok := haystack.Set[needle.AsString()]
		return ok
	case value.KindMap:
		_, ok := haystack.Map[needle.AsString()]
		return ok
	case value.KindString:
		return len(needle.AsString()) > 0 && containsSubstring(haystack.AsString(), needle.AsString())
	}

	return false
}

func containsSubstring(haystack, needle string) bool {
	if len(needle) > len(haystack) {
		return false
	}

	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}

	return false
}
