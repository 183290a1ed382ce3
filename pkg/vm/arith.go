package vm

import (
	"math"

	"github.com/lumen-lang/lumen/pkg/value"
)

// checkedAddInt reports a+b and whether it overflowed int64 (spec.md §4.9
// "default integer ops are checked; overflow raises a runtime error").
func checkedAddInt(a, b int64) (int64, bool) {
	r := a + b
	overflow := (a > 0 && b > 0 && r < 0) || (a < 0 && b < 0 && r > 0)

	return r, overflow
}

func checkedSubInt(a, b int64) (int64, bool) {
	r := a - b
	overflow := (b < 0 && r < a) || (b > 0 && r > a)

	return r, overflow
}

func checkedMulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}

	r := a * b

	return r, r/a != b
}

func checkedPowInt(base, exp int64) (int64, bool) {
	if exp < 0 {
		return 0, true // negative integer exponent has no Int result; caller widens to Float
	}

	result := int64(1)

	for i := int64(0); i < exp; i++ {
		var overflow bool

		result, overflow = checkedMulInt(result, base)
		if overflow {
			return 0, true
		}
	}

	return result, false
}

// numericOp applies a binary arithmetic opcode to two Int/Float operands,
// widening to Float on a mixed pair (spec.md §4.6 "mixed Int+Float widens to
// Float"). String operands are handled by the caller (Add is also string
// concatenation).
func (vm *VM) numericOp(frame *Frame, op byte, l, r value.Value) (value.Value, *Error) {
	if l.Kind == value.KindInt && r.Kind == value.KindInt {
		return vm.intOp(frame, op, l.Int, r.Int)
	}

	lf, ok1 := l.AsFloat()
	rf, ok2 := r.AsFloat()

	if !ok1 || !ok2 {
		return value.Null, raise(frame, TypeCastFailure, "arithmetic operand is not numeric")
	}

	return vm.floatOp(frame, op, lf, rf)
}

const (
	opAdd byte = iota
	opSub
	opMul
	opDiv
	opFloorDiv
	opMod
	opPow
)

func (vm *VM) intOp(frame *Frame, op byte, a, b int64) (value.Value, *Error) {
	switch op {
	case opAdd:
		r, overflow := checkedAddInt(a, b)
		if overflow {
			return value.Null, raise(frame, ArithmeticOverflow, "integer addition overflow")
		}

		return value.NewInt(r), nil
	case opSub:
		r, overflow := checkedSubInt(a, b)
		if overflow {
			return value.Null, raise(frame, ArithmeticOverflow, "integer subtraction overflow")
		}

		return value.NewInt(r), nil
	case opMul:
		r, overflow := checkedMulInt(a, b)
		if overflow {
			return value.Null, raise(frame, ArithmeticOverflow, "integer multiplication overflow")
		}

		return value.NewInt(r), nil
	case opDiv:
		if b == 0 {
			return value.Null, raise(frame, DivisionByZero, "integer division by zero")
		}

		return value.NewInt(a / b), nil
	case opFloorDiv:
		if b == 0 {
			return value.Null, raise(frame, DivisionByZero, "integer division by zero")
		}

		q := a / b
		if (a%b != 0) && ((a < 0) != (b < 0)) {
			q--
		}

		return value.NewInt(q), nil
	case opMod:
		if b == 0 {
			return value.Null, raise(frame, DivisionByZero, "integer modulo by zero")
		}

		m := a % b
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}

		return value.NewInt(m), nil
	case opPow:
		r, overflow := checkedPowInt(a, b)
		if overflow {
			if b < 0 {
				return value.NewFloat(math.Pow(float64(a), float64(b))), nil
			}

			return value.Null, raise(frame, ArithmeticOverflow, "integer exponentiation overflow")
		}

		return value.NewInt(r), nil
	default:
		return value.Null, raise(frame, TypeCastFailure, "unknown integer operator")
	}
}

func (vm *VM) floatOp(frame *Frame, op byte, a, b float64) (value.Value, *Error) {
	switch op {
	case opAdd:
		return value.NewFloat(a + b), nil
	case opSub:
		return value.NewFloat(a - b), nil
	case opMul:
		return value.NewFloat(a * b), nil
	case opDiv:
		if b == 0 {
			return value.Null, raise(frame, DivisionByZero, "float division by zero")
		}

		return value.NewFloat(a / b), nil
	case opFloorDiv:
		if b == 0 {
			return value.Null, raise(frame, DivisionByZero, "float division by zero")
		}

		return value.NewFloat(math.Floor(a / b)), nil
	case opMod:
		if b == 0 {
			return value.Null, raise(frame, DivisionByZero, "float modulo by zero")
		}

		return value.NewFloat(math.Mod(a, b)), nil
	case opPow:
		return value.NewFloat(math.Pow(a, b)), nil
	default:
		return value.Null, raise(frame, TypeCastFailure, "unknown float operator")
	}
}

// wrappingOp performs two's-complement wrapping arithmetic for the
// OpWrapAdd/OpWrapSub/OpWrapMul opcodes, the wrapping counterpart to the
// checked default. pkg/lower emits none of these opcodes, so `wrapping_*`
// calls in Lumen source are not mapped to them. Go's native int64
// arithmetic already wraps, so these are the checked ops minus the
// overflow check.
func wrappingOp(op byte, a, b int64) value.Value {
	switch op {
	case opAdd:
		return value.NewInt(a + b)
	case opSub:
		return value.NewInt(a - b)
	case opMul:
		return value.NewInt(a * b)
	default:
		return value.Null
	}
}

func compare3(frame *Frame, l, r value.Value) (value.Value, *Error) {
	if l.Kind == value.KindString && r.Kind == value.KindString {
		a, b := l.AsString(), r.AsString()

		switch {
		case a < b:
			return value.NewInt(-1), nil
		case a > b:
			return value.NewInt(1), nil
		default:
			return value.NewInt(0), nil
		}
	}

	lf, ok1 := l.AsFloat()
	rf, ok2 := r.AsFloat()

	if !ok1 || !ok2 {
		return value.Null, raise(frame, TypeCastFailure, "spaceship operand is not comparable")
	}

	switch {
	case lf < rf:
		return value.NewInt(-1), nil
	case lf > rf:
		return value.NewInt(1), nil
	default:
		return value.NewInt(0), nil
	}
}

func numericLess(frame *Frame, l, r value.Value) (bool, *Error) {
	if l.Kind == value.KindString && r.Kind == value.KindString {
		return l.AsString() < r.AsString(), nil
	}

	lf, ok1 := l.AsFloat()
	rf, ok2 := r.AsFloat()

	if !ok1 || !ok2 {
		return false, raise(frame, TypeCastFailure, "comparison operand is not comparable")
	}

	return lf < rf, nil
}
