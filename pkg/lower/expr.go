package lower

import (
	"fmt"

	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lir"
	"github.com/lumen-lang/lumen/pkg/value"
)

// lowerExpr lowers e, returning the register holding its value. A bound
// identifier returns its existing register directly (no copy); every other
// expression allocates a fresh temporary.
func (lw *cellLowerer) lowerExpr(e ast.Expr) int64 {
	if id, ok := e.(*ast.Ident); ok {
		if reg, ok := lw.regs.resolve(id.Name); ok {
			return reg
		}
	}

	dest := lw.regs.alloc()
	lw.lowerExprInto(e, dest)

	return dest
}

// lowerExprInto lowers e, placing its result in dest.
func (lw *cellLowerer) lowerExprInto(e ast.Expr, dest int64) {
	switch ex := e.(type) {
	case *ast.IntLit:
		lw.loadConst(value.NewInt(ex.Value), dest)
	case *ast.FloatLit:
		lw.loadConst(value.NewFloat(ex.Value), dest)
	case *ast.StringLit:
		lw.loadConst(value.NewString(ex.Value), dest)
	case *ast.BoolLit:
		b := int64(0)
		if ex.Value {
			b = 1
		}
		lw.emit(lir.Instruction{Op: lir.OpLoadBool, A: dest, B: b})
	case *ast.NullLit:
		lw.emit(lir.Instruction{Op: lir.OpLoadNull, A: dest})
	case *ast.BytesLit:
		lw.loadConst(value.NewBytes(ex.Value), dest)
	case *ast.Ident:
		if reg, ok := lw.regs.resolve(ex.Name); ok {
			if reg != dest {
				lw.emit(lir.Instruction{Op: lir.OpMove, A: dest, B: reg})
			}
			return
		}
		// Unresolved identifier (e.g. a cell reference used as a value):
		// treat the name as an interned-string placeholder rather than
		// panicking, so lowering stays total over malformed input.
		lw.loadConst(value.NewString(ex.Name), dest)
	case *ast.InterpStringLit:
		lw.lowerInterp(ex, dest)
	case *ast.ListLit:
		lw.lowerCollectionLit(ex.Elems, lir.OpNewList, dest)
	case *ast.SetLit:
		lw.lowerCollectionLit(ex.Elems, lir.OpNewSet, dest)
	case *ast.TupleLit:
		lw.lowerCollectionLit(ex.Elems, lir.OpNewTuple, dest)
	case *ast.MapLit:
		lw.lowerMapLit(ex, dest)
	case *ast.RecordLit:
		lw.lowerRecordLit(ex, dest)
	case *ast.Comprehension:
		lw.lowerComprehension(ex, dest)
	case *ast.BinaryExpr:
		lw.lowerBinary(ex, dest)
	case *ast.UnaryExpr:
		lw.lowerUnary(ex, dest)
	case *ast.CallExpr:
		lw.lowerCall(ex, dest, false)
	case *ast.IndexExpr:
		recv := lw.lowerExpr(ex.Receiver)
		idx := lw.lowerExpr(ex.Index)
		lw.emit(lir.Instruction{Op: lir.OpIndex, A: dest, B: recv, C: idx})
	case *ast.FieldExpr:
		recv := lw.lowerExpr(ex.Receiver)
		fieldReg := lw.regs.alloc()
		lw.loadConst(value.NewString(ex.Field), fieldReg)
		lw.emit(lir.Instruction{Op: lir.OpIndex, A: dest, B: recv, C: fieldReg})
	case *ast.TryPropagateExpr:
		inner := lw.lowerExpr(ex.Operand)
		lw.emit(lir.Instruction{Op: lir.OpTryUnwrap, A: dest, B: inner})
	case *ast.TryElseExpr:
		lw.lowerTryElse(ex, dest)
	case *ast.NullCoalesceExpr:
		lw.lowerNullCoalesce(ex, dest)
	case *ast.PipelineExpr:
		lw.lowerExprInto(ex.Desugared, dest)
	case *ast.IfExpr:
		lw.lowerIfExpr(ex, dest)
	case *ast.MatchExpr:
		lw.lowerMatchExpr(ex, dest)
	case *ast.LambdaExpr:
		lw.lowerLambda(ex, dest)
	default:
		lw.emit(lir.Instruction{Op: lir.OpLoadNull, A: dest})
	}
}

func (lw *cellLowerer) lowerInterp(ex *ast.InterpStringLit, dest int64) {
	regs := make([]int64, len(ex.Parts))

	for i, part := range ex.Parts {
		if part.Expr != nil {
			regs[i] = lw.lowerExpr(part.Expr)
		} else {
			reg := lw.regs.alloc()
			lw.loadConst(value.NewString(part.Literal), reg)
			regs[i] = reg
		}
	}

	if len(regs) == 0 {
		lw.loadConst(value.NewString(""), dest)
		return
	}

	acc := regs[0]

	for i := 1; i < len(regs); i++ {
		next := dest
		if i < len(regs)-1 {
			next = lw.regs.alloc()
		}
		lw.emit(lir.Instruction{Op: lir.OpInterpolate, A: next, B: acc, C: regs[i]})
		acc = next
	}

	if len(regs) == 1 && acc != dest {
		lw.emit(lir.Instruction{Op: lir.OpMove, A: dest, B: acc})
	}
}

func (lw *cellLowerer) lowerCollectionLit(elems []ast.Expr, op lir.Opcode, dest int64) {
	regs := make([]int64, len(elems))
	for i, e := range elems {
		regs[i] = lw.lowerExpr(e)
	}

	// Collection-builder opcodes take the element count and the first
	// element's register (B, C); the VM reads the contiguous run of
	// registers B..B+count-1, matching the register-window convention
	// go-corset's machine.Frame uses for variadic call arguments. Elements
	// not already in consecutive registers are first copied into a fresh
	// window.
	if len(regs) == 0 {
		lw.emit(lir.Instruction{Op: op, A: dest, B: 0, C: 0})
		return
	}

	first := regs[0]
	for i, r := range regs {
		if r != regs[0]+int64(i) {
			first = lw.regs.alloc()
			lw.emit(lir.Instruction{Op: lir.OpMove, A: first, B: regs[0]})
			for _, rest := range regs[1:] {
				lw.emit(lir.Instruction{Op: lir.OpMove, A: lw.regs.alloc(), B: rest})
			}
			break
		}
	}

	lw.emit(lir.Instruction{Op: op, A: dest, B: first, C: int64(len(regs))})
}

func (lw *cellLowerer) lowerMapLit(ex *ast.MapLit, dest int64) {
	lw.emit(lir.Instruction{Op: lir.OpNewMap, A: dest, B: 0, C: int64(len(ex.Entries))})

	for _, entry := range ex.Entries {
		k := lw.lowerExpr(entry.Key)
		v := lw.lowerExpr(entry.Value)
		lw.emit(lir.Instruction{Op: lir.OpIndexSet, A: dest, B: k, C: v})
	}
}

func (lw *cellLowerer) lowerRecordLit(ex *ast.RecordLit, dest int64) {
	nameReg := lw.regs.alloc()
	lw.loadConst(value.NewString(ex.Name), nameReg)
	lw.emit(lir.Instruction{Op: lir.OpNewRecord, A: dest, B: nameReg, C: int64(len(ex.Fields))})

	for _, f := range ex.Fields {
		fieldNameReg := lw.regs.alloc()
		if id, ok := f.Key.(*ast.Ident); ok {
			lw.loadConst(value.NewString(id.Name), fieldNameReg)
		}
		v := lw.lowerExpr(f.Value)
		lw.emit(lir.Instruction{Op: lir.OpIndexSet, A: dest, B: fieldNameReg, C: v})
	}
}

// lowerComprehension lowers `[result for pattern in iter if cond]` to a loop
// building up the result collection (spec.md §4.8 "comprehensions lower to
// loops over iterator opcodes").
func (lw *cellLowerer) lowerComprehension(ex *ast.Comprehension, dest int64) {
	op := lir.OpNewList
	if ex.Kind == ast.ComprehensionSet {
		op = lir.OpNewSet
	} else if ex.Kind == ast.ComprehensionMap {
		op = lir.OpNewMap
	}

	lw.emit(lir.Instruction{Op: op, A: dest, B: 0, C: 0})

	iter := lw.lowerExpr(ex.Iter)

	length := lw.regs.alloc()
	lw.emit(lir.Instruction{Op: lir.OpLen, A: length, B: iter})

	idx := lw.regs.alloc()
	lw.loadConst(value.NewInt(0), idx)

	loopStart := lw.here()
	cond := lw.regs.alloc()
	lw.emit(lir.Instruction{Op: lir.OpLt, A: cond, B: idx, C: length})
	jumpToEnd := lw.emit(lir.Instruction{Op: lir.OpJumpIfFalse, A: cond})

	elem := lw.regs.alloc()
	lw.emit(lir.Instruction{Op: lir.OpIndex, A: elem, B: iter, C: idx})
	bound := lw.bindPattern(ex.Pattern, elem)

	var skip int
	haveSkip := false

	if ex.Cond != nil {
		c := lw.lowerExpr(ex.Cond)
		skip = lw.emit(lir.Instruction{Op: lir.OpJumpIfFalse, A: c})
		haveSkip = true
	}

	if ex.Kind == ast.ComprehensionMap {
		k := lw.lowerExpr(ex.Key)
		v := lw.lowerExpr(ex.Result)
		lw.emit(lir.Instruction{Op: lir.OpIndexSet, A: dest, B: k, C: v})
	} else {
		v := lw.lowerExpr(ex.Result)
		lw.emit(lir.Instruction{Op: lir.OpIndexSet, A: dest, B: length /* unused index slot */, C: v})
	}

	if haveSkip {
		lw.patchTo(skip)
	}

	lw.regs.unbind(bound)

	one := lw.regs.alloc()
	lw.loadConst(value.NewInt(1), one)
	lw.emit(lir.Instruction{Op: lir.OpAdd, A: idx, B: idx, C: one})

	backEdge := lw.emit(lir.Instruction{Op: lir.OpJump})
	lw.instrs[backEdge].A = loopStart
	lw.patchTo(jumpToEnd)
}

func (lw *cellLowerer) lowerBinary(ex *ast.BinaryExpr, dest int64) {
	switch ex.Op {
	case ast.OpOr:
		lw.lowerShortCircuit(ex, dest, true)
		return
	case ast.OpAnd:
		lw.lowerShortCircuit(ex, dest, false)
		return
	}

	l := lw.lowerExpr(ex.Left)
	r := lw.lowerExpr(ex.Right)

	op, ok := binOpcodes[ex.Op]
	if !ok {
		op = lir.OpEq
	}

	lw.emit(lir.Instruction{Op: op, A: dest, B: l, C: r})
}

var binOpcodes = map[ast.BinOp]lir.Opcode{
	ast.OpEq: lir.OpEq, ast.OpNotEq: lir.OpNotEq,
	ast.OpLt: lir.OpLt, ast.OpLtEq: lir.OpLtEq, ast.OpGt: lir.OpGt, ast.OpGtEq: lir.OpGtEq,
	ast.OpSpaceship: lir.OpCmp3, ast.OpIn: lir.OpIn,
	ast.OpBitOr: lir.OpBitOr, ast.OpBitXor: lir.OpBitXor, ast.OpBitAnd: lir.OpBitAnd,
	ast.OpShl: lir.OpShl, ast.OpShr: lir.OpShr,
	ast.OpAdd: lir.OpAdd, ast.OpSub: lir.OpSub, ast.OpMul: lir.OpMul,
	ast.OpDiv: lir.OpDiv, ast.OpFloorDiv: lir.OpFloorDiv, ast.OpMod: lir.OpMod, ast.OpPow: lir.OpPow,
}

// lowerShortCircuit lowers `or`/`and` with proper short-circuit evaluation:
// `a or b` skips evaluating b when a is true; `a and b` skips when a is
// false.
func (lw *cellLowerer) lowerShortCircuit(ex *ast.BinaryExpr, dest int64, isOr bool) {
	l := lw.lowerExpr(ex.Left)
	lw.emit(lir.Instruction{Op: lir.OpMove, A: dest, B: l})

	var skip int
	if isOr {
		skip = lw.emit(lir.Instruction{Op: lir.OpJumpIfTrue, A: dest})
	} else {
		skip = lw.emit(lir.Instruction{Op: lir.OpJumpIfFalse, A: dest})
	}

	r := lw.lowerExpr(ex.Right)
	lw.emit(lir.Instruction{Op: lir.OpMove, A: dest, B: r})
	lw.patchTo(skip)
}

func (lw *cellLowerer) lowerUnary(ex *ast.UnaryExpr, dest int64) {
	operand := lw.lowerExpr(ex.Operand)

	switch ex.Op {
	case ast.OpNeg:
		lw.emit(lir.Instruction{Op: lir.OpNeg, A: dest, B: operand})
	case ast.OpNot:
		lw.emit(lir.Instruction{Op: lir.OpNot, A: dest, B: operand})
	case ast.OpBitNot:
		lw.emit(lir.Instruction{Op: lir.OpBitNot, A: dest, B: operand})
	}
}

// lowerCall lowers a call expression. asTail requests a TailCall opcode
// instead of Call (spec.md §4.8 "Tail calls in return position emit a
// TailCall op"); lowerStmt's ReturnStmt handling invokes this path when the
// returned expression is itself a call. Arguments not already in
// consecutive registers are copied into a fresh window, since the VM reads
// them as one run starting at the packed first-argument register.
func (lw *cellLowerer) lowerCall(ex *ast.CallExpr, dest int64, asTail bool) {
	name, ok := ex.Callee.(*ast.Ident)

	calleeReg := lw.regs.alloc()
	if ok {
		lw.loadConst(value.NewString(name.Name), calleeReg)
	} else {
		calleeReg = lw.lowerExpr(ex.Callee)
	}

	argRegs := make([]int64, len(ex.Args))
	for i, a := range ex.Args {
		argRegs[i] = lw.lowerExpr(a)
	}

	first := calleeReg
	if len(argRegs) > 0 {
		first = argRegs[0]
		for i, r := range argRegs {
			if r != argRegs[0]+int64(i) {
				first = lw.regs.alloc()
				lw.emit(lir.Instruction{Op: lir.OpMove, A: first, B: argRegs[0]})
				for _, rest := range argRegs[1:] {
					lw.emit(lir.Instruction{Op: lir.OpMove, A: lw.regs.alloc(), B: rest})
				}
				break
			}
		}
	}

	op := lir.OpCall
	if asTail {
		op = lir.OpTailCall
	}

	lw.emit(lir.Instruction{Op: op, A: dest, B: calleeReg, C: first<<8 | int64(len(argRegs))})
}

func (lw *cellLowerer) lowerTryElse(ex *ast.TryElseExpr, dest int64) {
	operand := lw.lowerExpr(ex.Operand)
	errReg := lw.regs.bind(ex.ErrName)
	lw.emit(lir.Instruction{Op: lir.OpUnionUnbox, A: errReg, B: operand})

	ok := lw.regs.alloc()
	tagReg := lw.regs.alloc()
	lw.loadConst(value.NewString("Ok"), tagReg)
	lw.emit(lir.Instruction{Op: lir.OpIsVariant, A: ok, B: operand, C: tagReg})

	skip := lw.emit(lir.Instruction{Op: lir.OpJumpIfFalse, A: ok})
	lw.emit(lir.Instruction{Op: lir.OpMove, A: dest, B: errReg})
	jumpEnd := lw.emit(lir.Instruction{Op: lir.OpJump})
	lw.patchTo(skip)
	lw.lowerExprInto(ex.Fallback, dest)
	lw.patchTo(jumpEnd)

	lw.regs.unbind(1)
}

func (lw *cellLowerer) lowerNullCoalesce(ex *ast.NullCoalesceExpr, dest int64) {
	l := lw.lowerExpr(ex.Left)
	lw.emit(lir.Instruction{Op: lir.OpMove, A: dest, B: l})

	nullReg := lw.regs.alloc()
	lw.emit(lir.Instruction{Op: lir.OpLoadNull, A: nullReg})

	isNull := lw.regs.alloc()
	lw.emit(lir.Instruction{Op: lir.OpEq, A: isNull, B: dest, C: nullReg})

	skip := lw.emit(lir.Instruction{Op: lir.OpJumpIfFalse, A: isNull})
	lw.lowerExprInto(ex.Right, dest)
	lw.patchTo(skip)
}

func (lw *cellLowerer) lowerIfExpr(ex *ast.IfExpr, dest int64) {
	cond := lw.lowerExpr(ex.Cond)
	jumpToElse := lw.emit(lir.Instruction{Op: lir.OpJumpIfFalse, A: cond})

	lw.lowerExprInto(ex.Then, dest)
	jumpToEnd := lw.emit(lir.Instruction{Op: lir.OpJump})
	lw.patchTo(jumpToElse)

	if ex.Else != nil {
		lw.lowerExprInto(ex.Else, dest)
	} else {
		lw.emit(lir.Instruction{Op: lir.OpLoadNull, A: dest})
	}

	lw.patchTo(jumpToEnd)
}

func (lw *cellLowerer) lowerMatchExpr(ex *ast.MatchExpr, dest int64) {
	scrutinee := lw.lowerExpr(ex.Scrutinee)

	var endJumps []int

	for i, arm := range ex.Arms {
		isLast := i == len(ex.Arms)-1
		testReg, bound := lw.lowerArmTest(arm.Pattern, scrutinee)

		var skipArm int
		haveSkip := testReg >= 0

		if haveSkip {
			skipArm = lw.emit(lir.Instruction{Op: lir.OpJumpIfFalse, A: testReg})
		}

		if arm.Guard != nil {
			g := lw.lowerExpr(arm.Guard)
			guardSkip := lw.emit(lir.Instruction{Op: lir.OpJumpIfFalse, A: g})
			lw.lowerExprInto(arm.Body, dest)
			lw.regs.unbind(bound)

			if !isLast {
				endJumps = append(endJumps, lw.emit(lir.Instruction{Op: lir.OpJump}))
			}

			lw.patchTo(guardSkip)
		} else {
			lw.lowerExprInto(arm.Body, dest)
			lw.regs.unbind(bound)

			if !isLast {
				endJumps = append(endJumps, lw.emit(lir.Instruction{Op: lir.OpJump}))
			}
		}

		if haveSkip {
			lw.patchTo(skipArm)
		}
	}

	for _, j := range endJumps {
		lw.patchTo(j)
	}
}

// lowerLambda lowers `|params| body` to a MakeClosure plus one CaptureStore
// per free variable. The body is lowered into its own synthetic sibling
// cell (named "<enclosing>$lambda<n>") appended to lw.lambdas; that cell's
// prologue reads each capture back out of its frame via CaptureLoad
// (spec.md §4.9 "closures: MakeClosure, capture load/store").
func (lw *cellLowerer) lowerLambda(ex *ast.LambdaExpr, dest int64) {
	bound := map[string]bool{}
	for _, p := range ex.Params {
		bound[p.Name] = true
	}

	free := freeIdents(ex.Body, bound)

	lambdaName := fmt.Sprintf("%s$lambda%d", lw.name, len(*lw.lambdas))

	nlw := newCellLowerer(lambdaName, lw.typed, lw.lambdas)
	for _, p := range ex.Params {
		nlw.regs.bind(p.Name)
	}

	for _, capName := range free {
		capDest := nlw.regs.bind(capName)
		nameReg := nlw.regs.alloc()
		nlw.loadConst(value.NewString(capName), nameReg)
		nlw.emit(lir.Instruction{Op: lir.OpCaptureLoad, A: capDest, B: nameReg})
	}

	bodyReg := nlw.lowerExpr(ex.Body)
	nlw.emit(lir.Instruction{Op: lir.OpReturn, A: bodyReg})

	paramNamesList := make([]string, len(ex.Params))
	for i, p := range ex.Params {
		paramNamesList[i] = p.Name
	}

	nested, nestedErr := nlw.finish(lambdaName, paramNamesList, "")
	if nestedErr != nil {
		panic(nestedErr)
	}

	*lw.lambdas = append(*lw.lambdas, nested)

	nameReg := lw.regs.alloc()
	lw.loadConst(value.NewString(lambdaName), nameReg)
	lw.emit(lir.Instruction{Op: lir.OpMakeClosure, A: dest, B: nameReg, C: int64(len(free))})

	for _, capName := range free {
		srcReg := lw.lowerExpr(&ast.Ident{Name: capName, Span: ex.Span})
		capNameReg := lw.regs.alloc()
		lw.loadConst(value.NewString(capName), capNameReg)
		lw.emit(lir.Instruction{Op: lir.OpCaptureStore, A: dest, B: capNameReg, C: srcReg})
	}
}
