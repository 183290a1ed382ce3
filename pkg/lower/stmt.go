package lower

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lir"
	"github.com/lumen-lang/lumen/pkg/value"
)

func (lw *cellLowerer) lowerBlock(stmts []ast.Stmt) {
	for _, s := range stmts {
		lw.lowerStmt(s)
	}
}

func (lw *cellLowerer) lowerStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.LetStmt:
		dest := lw.regs.bind(st.Name)
		lw.lowerExprInto(st.Value, dest)
	case *ast.AssignStmt:
		lw.lowerAssign(st)
	case *ast.ExprStmt:
		lw.lowerExpr(st.Expr)
	case *ast.ReturnStmt:
		if call, ok := st.Value.(*ast.CallExpr); ok {
			lw.lowerCall(call, lw.regs.alloc(), true)
			break
		}
		var reg int64
		if st.Value != nil {
			reg = lw.lowerExpr(st.Value)
		} else {
			reg = lw.regs.alloc()
			lw.emit(lir.Instruction{Op: lir.OpLoadNull, A: reg})
		}
		lw.emit(lir.Instruction{Op: lir.OpReturn, A: reg})
	case *ast.IfStmt:
		lw.lowerIfStmt(st)
	case *ast.WhileStmt:
		lw.lowerWhileStmt(st)
	case *ast.ForStmt:
		lw.lowerForStmt(st)
	case *ast.MatchStmt:
		lw.lowerMatchStmt(st)
	}
}

func (lw *cellLowerer) lowerAssign(st *ast.AssignStmt) {
	switch target := st.Target.(type) {
	case *ast.Ident:
		if dest, ok := lw.regs.resolve(target.Name); ok {
			lw.lowerExprInto(st.Value, dest)
			return
		}
		// Undeclared target: bind fresh (resolver would already have
		// flagged this; lowering stays total).
		dest := lw.regs.bind(target.Name)
		lw.lowerExprInto(st.Value, dest)
	case *ast.IndexExpr:
		recv := lw.lowerExpr(target.Receiver)
		idx := lw.lowerExpr(target.Index)
		val := lw.lowerExpr(st.Value)
		lw.emit(lir.Instruction{Op: lir.OpIndexSet, A: recv, B: idx, C: val})
	case *ast.FieldExpr:
		recv := lw.lowerExpr(target.Receiver)
		fieldReg := lw.regs.alloc()
		lw.loadConst(value.NewString(target.Field), fieldReg)
		val := lw.lowerExpr(st.Value)
		lw.emit(lir.Instruction{Op: lir.OpIndexSet, A: recv, B: fieldReg, C: val})
	}
}

func (lw *cellLowerer) lowerIfStmt(st *ast.IfStmt) {
	cond := lw.lowerExpr(st.Cond)
	jumpToElse := lw.emit(lir.Instruction{Op: lir.OpJumpIfFalse, A: cond})

	lw.lowerBlock(st.Then)

	jumpToEnd := lw.emit(lir.Instruction{Op: lir.OpJump})
	lw.patchTo(jumpToElse)

	lw.lowerBlock(st.Else)
	lw.patchTo(jumpToEnd)
}

func (lw *cellLowerer) lowerWhileStmt(st *ast.WhileStmt) {
	loopStart := lw.here()
	cond := lw.lowerExpr(st.Cond)
	jumpToEnd := lw.emit(lir.Instruction{Op: lir.OpJumpIfFalse, A: cond})

	lw.lowerBlock(st.Body)

	backEdge := lw.emit(lir.Instruction{Op: lir.OpJump})
	lw.instrs[backEdge].A = loopStart
	lw.patchTo(jumpToEnd)
}

// lowerForStmt lowers `for pattern in iter` and its body into an index-driven
// loop over the iterable's elements (spec.md §4.8 "comprehensions lower to
// loops over iterator opcodes"; for-statements use the same Len/Index
// primitives since no separate iterator-protocol opcode is specified).
func (lw *cellLowerer) lowerForStmt(st *ast.ForStmt) {
	iter := lw.lowerExpr(st.Iter)

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

	bound := lw.bindPattern(st.Pattern, elem)

	lw.lowerBlock(st.Body)
	lw.regs.unbind(bound)

	one := lw.regs.alloc()
	lw.loadConst(value.NewInt(1), one)
	lw.emit(lir.Instruction{Op: lir.OpAdd, A: idx, B: idx, C: one})

	backEdge := lw.emit(lir.Instruction{Op: lir.OpJump})
	lw.instrs[backEdge].A = loopStart
	lw.patchTo(jumpToEnd)
}

// bindPattern destructures a pattern against a value held in srcReg,
// binding every name it introduces, and returns the count of names bound
// (for a matching regs.unbind call once the pattern's scope ends).
func (lw *cellLowerer) bindPattern(pat ast.Pattern, srcReg int64) int {
	switch p := pat.(type) {
	case *ast.BindPattern:
		dest := lw.regs.bind(p.Name)
		lw.emit(lir.Instruction{Op: lir.OpMove, A: dest, B: srcReg})
		return 1
	case *ast.WildcardPattern:
		return 0
	case *ast.VariantPattern:
		if p.Payload == nil {
			return 0
		}
		payload := lw.regs.alloc()
		lw.emit(lir.Instruction{Op: lir.OpUnionUnbox, A: payload, B: srcReg})
		return lw.bindPattern(p.Payload, payload)
	case *ast.TuplePattern:
		bound := 0
		for i, el := range p.Elems {
			idxReg := lw.regs.alloc()
			lw.loadConst(value.NewInt(int64(i)), idxReg)
			elemReg := lw.regs.alloc()
			lw.emit(lir.Instruction{Op: lir.OpIndex, A: elemReg, B: srcReg, C: idxReg})
			bound += lw.bindPattern(el, elemReg)
		}
		return bound
	case *ast.RecordPattern:
		bound := 0
		for _, f := range p.Fields {
			nameReg := lw.regs.alloc()
			lw.loadConst(value.NewString(f.Name), nameReg)
			fieldReg := lw.regs.alloc()
			lw.emit(lir.Instruction{Op: lir.OpIndex, A: fieldReg, B: srcReg, C: nameReg})
			bound += lw.bindPattern(f.Pattern, fieldReg)
		}
		return bound
	default:
		return 0
	}
}

func (lw *cellLowerer) lowerMatchStmt(st *ast.MatchStmt) {
	scrutinee := lw.lowerExpr(st.Scrutinee)

	var endJumps []int

	for i, arm := range st.Arms {
		isLast := i == len(st.Arms)-1
		matched, bound := lw.lowerArmTest(arm.Pattern, scrutinee)

		var skipArm int
		haveSkip := false
		if matched >= 0 {
			skipArm = lw.emit(lir.Instruction{Op: lir.OpJumpIfFalse, A: matched})
			haveSkip = true
		}

		if arm.Guard != nil {
			g := lw.lowerExpr(arm.Guard)
			guardSkip := lw.emit(lir.Instruction{Op: lir.OpJumpIfFalse, A: g})
			lw.lowerBlock(arm.Body)
			lw.regs.unbind(bound)

			if !isLast {
				endJumps = append(endJumps, lw.emit(lir.Instruction{Op: lir.OpJump}))
			}

			lw.patchTo(guardSkip)
		} else {
			lw.lowerBlock(arm.Body)
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

// lowerArmTest emits the equality/variant test for pat against a value held
// in scrutinee, returning the register holding the boolean test result (or
// -1 if the pattern always matches, e.g. wildcard/bind), plus the pattern's
// binding count so the caller can unbind it after the arm's body.
func (lw *cellLowerer) lowerArmTest(pat ast.Pattern, scrutinee int64) (testReg int64, bound int) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return -1, 0
	case *ast.BindPattern:
		dest := lw.regs.bind(p.Name)
		lw.emit(lir.Instruction{Op: lir.OpMove, A: dest, B: scrutinee})
		return -1, 1
	case *ast.VariantPattern:
		tagReg := lw.regs.alloc()
		lw.loadConst(value.NewString(p.Variant), tagReg)
		result := lw.regs.alloc()
		lw.emit(lir.Instruction{Op: lir.OpIsVariant, A: result, B: scrutinee, C: tagReg})
		b := 0
		if p.Payload != nil {
			payload := lw.regs.alloc()
			lw.emit(lir.Instruction{Op: lir.OpUnionUnbox, A: payload, B: scrutinee})
			b = lw.bindPattern(p.Payload, payload)
		}
		return result, b
	case *ast.LiteralPattern:
		litReg := lw.lowerExpr(p.Value)
		result := lw.regs.alloc()
		lw.emit(lir.Instruction{Op: lir.OpEq, A: result, B: scrutinee, C: litReg})
		return result, 0
	default:
		return -1, lw.bindPattern(pat, scrutinee)
	}
}
