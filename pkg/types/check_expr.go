package types

import (
	"github.com/lumen-lang/lumen/pkg/ast"
)

// inferExpr infers e's type, recording it in c.res.Exprs, and reports any
// TypeError diagnostics found within e.
func (c *checker) inferExpr(e ast.Expr) Type {
	t := c.inferExprUncached(e)
	c.res.Exprs[e] = t

	return t
}

func (c *checker) inferExprUncached(e ast.Expr) Type {
	switch ex := e.(type) {
	case *ast.IntLit:
		return TInt
	case *ast.FloatLit:
		return TFloat
	case *ast.StringLit:
		return TString
	case *ast.InterpStringLit:
		for _, part := range ex.Parts {
			if part.Expr != nil {
				c.inferExpr(part.Expr)
			}
		}
		return TString
	case *ast.BoolLit:
		return TBool
	case *ast.NullLit:
		return TNull
	case *ast.BytesLit:
		return TBytes
	case *ast.Ident:
		return c.inferIdent(ex)
	case *ast.ListLit:
		return c.inferListLit(ex)
	case *ast.SetLit:
		elemT := TAny
		for i, el := range ex.Elems {
			t := c.inferExpr(el)
			if i == 0 {
				elemT = t
			}
		}
		return TSet(elemT)
	case *ast.TupleLit:
		elems := make([]Type, len(ex.Elems))
		for i, el := range ex.Elems {
			elems[i] = c.inferExpr(el)
		}
		return TTuple(elems...)
	case *ast.MapLit:
		keyT, valT := TAny, TAny
		for i, entry := range ex.Entries {
			k := c.inferExpr(entry.Key)
			v := c.inferExpr(entry.Value)
			if i == 0 {
				keyT, valT = k, v
			}
		}
		return TMap(keyT, valT)
	case *ast.Comprehension:
		return c.inferComprehension(ex)
	case *ast.BinaryExpr:
		return c.inferBinary(ex)
	case *ast.UnaryExpr:
		return c.inferUnary(ex)
	case *ast.CallExpr:
		return c.inferCall(ex)
	case *ast.IndexExpr:
		return c.inferIndex(ex)
	case *ast.FieldExpr:
		return c.inferField(ex)
	case *ast.TryPropagateExpr:
		t := c.inferExpr(ex.Operand)
		if t.Kind == Result {
			return t.Elems[0]
		}
		return t
	case *ast.TryElseExpr:
		t := c.inferExpr(ex.Operand)
		c.pushScope()
		c.declareLocal(ex.ErrName, TAny, false)
		fb := c.inferExpr(ex.Fallback)
		c.popScope()
		if t.Kind == Result {
			if joined, ok := CommonSupertype(t.Elems[0], fb); ok {
				return joined
			}
		}
		return fb
	case *ast.NullCoalesceExpr:
		l := c.inferExpr(ex.Left)
		r := c.inferExpr(ex.Right)
		if l.Kind == Null {
			return r
		}
		if joined, ok := CommonSupertype(l, r); ok {
			return joined
		}
		return l
	case *ast.PipelineExpr:
		return c.inferExpr(ex.Desugared)
	case *ast.IfExpr:
		return c.inferIfExpr(ex)
	case *ast.MatchExpr:
		return c.inferMatchExpr(ex)
	case *ast.LambdaExpr:
		return c.inferLambda(ex)
	case *ast.RecordLit:
		return c.inferRecordLit(ex)
	default:
		return TAny
	}
}

func (c *checker) inferIdent(ex *ast.Ident) Type {
	if b, ok := c.lookupLocal(ex.Name); ok {
		return b.typ
	}

	if info, ok := c.res.Cells[ex.Name]; ok {
		return TFn(info.Params, info.Return)
	}

	c.errorf(UndefinedVar, ex.Span, "undefined name "+ex.Name)

	return TAny
}

func (c *checker) inferListLit(ex *ast.ListLit) Type {
	elemT := TAny
	for i, el := range ex.Elems {
		t := c.inferExpr(el)
		if i == 0 {
			elemT = t
		} else if !t.Equal(elemT) {
			if joined, ok := CommonSupertype(elemT, t); ok {
				elemT = joined
			}
		}
	}
	return TList(elemT)
}

func (c *checker) inferComprehension(ex *ast.Comprehension) Type {
	iterT := c.inferExpr(ex.Iter)
	c.pushScope()
	c.bindPattern(ex.Pattern, elementTypeOf(iterT))

	if ex.Cond != nil {
		c.inferExpr(ex.Cond)
	}

	var result Type

	switch ex.Kind {
	case ast.ComprehensionMap:
		k := c.inferExpr(ex.Key)
		v := c.inferExpr(ex.Result)
		result = TMap(k, v)
	case ast.ComprehensionSet:
		result = TSet(c.inferExpr(ex.Result))
	default:
		result = TList(c.inferExpr(ex.Result))
	}

	c.popScope()

	return result
}

func (c *checker) inferBinary(ex *ast.BinaryExpr) Type {
	l := c.inferExpr(ex.Left)
	r := c.inferExpr(ex.Right)

	switch ex.Op {
	case ast.OpOr, ast.OpAnd:
		if l.Kind != Bool && l.Kind != Any {
			c.mismatch(ex.Left.SpanOf(), TBool, l, "boolean operator requires Bool operand")
		}
		if r.Kind != Bool && r.Kind != Any {
			c.mismatch(ex.Right.SpanOf(), TBool, r, "boolean operator requires Bool operand")
		}
		return TBool
	case ast.OpEq, ast.OpNotEq:
		return TBool
	case ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq:
		return TBool
	case ast.OpSpaceship:
		return TInt
	case ast.OpIn:
		return TBool
	case ast.OpBitOr, ast.OpBitXor, ast.OpBitAnd, ast.OpShl, ast.OpShr:
		return TInt
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpFloorDiv, ast.OpMod, ast.OpPow:
		return c.inferArith(ex, l, r)
	default:
		return TAny
	}
}

func (c *checker) inferArith(ex *ast.BinaryExpr, l, r Type) Type {
	if ex.Op == ast.OpAdd && l.Kind == String && r.Kind == String {
		return TString
	}

	if !l.IsNumeric() && l.Kind != Any {
		c.mismatch(ex.Left.SpanOf(), TInt, l, "arithmetic operator requires numeric operand")
		return TAny
	}

	if !r.IsNumeric() && r.Kind != Any {
		c.mismatch(ex.Right.SpanOf(), TInt, r, "arithmetic operator requires numeric operand")
		return TAny
	}

	// spec.md §4.6: "mixed Int+Float widens to Float".
	if l.Kind == Float || r.Kind == Float {
		return TFloat
	}

	return TInt
}

func (c *checker) inferUnary(ex *ast.UnaryExpr) Type {
	t := c.inferExpr(ex.Operand)

	switch ex.Op {
	case ast.OpNot:
		return TBool
	case ast.OpBitNot:
		return TInt
	default:
		return t
	}
}

func (c *checker) inferCall(ex *ast.CallExpr) Type {
	calleeT := c.inferExpr(ex.Callee)

	argTypes := make([]Type, len(ex.Args))
	for i, a := range ex.Args {
		argTypes[i] = c.inferExpr(a)
	}

	if calleeT.Kind == Any {
		return TAny
	}

	if calleeT.Kind != Fn {
		c.errorf(NotCallable, ex.Span, "callee is not a function")
		return TAny
	}

	if len(argTypes) != len(calleeT.Params) {
		c.errorf(ArgCount, ex.Span, "expected "+itoa(len(calleeT.Params))+" arguments, found "+itoa(len(argTypes)))
	} else {
		for i, at := range argTypes {
			if pt := calleeT.Params[i]; pt.Kind != Any && !at.Equal(pt) {
				c.mismatch(ex.Args[i].SpanOf(), pt, at, "argument type mismatch")
			}
		}
	}

	return *calleeT.Return
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	neg := n < 0
	if neg {
		n = -n
	}

	var buf [20]byte
	i := len(buf)

	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}

	if neg {
		i--
		buf[i] = '-'
	}

	return string(buf[i:])
}

func (c *checker) inferIndex(ex *ast.IndexExpr) Type {
	recv := c.inferExpr(ex.Receiver)
	c.inferExpr(ex.Index)

	result := elementTypeOf(recv)

	if ex.NullSafe {
		if joined, ok := CommonSupertype(result, TNull); ok {
			return joined
		}
	}

	return result
}

func (c *checker) inferField(ex *ast.FieldExpr) Type {
	recv := c.inferExpr(ex.Receiver)

	if recv.Kind == Record {
		if info, ok := c.res.Records[recv.Name]; ok {
			if ft, ok := info.Types[ex.Field]; ok {
				if ex.NullSafe {
					if joined, ok := CommonSupertype(ft, TNull); ok {
						return joined
					}
				}
				return ft
			}
		}

		c.errorf(UnknownField, ex.Span, "unknown field "+ex.Field+" on "+recv.Name)
	}

	return TAny
}

func (c *checker) inferIfExpr(ex *ast.IfExpr) Type {
	ct := c.inferExpr(ex.Cond)
	if ct.Kind != Bool && ct.Kind != Any {
		c.mismatch(ex.Cond.SpanOf(), TBool, ct, "if condition must be Bool")
	}

	thenT := c.inferExpr(ex.Then)

	if ex.Else == nil {
		return TNull
	}

	elseT := c.inferExpr(ex.Else)

	joined, ok := CommonSupertype(thenT, elseT)
	if !ok {
		c.mismatch(ex.Span, thenT, elseT, "if/else branches have incompatible types")
		return TAny
	}

	return joined
}

func (c *checker) inferLambda(ex *ast.LambdaExpr) Type {
	c.pushScope()
	defer c.popScope()

	params := make([]Type, len(ex.Params))
	for i, p := range ex.Params {
		pt := TAny
		if p.Type != nil {
			pt = c.resolveTypeExpr(p.Type)
		}
		params[i] = pt
		c.declareLocal(p.Name, pt, false)
	}

	ret := c.inferExpr(ex.Body)

	return TFn(params, ret)
}

func (c *checker) inferRecordLit(ex *ast.RecordLit) Type {
	info, ok := c.res.Records[ex.Name]
	if !ok {
		c.errorf(UndefinedType, ex.Span, "undefined record type "+ex.Name)
	}

	for _, f := range ex.Fields {
		vt := c.inferExpr(f.Value)

		if ok {
			name, _ := f.Key.(*ast.Ident)
			if name == nil {
				continue
			}

			ft, known := info.Types[name.Name]
			if !known {
				c.errorf(UnknownField, ex.Span, "unknown field "+name.Name+" on "+ex.Name)
				continue
			}

			if ft.Kind != Any && !vt.Equal(ft) {
				c.mismatch(f.Value.SpanOf(), ft, vt, "record field type mismatch")
			}
		}
	}

	return TRecord(ex.Name)
}
