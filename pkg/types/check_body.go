package types

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/source"
)

// checkBodies type-checks every cell/process/handler/impl/trait method body
// against its declared signature.
func (c *checker) checkBodies(prog *ast.Program) {
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.CellDef:
			c.checkCellBody(it.Params, it.Body, c.res.Cells[it.Name].Return, it.Span)
		case *ast.ProcessDef:
			c.checkCellBody(it.Params, it.Body, TNull, it.Span)
		case *ast.HandlerDef:
			c.checkCellBody(nil, it.Body, TAny, it.Span)
		case *ast.ImplBlock:
			for _, m := range it.Methods {
				ret := TNull
				if m.ReturnType != nil {
					ret = c.resolveTypeExpr(m.ReturnType)
				}
				c.checkCellBody(m.Params, m.Body, ret, m.Span)
			}
		case *ast.TraitDef:
			for _, m := range it.Methods {
				if m.Body == nil {
					continue
				}
				ret := TNull
				if m.ReturnType != nil {
					ret = c.resolveTypeExpr(m.ReturnType)
				}
				c.checkCellBody(m.Params, m.Body, ret, m.Span)
			}
		}
	}
}

func (c *checker) checkCellBody(params []ast.Param, body []ast.Stmt, declaredReturn Type, span source.Span) {
	c.pushScope()
	defer c.popScope()

	for _, p := range params {
		pt := TAny
		if p.Type != nil {
			pt = c.resolveTypeExpr(p.Type)
		}
		c.declareLocal(p.Name, pt, false)
	}

	tail := c.checkBlock(body, declaredReturn)

	// spec.md §4.6: "the body's tail expression (implicit return) or every
	// explicit return must match the declared return type". For a declared
	// return other than Null or Any and no explicit return, a body with no
	// tail expression is MissingReturn and a tail expression of another
	// type is a Mismatch.
	if declaredReturn.Kind != Null && declaredReturn.Kind != Any && !tail.sawReturn {
		if tail.lastExprType == nil {
			c.errorf(MissingReturn, span, "cell falls off the end without returning "+declaredReturn.String())
		} else if !tail.lastExprType.Equal(declaredReturn) {
			c.mismatch(span, declaredReturn, *tail.lastExprType, "tail expression does not match declared return type")
		}
	}
}

type blockResult struct {
	sawReturn    bool
	lastExprType *Type
}

func (c *checker) checkBlock(body []ast.Stmt, declaredReturn Type) blockResult {
	var result blockResult

	for i, s := range body {
		isTail := i == len(body)-1

		switch st := s.(type) {
		case *ast.ReturnStmt:
			result.sawReturn = true
			rt := TNull
			if st.Value != nil {
				rt = c.inferExpr(st.Value)
			}
			if !rt.Equal(declaredReturn) && declaredReturn.Kind != Any {
				c.mismatch(st.Span, declaredReturn, rt, "return type mismatch")
			}
		case *ast.ExprStmt:
			t := c.inferExpr(st.Expr)
			c.checkMustUse(st.Expr, true)
			if isTail {
				result.lastExprType = &t
			}
		case *ast.LetStmt:
			c.checkLetStmt(st)
		case *ast.AssignStmt:
			c.checkAssignStmt(st)
		case *ast.IfStmt:
			ct := c.inferExpr(st.Cond)
			if ct.Kind != Bool && ct.Kind != Any {
				c.mismatch(st.Cond.SpanOf(), TBool, ct, "if condition must be Bool")
			}
			c.pushScope()
			thenRes := c.checkBlock(st.Then, declaredReturn)
			c.popScope()
			c.pushScope()
			elseRes := c.checkBlock(st.Else, declaredReturn)
			c.popScope()
			result.sawReturn = result.sawReturn || (thenRes.sawReturn && elseRes.sawReturn && len(st.Else) > 0)
		case *ast.WhileStmt:
			ct := c.inferExpr(st.Cond)
			if ct.Kind != Bool && ct.Kind != Any {
				c.mismatch(st.Cond.SpanOf(), TBool, ct, "while condition must be Bool")
			}
			c.pushScope()
			c.checkBlock(st.Body, declaredReturn)
			c.popScope()
		case *ast.ForStmt:
			iterT := c.inferExpr(st.Iter)
			c.pushScope()
			c.bindPattern(st.Pattern, elementTypeOf(iterT))
			c.checkBlock(st.Body, declaredReturn)
			c.popScope()
		case *ast.MatchStmt:
			c.checkMatchStmt(st, declaredReturn)
		}
	}

	return result
}

func elementTypeOf(t Type) Type {
	switch t.Kind {
	case List, Set:
		return t.Elems[0]
	case Map:
		return TTuple(t.Elems[0], t.Elems[1])
	default:
		return TAny
	}
}

func (c *checker) checkLetStmt(st *ast.LetStmt) {
	valType := c.inferExpr(st.Value)

	if st.Type != nil {
		declared := c.resolveTypeExpr(st.Type)
		if !valType.Equal(declared) {
			c.mismatch(st.Span, declared, valType, "let binding type mismatch")
		}
		c.declareLocal(st.Name, declared, st.Mut)
		return
	}

	c.declareLocal(st.Name, valType, st.Mut)
}

func (c *checker) checkAssignStmt(st *ast.AssignStmt) {
	valType := c.inferExpr(st.Value)

	if ident, ok := st.Target.(*ast.Ident); ok {
		b, found := c.lookupLocal(ident.Name)
		if found {
			if !b.mut {
				c.errorf(ImmutableAssign, st.Span, "cannot assign to immutable binding "+ident.Name)
			}
			if !valType.Equal(b.typ) && b.typ.Kind != Any {
				c.mismatch(st.Span, b.typ, valType, "assignment type mismatch")
			}
			return
		}
	}

	c.inferExpr(st.Target)
}

func (c *checker) bindPattern(pat ast.Pattern, t Type) {
	switch p := pat.(type) {
	case *ast.BindPattern:
		c.declareLocal(p.Name, t, false)
	case *ast.TuplePattern:
		for i, e := range p.Elems {
			et := TAny
			if t.Kind == Tuple && i < len(t.Elems) {
				et = t.Elems[i]
			}
			c.bindPattern(e, et)
		}
	case *ast.VariantPattern:
		if p.Payload != nil {
			c.bindPattern(p.Payload, TAny)
		}
	case *ast.RecordPattern:
		info, ok := c.res.Records[p.Name]
		for _, f := range p.Fields {
			ft := TAny
			if ok {
				ft = info.Types[f.Name]
			}
			c.bindPattern(f.Pattern, ft)
		}
	}
}

// checkMustUse enforces spec.md §4.6's `@must_use` rule: a call to an
// annotated cell must appear in a used position. topLevelStmt is true only
// when the call is the whole expression of a bare ExprStmt.
func (c *checker) checkMustUse(e ast.Expr, topLevelStmt bool) {
	call, ok := e.(*ast.CallExpr)
	if !ok {
		return
	}

	callee, ok := call.Callee.(*ast.Ident)
	if !ok {
		return
	}

	info, ok := c.res.Cells[callee.Name]
	if ok && info.MustUse && topLevelStmt {
		c.errorf(MustUseIgnored, call.Span, "result of @must_use cell "+callee.Name+" is ignored")
	}
}
