package resolve

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/source"
	"go.uber.org/multierr"
)

// Resolve walks prog, binding every identifier use to a definition and
// returning the resulting symbol table. Every accumulated error is combined
// into the one returned error; use Partial for incremental/LSP use.
func Resolve(prog *ast.Program) (*Table, error) {
	table, errs := Partial(prog)
	if len(errs) == 0 {
		return table, nil
	}

	var err error
	for _, e := range errs {
		err = multierr.Append(err, e)
	}

	return table, err
}

// Partial resolves prog as far as possible, returning (symbols, errors)
// instead of failing outright (spec.md §4.5 "resolve_partial").
func Partial(prog *ast.Program) (*Table, []*Error) {
	r := &resolver{table: NewTable()}
	r.declareTopLevel(prog)
	r.resolveBodies(prog)

	return r.table, r.errs
}

type resolver struct {
	table          *Table
	errs           []*Error
	declaredEffects map[string][]string // handler name -> effects it may perform
	activeEffects  []string
}

func (r *resolver) declareTopLevel(prog *ast.Program) {
	r.declaredEffects = map[string][]string{}

	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.RecordDef:
			r.declareType(it.Name, it.Span)
		case *ast.EnumDef:
			r.declareType(it.Name, it.Span)
		case *ast.TypeAliasDef:
			r.declareType(it.Name, it.Span)
		case *ast.TraitDef:
			r.declareType(it.Name, it.Span)
		case *ast.CellDef:
			r.declareCell(it.Name, it.Span)
		case *ast.ProcessDef:
			r.declareCell(it.Name, it.Span)
		case *ast.ExternDecl:
			r.declareCell(it.Name, it.Span)
		case *ast.EffectDef:
			r.declareEffect(it.Name, it.Span)
		case *ast.HandlerDef:
			r.declaredEffects[it.Name] = it.Effects
		}
	}
}

func (r *resolver) declareType(name string, node ast.Spanned) {
	span := node.SpanOf()

	if _, exists := r.table.Types[name]; exists {
		r.errorf(Duplicate, name, span, "duplicate type definition")
		return
	}

	r.table.Types[name] = Def{Kind: DefType, Name: name, Span: span}
}

func (r *resolver) declareCell(name string, node ast.Spanned) {
	span := node.SpanOf()

	if _, exists := r.table.Cells[name]; exists {
		r.errorf(Duplicate, name, span, "duplicate cell definition")
		return
	}

	r.table.Cells[name] = Def{Kind: DefCell, Name: name, Span: span}
}

func (r *resolver) declareEffect(name string, node ast.Spanned) {
	span := node.SpanOf()

	if _, exists := r.table.Effects[name]; exists {
		r.errorf(Duplicate, name, span, "duplicate effect declaration")
		return
	}

	r.table.Effects[name] = Def{Kind: DefEffect, Name: name, Span: span}
}

func (r *resolver) resolveBodies(prog *ast.Program) {
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.CellDef:
			r.resolveCellLike(it.Params, it.Body, nil)
		case *ast.ProcessDef:
			r.resolveCellLike(it.Params, it.Body, nil)
		case *ast.HandlerDef:
			r.resolveCellLike(nil, it.Body, it.Effects)
		case *ast.ImplBlock:
			for i := range it.Methods {
				r.resolveCellLike(it.Methods[i].Params, it.Methods[i].Body, nil)
			}
		case *ast.TraitDef:
			for i := range it.Methods {
				r.resolveCellLike(it.Methods[i].Params, it.Methods[i].Body, nil)
			}
		}
	}
}

func (r *resolver) resolveCellLike(params []ast.Param, body []ast.Stmt, effects []string) {
	r.table.pushScope()
	defer r.table.popScope()

	prevEffects := r.activeEffects
	r.activeEffects = effects

	for _, p := range params {
		r.table.DeclareLocal(Def{Kind: DefLocal, Name: p.Name, Span: p.Span})

		if p.Default != nil {
			r.resolveExpr(p.Default)
		}
	}

	for _, s := range body {
		r.resolveStmt(s)
	}

	r.activeEffects = prevEffects
}

func (r *resolver) resolveStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.LetStmt:
		r.resolveExpr(st.Value)

		if !r.table.DeclareLocal(Def{Kind: DefLocal, Name: st.Name, Span: st.Span, Mut: st.Mut}) {
			r.errorf(Duplicate, st.Name, st.Span, "duplicate local binding in this scope")
		}
	case *ast.AssignStmt:
		r.resolveExpr(st.Target)
		r.resolveExpr(st.Value)
	case *ast.ExprStmt:
		r.resolveExpr(st.Expr)
	case *ast.ReturnStmt:
		if st.Value != nil {
			r.resolveExpr(st.Value)
		}
	case *ast.IfStmt:
		r.resolveExpr(st.Cond)
		r.resolveBlock(st.Then)
		r.resolveBlock(st.Else)
	case *ast.WhileStmt:
		r.resolveExpr(st.Cond)
		r.resolveBlock(st.Body)
	case *ast.ForStmt:
		r.resolveExpr(st.Iter)
		r.table.pushScope()
		r.declarePattern(st.Pattern)
		r.resolveBlock(st.Body)
		r.table.popScope()
	case *ast.MatchStmt:
		r.resolveExpr(st.Scrutinee)

		for _, arm := range st.Arms {
			r.table.pushScope()
			r.declarePattern(arm.Pattern)

			if arm.Guard != nil {
				r.resolveExpr(arm.Guard)
			}

			r.resolveBlock(arm.Body)
			r.table.popScope()
		}
	}
}

func (r *resolver) resolveBlock(stmts []ast.Stmt) {
	r.table.pushScope()
	defer r.table.popScope()

	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *resolver) declarePattern(pat ast.Pattern) {
	switch p := pat.(type) {
	case *ast.BindPattern:
		r.table.DeclareLocal(Def{Kind: DefLocal, Name: p.Name, Span: p.Span})
	case *ast.VariantPattern:
		if p.Payload != nil {
			r.declarePattern(p.Payload)
		}
	case *ast.TuplePattern:
		for _, e := range p.Elems {
			r.declarePattern(e)
		}
	case *ast.RecordPattern:
		for _, f := range p.Fields {
			r.declarePattern(f.Pattern)
		}
	}
}

func (r *resolver) resolveExpr(e ast.Expr) {
	switch ex := e.(type) {
	case *ast.Ident:
		if _, ok := r.table.LookupLocal(ex.Name); ok {
			return
		}

		if _, ok := r.table.Cells[ex.Name]; ok {
			return
		}

		if _, ok := r.table.Types[ex.Name]; ok {
			return
		}

		r.errorf(UndefinedVar, ex.Name, ex.Span, "undefined name")
	case *ast.BinaryExpr:
		r.resolveExpr(ex.Left)
		r.resolveExpr(ex.Right)
	case *ast.UnaryExpr:
		r.resolveExpr(ex.Operand)
	case *ast.CallExpr:
		r.resolveExpr(ex.Callee)

		for _, a := range ex.Args {
			r.resolveExpr(a)
		}
	case *ast.IndexExpr:
		r.resolveExpr(ex.Receiver)
		r.resolveExpr(ex.Index)
	case *ast.FieldExpr:
		r.resolveExpr(ex.Receiver)
	case *ast.TryPropagateExpr:
		r.resolveExpr(ex.Operand)
	case *ast.TryElseExpr:
		r.resolveExpr(ex.Operand)
		r.table.pushScope()
		r.table.DeclareLocal(Def{Kind: DefLocal, Name: ex.ErrName, Span: ex.Span})
		r.resolveExpr(ex.Fallback)
		r.table.popScope()
	case *ast.NullCoalesceExpr:
		r.resolveExpr(ex.Left)
		r.resolveExpr(ex.Right)
	case *ast.PipelineExpr:
		r.resolveExpr(ex.Desugared)
	case *ast.IfExpr:
		r.resolveExpr(ex.Cond)
		r.resolveExpr(ex.Then)

		if ex.Else != nil {
			r.resolveExpr(ex.Else)
		}
	case *ast.MatchExpr:
		r.resolveExpr(ex.Scrutinee)

		for _, arm := range ex.Arms {
			r.table.pushScope()
			r.declarePattern(arm.Pattern)

			if arm.Guard != nil {
				r.resolveExpr(arm.Guard)
			}

			r.resolveExpr(arm.Body)
			r.table.popScope()
		}
	case *ast.LambdaExpr:
		r.table.pushScope()

		for _, p := range ex.Params {
			r.table.DeclareLocal(Def{Kind: DefLocal, Name: p.Name, Span: p.Span})
		}

		r.resolveExpr(ex.Body)
		r.table.popScope()
	case *ast.ListLit:
		for _, el := range ex.Elems {
			r.resolveExpr(el)
		}
	case *ast.SetLit:
		for _, el := range ex.Elems {
			r.resolveExpr(el)
		}
	case *ast.TupleLit:
		for _, el := range ex.Elems {
			r.resolveExpr(el)
		}
	case *ast.MapLit:
		for _, entry := range ex.Entries {
			r.resolveExpr(entry.Key)
			r.resolveExpr(entry.Value)
		}
	case *ast.RecordLit:
		for _, f := range ex.Fields {
			r.resolveExpr(f.Value)
		}
	case *ast.Comprehension:
		r.resolveExpr(ex.Iter)
		r.table.pushScope()
		r.declarePattern(ex.Pattern)

		if ex.Cond != nil {
			r.resolveExpr(ex.Cond)
		}

		if ex.Key != nil {
			r.resolveExpr(ex.Key)
		}

		r.resolveExpr(ex.Result)
		r.table.popScope()
	case *ast.InterpStringLit:
		for _, part := range ex.Parts {
			if part.Expr != nil {
				r.resolveExpr(part.Expr)
			}
		}
	}
}

func (r *resolver) errorf(kind Kind, name string, span source.Span, msg string) {
	r.errs = append(r.errs, &Error{Kind: kind, Name: name, Span: span, Message: msg})
}
