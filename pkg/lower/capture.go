package lower

import "github.com/lumen-lang/lumen/pkg/ast"

// freeIdents collects identifier names referenced within e that are not in
// bound, in first-seen order, deduplicated. This is a syntactic
// approximation (it does not track nested shadowing inside the lambda body
// itself) sufficient for capturing a lambda's lexical environment: any name
// it over-captures is simply an unused entry in the closure's capture map.
func freeIdents(e ast.Expr, bound map[string]bool) []string {
	var order []string
	seen := map[string]bool{}

	var walk func(ast.Expr)

	add := func(name string) {
		if bound[name] || seen[name] {
			return
		}

		seen[name] = true
		order = append(order, name)
	}

	walk = func(e ast.Expr) {
		if e == nil {
			return
		}

		switch ex := e.(type) {
		case *ast.Ident:
			add(ex.Name)
		case *ast.InterpStringLit:
			for _, part := range ex.Parts {
				if part.Expr != nil {
					walk(part.Expr)
				}
			}
		case *ast.ListLit:
			for _, el := range ex.Elems {
				walk(el)
			}
		case *ast.SetLit:
			for _, el := range ex.Elems {
				walk(el)
			}
		case *ast.TupleLit:
			for _, el := range ex.Elems {
				walk(el)
			}
		case *ast.MapLit:
			for _, en := range ex.Entries {
				walk(en.Key)
				walk(en.Value)
			}
		case *ast.RecordLit:
			for _, f := range ex.Fields {
				walk(f.Value)
			}
		case *ast.Comprehension:
			walk(ex.Iter)
			walk(ex.Cond)
			walk(ex.Key)
			walk(ex.Result)
		case *ast.BinaryExpr:
			walk(ex.Left)
			walk(ex.Right)
		case *ast.UnaryExpr:
			walk(ex.Operand)
		case *ast.CallExpr:
			walk(ex.Callee)
			for _, a := range ex.Args {
				walk(a)
			}
		case *ast.IndexExpr:
			walk(ex.Receiver)
			walk(ex.Index)
		case *ast.FieldExpr:
			walk(ex.Receiver)
		case *ast.TryPropagateExpr:
			walk(ex.Operand)
		case *ast.TryElseExpr:
			walk(ex.Operand)
			walk(ex.Fallback)
		case *ast.NullCoalesceExpr:
			walk(ex.Left)
			walk(ex.Right)
		case *ast.PipelineExpr:
			walk(ex.Desugared)
		case *ast.IfExpr:
			walk(ex.Cond)
			walk(ex.Then)
			walk(ex.Else)
		case *ast.MatchExpr:
			walk(ex.Scrutinee)
			for _, arm := range ex.Arms {
				walk(arm.Guard)
				walk(arm.Body)
			}
		case *ast.LambdaExpr:
			inner := map[string]bool{}
			for k, v := range bound {
				inner[k] = v
			}
			for _, p := range ex.Params {
				inner[p.Name] = true
			}
			for _, n := range freeIdents(ex.Body, inner) {
				add(n)
			}
		}
	}

	walk(e)

	return order
}
