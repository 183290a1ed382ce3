package types

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/source"
)

// inferMatchExpr checks a match expression: every arm's pattern against the
// scrutinee's type, every arm's body against a common result type, and
// exhaustiveness for enum scrutinees (spec.md §4.6).
func (c *checker) inferMatchExpr(ex *ast.MatchExpr) Type {
	scrutT := c.inferExpr(ex.Scrutinee)

	var result Type
	haveResult := false

	for _, arm := range ex.Arms {
		c.pushScope()
		c.bindPattern(arm.Pattern, scrutT)

		if arm.Guard != nil {
			gt := c.inferExpr(arm.Guard)
			if gt.Kind != Bool && gt.Kind != Any {
				c.mismatch(arm.Guard.SpanOf(), TBool, gt, "match guard must be Bool")
			}
		}

		bodyT := c.inferExpr(arm.Body)
		c.popScope()

		if !haveResult {
			result, haveResult = bodyT, true
			continue
		}

		if joined, ok := CommonSupertype(result, bodyT); ok {
			result = joined
		} else {
			c.mismatch(arm.Span, result, bodyT, "match arms have incompatible result types")
		}
	}

	c.checkExhaustive(scrutT, patternsOf(ex.Arms), ex.Span)

	if !haveResult {
		return TNull
	}

	return result
}

func (c *checker) checkMatchStmt(st *ast.MatchStmt, declaredReturn Type) {
	scrutT := c.inferExpr(st.Scrutinee)

	patterns := make([]ast.Pattern, len(st.Arms))

	for i, arm := range st.Arms {
		patterns[i] = arm.Pattern

		c.pushScope()
		c.bindPattern(arm.Pattern, scrutT)

		if arm.Guard != nil {
			c.inferExpr(arm.Guard)
		}

		c.checkBlock(arm.Body, declaredReturn)
		c.popScope()
	}

	c.checkExhaustive(scrutT, patterns, st.Span)
}

func patternsOf(arms []ast.MatchArm) []ast.Pattern {
	patterns := make([]ast.Pattern, len(arms))
	for i, a := range arms {
		patterns[i] = a.Pattern
	}

	return patterns
}

// checkExhaustive implements spec.md §4.6's exhaustiveness rule: for an enum
// scrutinee, either every variant is covered or at least one arm has a
// catch-all (wildcard or bind) pattern. A guarded arm still counts toward
// coverage (spec.md §9's documented approximation: no SMT reasoning over the
// guard).
func (c *checker) checkExhaustive(scrutT Type, patterns []ast.Pattern, span source.Span) {
	if scrutT.Kind != Enum {
		return
	}

	info, ok := c.res.Enums[scrutT.Name]
	if !ok {
		return
	}

	covered := map[string]bool{}

	for _, p := range patterns {
		switch pat := p.(type) {
		case *ast.WildcardPattern, *ast.BindPattern:
			return // catch-all arm present: always exhaustive
		case *ast.VariantPattern:
			covered[pat.Variant] = true
		}
	}

	var missing []string

	for _, v := range info.Order {
		if !covered[v] {
			missing = append(missing, v)
		}
	}

	if len(missing) > 0 {
		msg := "non-exhaustive match on " + scrutT.Name + ": missing variant"
		if len(missing) > 1 {
			msg += "s"
		}
		for i, m := range missing {
			if i > 0 {
				msg += ","
			}
			msg += " " + m
		}

		c.errs = append(c.errs, &Error{Kind: NonExhaustiveMatch, Span: span, Message: msg})
	}
}
