package ast

import "github.com/lumen-lang/lumen/pkg/source"

// TypeExpr is a syntactic type reference, as written by the programmer;
// pkg/types resolves these into its own Type representation.
type TypeExpr interface {
	typeExprNode()
	Spanned
}

// NamedType is a bare or generic type name: `Int`, `List(T)`, `Foo(A, B)`.
type NamedType struct {
	Name string
	Args []TypeExpr
	Span source.Span
}

func (*NamedType) typeExprNode()            {}
func (t *NamedType) SpanOf() source.Span { return t.Span }

// TupleType is `(T1, T2, ...)`.
type TupleType struct {
	Elems []TypeExpr
	Span  source.Span
}

func (*TupleType) typeExprNode()            {}
func (t *TupleType) SpanOf() source.Span { return t.Span }

// FnType is `Fn(T1, T2) -> R`.
type FnType struct {
	Params []TypeExpr
	Return TypeExpr
	Span   source.Span
}

func (*FnType) typeExprNode()            {}
func (t *FnType) SpanOf() source.Span { return t.Span }

// UnionType is `T1 | T2 | ...`.
type UnionType struct {
	Members []TypeExpr
	Span    source.Span
}

func (*UnionType) typeExprNode()            {}
func (t *UnionType) SpanOf() source.Span { return t.Span }
