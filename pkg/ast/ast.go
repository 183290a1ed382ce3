// Package ast defines the abstract syntax tree produced by pkg/parser: a
// Program is an ordered sequence of top-level Items, Exprs and Stmts form the
// usual tree, and every node carries a Span back to its source text.
package ast

import "github.com/lumen-lang/lumen/pkg/source"

// Program is the root of a parsed compilation unit: an ordered sequence of
// directives (collected from the literate source, if any) and top-level
// items.
type Program struct {
	Directives []Directive
	Items      []Item
	Span       source.Span
}

// Directive is a literate or raw-source directive, e.g. "@package foo".
type Directive struct {
	Name  string
	Value string
	Span  source.Span
}

// Item is a tagged union over every top-level declaration kind.
type Item interface {
	itemNode()
	Spanned
}

// Spanned is implemented by every AST node.
type Spanned interface {
	SpanOf() source.Span
}

// Param is a single function/cell parameter.
type Param struct {
	Name    string
	Type    TypeExpr // nil if untyped
	Default Expr     // nil if no default
	Span    source.Span
}

// Field is a single record field.
type Field struct {
	Name  string
	Type  TypeExpr
	Where Expr // nil if no `where` clause
	Span  source.Span
}

// RecordDef declares a record (product) type.
type RecordDef struct {
	Name   string
	Fields []Field
	Span   source.Span
}

func (*RecordDef) itemNode()              {}
func (d *RecordDef) SpanOf() source.Span  { return d.Span }

// EnumVariant is a single enum variant, optionally carrying a payload type.
type EnumVariant struct {
	Name    string
	Payload TypeExpr // nil if no payload
	Span    source.Span
}

// EnumDef declares a sum type.
type EnumDef struct {
	Name     string
	Variants []EnumVariant
	Span     source.Span
}

func (*EnumDef) itemNode()             {}
func (d *EnumDef) SpanOf() source.Span { return d.Span }

// CellDef declares a function ("cell" in Lumen's vocabulary).
type CellDef struct {
	Name       string
	Params     []Param
	ReturnType TypeExpr // nil if inferred/unit
	Body       []Stmt
	MustUse    bool
	Span       source.Span
}

func (*CellDef) itemNode()             {}
func (d *CellDef) SpanOf() source.Span { return d.Span }

// TypeAliasDef declares `type Name = T`.
type TypeAliasDef struct {
	Name string
	Type TypeExpr
	Span source.Span
}

func (*TypeAliasDef) itemNode()             {}
func (d *TypeAliasDef) SpanOf() source.Span { return d.Span }

// ProcessDef declares a long-lived actor.
type ProcessDef struct {
	Name   string
	Params []Param
	Body   []Stmt
	Span   source.Span
}

func (*ProcessDef) itemNode()             {}
func (d *ProcessDef) SpanOf() source.Span { return d.Span }

// EffectDef declares an effect signature.
type EffectDef struct {
	Name       string
	Params     []Param
	ReturnType TypeExpr
	Span       source.Span
}

func (*EffectDef) itemNode()             {}
func (d *EffectDef) SpanOf() source.Span { return d.Span }

// HandlerDef defines a handler implementation for a set of effects.
type HandlerDef struct {
	Name    string
	Effects []string
	Body    []Stmt
	Span    source.Span
}

func (*HandlerDef) itemNode()             {}
func (d *HandlerDef) SpanOf() source.Span { return d.Span }

// ImportStmt imports symbols from another module.
type ImportStmt struct {
	Path    string
	Alias   string // "" if none
	Symbols []string // empty if importing the whole module under Alias
	Span    source.Span
}

func (*ImportStmt) itemNode()             {}
func (d *ImportStmt) SpanOf() source.Span { return d.Span }

// TraitDef declares a trait (interface).
type TraitDef struct {
	Name    string
	Methods []CellDef
	Span    source.Span
}

func (*TraitDef) itemNode()             {}
func (d *TraitDef) SpanOf() source.Span { return d.Span }

// ImplBlock implements a trait for a type, or provides inherent methods when
// Trait is empty.
type ImplBlock struct {
	Trait   string // "" for an inherent impl
	Type    string
	Methods []CellDef
	Span    source.Span
}

func (*ImplBlock) itemNode()             {}
func (d *ImplBlock) SpanOf() source.Span { return d.Span }

// ExternDecl declares an externally-provided cell with a known signature but
// no body.
type ExternDecl struct {
	Name       string
	Params     []Param
	ReturnType TypeExpr
	Span       source.Span
}

func (*ExternDecl) itemNode()             {}
func (d *ExternDecl) SpanOf() source.Span { return d.Span }
