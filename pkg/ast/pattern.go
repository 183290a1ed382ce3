package ast

import "github.com/lumen-lang/lumen/pkg/source"

// Pattern is a tagged union over match/binding pattern node kinds.
type Pattern interface {
	patternNode()
	Spanned
}

// WildcardPattern is `_`.
type WildcardPattern struct {
	Span source.Span
}

func (*WildcardPattern) patternNode()            {}
func (p *WildcardPattern) SpanOf() source.Span { return p.Span }

// BindPattern binds the scrutinee (or sub-value) to a name; it also serves
// as a catch-all arm for exhaustiveness purposes (spec.md §4.6).
type BindPattern struct {
	Name string
	Span source.Span
}

func (*BindPattern) patternNode()            {}
func (p *BindPattern) SpanOf() source.Span { return p.Span }

// LiteralPattern matches a literal value exactly.
type LiteralPattern struct {
	Value Expr
	Span  source.Span
}

func (*LiteralPattern) patternNode()            {}
func (p *LiteralPattern) SpanOf() source.Span { return p.Span }

// VariantPattern matches an enum variant, optionally destructuring its
// payload.
type VariantPattern struct {
	Variant string
	Payload Pattern // nil if the variant carries no payload, or it's ignored
	Span    source.Span
}

func (*VariantPattern) patternNode()            {}
func (p *VariantPattern) SpanOf() source.Span { return p.Span }

// TuplePattern destructures a tuple.
type TuplePattern struct {
	Elems []Pattern
	Span  source.Span
}

func (*TuplePattern) patternNode()            {}
func (p *TuplePattern) SpanOf() source.Span { return p.Span }

// RecordFieldPattern is one `name: pattern` entry in a record pattern.
type RecordFieldPattern struct {
	Name    string
	Pattern Pattern
}

// RecordPattern destructures a record by field.
type RecordPattern struct {
	Name   string
	Fields []RecordFieldPattern
	Span   source.Span
}

func (*RecordPattern) patternNode()            {}
func (p *RecordPattern) SpanOf() source.Span { return p.Span }
