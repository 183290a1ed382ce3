package ast

import "github.com/lumen-lang/lumen/pkg/source"

// Expr is a tagged union over every expression node kind.
type Expr interface {
	exprNode()
	Spanned
}

// BinOp identifies a binary operator.
type BinOp uint8

// Binary operators, ordered by the precedence table in spec.md §4.3.
const (
	OpOr BinOp = iota
	OpAnd
	OpEq
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpSpaceship
	OpIn
	OpBitOr
	OpBitXor
	OpBitAnd
	OpShl
	OpShr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpFloorDiv
	OpMod
	OpPow
)

// UnaryOp identifies a unary prefix operator.
type UnaryOp uint8

// Unary operators.
const (
	OpNeg UnaryOp = iota
	OpNot
	OpBitNot
)

// IntLit is an integer literal.
type IntLit struct {
	Value int64
	Span  source.Span
}

func (*IntLit) exprNode()            {}
func (e *IntLit) SpanOf() source.Span { return e.Span }

// FloatLit is a floating point literal.
type FloatLit struct {
	Value float64
	Span  source.Span
}

func (*FloatLit) exprNode()            {}
func (e *FloatLit) SpanOf() source.Span { return e.Span }

// StringLit is a plain (non-interpolated) string literal.
type StringLit struct {
	Value string
	Span  source.Span
}

func (*StringLit) exprNode()            {}
func (e *StringLit) SpanOf() source.Span { return e.Span }

// InterpStringPart is one segment of an interpolated string: either literal
// text or a parsed sub-expression.
type InterpStringPart struct {
	Literal string
	Expr    Expr // nil if this part is a literal run
}

// InterpStringLit is a `"text ${expr} more"` interpolated string.
type InterpStringLit struct {
	Parts []InterpStringPart
	Span  source.Span
}

func (*InterpStringLit) exprNode()            {}
func (e *InterpStringLit) SpanOf() source.Span { return e.Span }

// BoolLit is a boolean literal.
type BoolLit struct {
	Value bool
	Span  source.Span
}

func (*BoolLit) exprNode()            {}
func (e *BoolLit) SpanOf() source.Span { return e.Span }

// NullLit is the `null` literal.
type NullLit struct {
	Span source.Span
}

func (*NullLit) exprNode()            {}
func (e *NullLit) SpanOf() source.Span { return e.Span }

// BytesLit is a `b"..."` bytes literal.
type BytesLit struct {
	Value []byte
	Span  source.Span
}

func (*BytesLit) exprNode()            {}
func (e *BytesLit) SpanOf() source.Span { return e.Span }

// Ident is a bare identifier reference.
type Ident struct {
	Name string
	Span source.Span
}

func (*Ident) exprNode()            {}
func (e *Ident) SpanOf() source.Span { return e.Span }

// ListLit is a `[e1, e2, ...]` list literal.
type ListLit struct {
	Elems []Expr
	Span  source.Span
}

func (*ListLit) exprNode()            {}
func (e *ListLit) SpanOf() source.Span { return e.Span }

// MapEntry is a single `key: value` pair in a map literal.
type MapEntry struct {
	Key   Expr
	Value Expr
}

// MapLit is a `{k1: v1, k2: v2}` map literal.
type MapLit struct {
	Entries []MapEntry
	Span    source.Span
}

func (*MapLit) exprNode()            {}
func (e *MapLit) SpanOf() source.Span { return e.Span }

// SetLit is a `{e1, e2, ...}` set literal.
type SetLit struct {
	Elems []Expr
	Span  source.Span
}

func (*SetLit) exprNode()            {}
func (e *SetLit) SpanOf() source.Span { return e.Span }

// TupleLit is a `(e1, e2, ...)` tuple literal.
type TupleLit struct {
	Elems []Expr
	Span  source.Span
}

func (*TupleLit) exprNode()            {}
func (e *TupleLit) SpanOf() source.Span { return e.Span }

// Comprehension is `[expr for pattern in iter if cond]` (list form; the same
// node serves map/set comprehensions via the surrounding literal's delimiter,
// tracked by Kind).
type ComprehensionKind uint8

const (
	ComprehensionList ComprehensionKind = iota
	ComprehensionMap
	ComprehensionSet
)

type Comprehension struct {
	Kind    ComprehensionKind
	Result  Expr // for ComprehensionMap this is the value; Key holds the key
	Key     Expr // non-nil only for ComprehensionMap
	Pattern Pattern
	Iter    Expr
	Cond    Expr // nil if no filter
	Span    source.Span
}

func (*Comprehension) exprNode()            {}
func (e *Comprehension) SpanOf() source.Span { return e.Span }

// BinaryExpr is `lhs op rhs`.
type BinaryExpr struct {
	Op    BinOp
	Left  Expr
	Right Expr
	Span  source.Span
}

func (*BinaryExpr) exprNode()            {}
func (e *BinaryExpr) SpanOf() source.Span { return e.Span }

// UnaryExpr is `op operand`.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
	Span    source.Span
}

func (*UnaryExpr) exprNode()            {}
func (e *UnaryExpr) SpanOf() source.Span { return e.Span }

// CallExpr is `callee(args...)`.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Span   source.Span
}

func (*CallExpr) exprNode()            {}
func (e *CallExpr) SpanOf() source.Span { return e.Span }

// IndexExpr is `recv[index]`, optionally null-safe (`recv?[index]`).
type IndexExpr struct {
	Receiver Expr
	Index    Expr
	NullSafe bool
	Span     source.Span
}

func (*IndexExpr) exprNode()            {}
func (e *IndexExpr) SpanOf() source.Span { return e.Span }

// FieldExpr is `recv.field`, optionally null-safe (`recv?.field`).
type FieldExpr struct {
	Receiver Expr
	Field    string
	NullSafe bool
	Span     source.Span
}

func (*FieldExpr) exprNode()            {}
func (e *FieldExpr) SpanOf() source.Span { return e.Span }

// TryPropagateExpr is `expr?`: early-return-on-error propagation.
type TryPropagateExpr struct {
	Operand Expr
	Span    source.Span
}

func (*TryPropagateExpr) exprNode()            {}
func (e *TryPropagateExpr) SpanOf() source.Span { return e.Span }

// TryElseExpr is `try expr else |err| fallback`.
type TryElseExpr struct {
	Operand   Expr
	ErrName   string
	Fallback  Expr
	Span      source.Span
}

func (*TryElseExpr) exprNode()            {}
func (e *TryElseExpr) SpanOf() source.Span { return e.Span }

// NullCoalesceExpr is `lhs ?? rhs`.
type NullCoalesceExpr struct {
	Left  Expr
	Right Expr
	Span  source.Span
}

func (*NullCoalesceExpr) exprNode()            {}
func (e *NullCoalesceExpr) SpanOf() source.Span { return e.Span }

// PipelineExpr is `lhs |> rhs(args...)`, retained pre-desugaring for
// diagnostics; the parser also produces the desugared CallExpr form reachable
// via Desugared.
type PipelineExpr struct {
	Left       Expr
	Call       *CallExpr
	Desugared  Expr
	Span       source.Span
}

func (*PipelineExpr) exprNode()            {}
func (e *PipelineExpr) SpanOf() source.Span { return e.Span }

// IfExpr is `if cond then e1 else e2`.
type IfExpr struct {
	Cond Expr
	Then Expr
	Else Expr // nil if no else branch (unit-typed)
	Span source.Span
}

func (*IfExpr) exprNode()            {}
func (e *IfExpr) SpanOf() source.Span { return e.Span }

// MatchArm is one arm of a match expression.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr // nil if unguarded
	Body    Expr
	Span    source.Span
}

// MatchExpr is `match scrutinee` followed by an indented block of arms.
type MatchExpr struct {
	Scrutinee Expr
	Arms      []MatchArm
	Span      source.Span
}

func (*MatchExpr) exprNode()            {}
func (e *MatchExpr) SpanOf() source.Span { return e.Span }

// LambdaExpr is `|params| body`, including trailing-lambda call sugar
// desugared in the parser to an explicit argument.
type LambdaExpr struct {
	Params []Param
	Body   Expr
	Span   source.Span
}

func (*LambdaExpr) exprNode()            {}
func (e *LambdaExpr) SpanOf() source.Span { return e.Span }

// RecordLit is `Name { field: value, ... }`.
type RecordLit struct {
	Name   string
	Fields []MapEntry // Key is always an *Ident naming the field
	Span   source.Span
}

func (*RecordLit) exprNode()            {}
func (e *RecordLit) SpanOf() source.Span { return e.Span }
