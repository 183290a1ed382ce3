package ast

import "github.com/lumen-lang/lumen/pkg/source"

// Stmt is a tagged union over statement node kinds.
type Stmt interface {
	stmtNode()
	Spanned
}

// LetStmt is `let [mut] name[: T] = expr`.
type LetStmt struct {
	Name    string
	Mut     bool
	Type    TypeExpr // nil if inferred
	Value   Expr
	Span    source.Span
}

func (*LetStmt) stmtNode()            {}
func (s *LetStmt) SpanOf() source.Span { return s.Span }

// AssignStmt is `target = expr`, where target is an Ident, IndexExpr or
// FieldExpr.
type AssignStmt struct {
	Target Expr
	Value  Expr
	Span   source.Span
}

func (*AssignStmt) stmtNode()            {}
func (s *AssignStmt) SpanOf() source.Span { return s.Span }

// ExprStmt is a bare expression evaluated for effect.
type ExprStmt struct {
	Expr Expr
	Span source.Span
}

func (*ExprStmt) stmtNode()            {}
func (s *ExprStmt) SpanOf() source.Span { return s.Span }

// ReturnStmt is `return [expr]`.
type ReturnStmt struct {
	Value Expr // nil for a bare `return`
	Span  source.Span
}

func (*ReturnStmt) stmtNode()            {}
func (s *ReturnStmt) SpanOf() source.Span { return s.Span }

// IfStmt is the statement form of `if`/`else`, distinct from IfExpr used in
// expression position.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt // nil if no else branch; may itself contain one IfStmt for `else if`
	Span source.Span
}

func (*IfStmt) stmtNode()            {}
func (s *IfStmt) SpanOf() source.Span { return s.Span }

// WhileStmt is `while cond` followed by an indented body block.
type WhileStmt struct {
	Cond Expr
	Body []Stmt
	Span source.Span
}

func (*WhileStmt) stmtNode()            {}
func (s *WhileStmt) SpanOf() source.Span { return s.Span }

// ForStmt is `for pattern in iter` followed by an indented body block.
type ForStmt struct {
	Pattern Pattern
	Iter    Expr
	Body    []Stmt
	Span    source.Span
}

func (*ForStmt) stmtNode()            {}
func (s *ForStmt) SpanOf() source.Span { return s.Span }

// MatchStmt is the statement form of `match`.
type MatchStmt struct {
	Scrutinee Expr
	Arms      []MatchStmtArm
	Span      source.Span
}

// MatchStmtArm is one arm of a statement-position match.
type MatchStmtArm struct {
	Pattern Pattern
	Guard   Expr
	Body    []Stmt
	Span    source.Span
}

func (*MatchStmt) stmtNode()            {}
func (s *MatchStmt) SpanOf() source.Span { return s.Span }
