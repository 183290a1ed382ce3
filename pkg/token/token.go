// Package token defines the lexical token vocabulary of the Lumen language.
package token

import (
	"fmt"

	"github.com/lumen-lang/lumen/pkg/source"
)

// Kind identifies the lexical category of a token.
type Kind uint8

// Token kinds. Structural kinds come first, followed by literal kinds that
// carry a payload, followed by keywords and operators.
const (
	Eof Kind = iota
	Indent
	Dedent
	Newline
	Ident
	Directive // @name, payload is the directive name
	IntLit
	FloatLit
	StringLit
	InterpStringLit // string literal with ${...} interpolation segments
	BoolLit
	BytesLit
	NullLit

	// Keywords
	KwLet
	KwMut
	KwCell
	KwRecord
	KwEnum
	KwProcess
	KwEffect
	KwHandler
	KwTrait
	KwImpl
	KwImport
	KwAs
	KwExtern
	KwType
	KwReturn
	KwIf
	KwElse
	KwMatch
	KwFor
	KwIn
	KwWhile
	KwOr
	KwAnd
	KwNot
	KwTry
	KwWhere
	KwTrue
	KwFalse
	KwNull
	KwEnd
	KwThen

	// Operators & punctuation
	Plus
	Minus
	Star
	Slash
	SlashSlash
	Percent
	StarStar
	Amp
	Pipe
	Caret
	Tilde
	Shl
	Shr
	EqEq
	NotEq
	Lt
	LtEq
	Gt
	GtEq
	Spaceship // <=>
	Assign
	Arrow    // ->
	FatArrow // =>
	PipeOp   // |>
	QQ       // ??
	Question // ?
	QDot     // ?.
	QBracket // ?[
	Dot
	DotDot
	DotDotEq
	Comma
	Colon
	ColonColon
	Semicolon
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	At
)

var names = map[Kind]string{
	Eof: "eof", Indent: "indent", Dedent: "dedent", Newline: "newline",
	Ident: "identifier", Directive: "directive", IntLit: "int", FloatLit: "float",
	StringLit: "string", InterpStringLit: "interp-string", BoolLit: "bool",
	BytesLit: "bytes", NullLit: "null",
	KwLet: "let", KwMut: "mut", KwCell: "cell", KwRecord: "record", KwEnum: "enum",
	KwProcess: "process", KwEffect: "effect", KwHandler: "handler", KwTrait: "trait",
	KwImpl: "impl", KwImport: "import", KwAs: "as", KwExtern: "extern", KwType: "type",
	KwReturn: "return", KwIf: "if", KwElse: "else", KwMatch: "match", KwFor: "for",
	KwIn: "in", KwWhile: "while", KwOr: "or", KwAnd: "and", KwNot: "not",
	KwTry: "try", KwWhere: "where", KwTrue: "true", KwFalse: "false", KwNull: "null",
	KwEnd: "end", KwThen: "then",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", SlashSlash: "//", Percent: "%",
	StarStar: "**", Amp: "&", Pipe: "|", Caret: "^", Tilde: "~", Shl: "<<", Shr: ">>",
	EqEq: "==", NotEq: "!=", Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=", Spaceship: "<=>",
	Assign: "=", Arrow: "->", FatArrow: "=>", PipeOp: "|>", QQ: "??", Question: "?",
	QDot: "?.", QBracket: "?[", Dot: ".", DotDot: "..", DotDotEq: "..=", Comma: ",",
	Colon: ":", ColonColon: "::", Semicolon: ";", LParen: "(", RParen: ")",
	LBracket: "[", RBracket: "]", LBrace: "{", RBrace: "}", At: "@",
}

// Keywords maps keyword text to its token kind.
var Keywords = map[string]Kind{
	"let": KwLet, "mut": KwMut, "cell": KwCell, "record": KwRecord, "enum": KwEnum,
	"process": KwProcess, "effect": KwEffect, "handler": KwHandler, "trait": KwTrait,
	"impl": KwImpl, "import": KwImport, "as": KwAs, "extern": KwExtern, "type": KwType,
	"return": KwReturn, "if": KwIf, "else": KwElse, "match": KwMatch, "for": KwFor,
	"in": KwIn, "while": KwWhile, "or": KwOr, "and": KwAnd, "not": KwNot,
	"try": KwTry, "where": KwWhere, "true": KwTrue, "false": KwFalse, "null": KwNull,
	"end": KwEnd, "then": KwThen,
}

// String returns the canonical textual form of a token kind.
func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}

	return fmt.Sprintf("kind(%d)", k)
}

// Token is a single lexical token together with its source span and, for
// literal/identifier/directive kinds, its decoded payload.
type Token struct {
	Kind Kind
	Span source.Span
	// Text is the raw source text this token was lexed from.
	Text string
	// Payload carries the decoded value for literal kinds: int64 for
	// IntLit (uint64 when the magnitude exceeds math.MaxInt64), float64 for FloatLit, string for StringLit/Ident/Directive,
	// bool for BoolLit, []byte for BytesLit, []InterpSegment for
	// InterpStringLit.
	Payload any
}

// InterpSegment is one piece of an interpolated string literal: either a
// literal run of text or an embedded expression's raw source.
type InterpSegment struct {
	Literal    string
	ExprSource string
	IsExpr     bool
}

func (t Token) String() string {
	if t.Text != "" {
		return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
	}

	return t.Kind.String()
}
