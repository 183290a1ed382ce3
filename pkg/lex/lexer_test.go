package lex

import (
	"testing"

	"github.com/lumen-lang/lumen/pkg/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}

	return ks
}

func sameKinds(t *testing.T, got []token.Kind, want []token.Kind) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}

	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestLex_Identifiers(t *testing.T) {
	toks, err := Lex("let x = foo_bar", 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sameKinds(t, kinds(toks), []token.Kind{
		token.KwLet, token.Ident, token.Assign, token.Ident, token.Newline, token.Eof,
	})
}

func TestLex_IntegerBases(t *testing.T) {
	toks, err := Lex("0x1A 0o17 0b101 42", 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int64{26, 15, 5, 42}

	var got []int64
	for _, tok := range toks {
		if tok.Kind == token.IntLit {
			got = append(got, tok.Payload.(int64))
		}
	}

	if len(got) != len(want) {
		t.Fatalf("got %d int literals %v, want %v", len(got), got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("literal %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestLex_FloatLiteral(t *testing.T) {
	toks, err := Lex("3.14 2e10 1.5e-3", 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var floats []float64
	for _, tok := range toks {
		if tok.Kind == token.FloatLit {
			floats = append(floats, tok.Payload.(float64))
		}
	}

	if len(floats) != 3 {
		t.Fatalf("got %d floats, want 3: %v", len(floats), floats)
	}
}

func TestLex_StringEscapes(t *testing.T) {
	toks, err := Lex(`"a\nb\t\x41\u{1F600}"`, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(toks) < 1 || toks[0].Kind != token.StringLit {
		t.Fatalf("expected a string literal, got %v", kinds(toks))
	}

	got := toks[0].Payload.(string)
	want := "a\nb\tA\U0001F600"

	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLex_RawString(t *testing.T) {
	toks, err := Lex(`r"a\nb"`, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := toks[0].Payload.(string)
	want := `a\nb`

	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLex_InterpolatedString(t *testing.T) {
	toks, err := Lex(`"hi ${name}!"`, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if toks[0].Kind != token.InterpStringLit {
		t.Fatalf("expected InterpStringLit, got %s", toks[0].Kind)
	}

	segs := toks[0].Payload.([]token.InterpSegment)
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3: %+v", len(segs), segs)
	}

	if segs[0].Literal != "hi " || !segs[1].IsExpr || segs[1].ExprSource != "name" || segs[2].Literal != "!" {
		t.Errorf("unexpected segments: %+v", segs)
	}
}

func TestLex_BytesLiteral(t *testing.T) {
	toks, err := Lex(`b"abc"`, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := toks[0].Payload.([]byte)
	if string(got) != "abc" {
		t.Errorf("got %q, want %q", got, "abc")
	}
}

func TestLex_BytesLiteral_NonASCII(t *testing.T) {
	_, err := Lex("b\"é\"", 1, 0)
	if err == nil {
		t.Fatal("expected an error for non-ASCII byte literal")
	}
}

func TestLex_UnterminatedString(t *testing.T) {
	_, err := Lex(`"unterminated`, 1, 0)
	if err == nil {
		t.Fatal("expected an unterminated string error")
	}
}

func TestLex_Indentation(t *testing.T) {
	src := "if x\n  y\n  z\nw\n"

	toks, err := Lex(src, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sameKinds(t, kinds(toks), []token.Kind{
		token.KwIf, token.Ident, token.Newline,
		token.Indent, token.Ident, token.Newline, token.Ident, token.Newline,
		token.Dedent, token.Ident, token.Newline,
		token.Eof,
	})
}

func TestLex_InconsistentIndent(t *testing.T) {
	src := "if x\n  y\n z\n"

	_, err := Lex(src, 1, 0)
	if err == nil {
		t.Fatal("expected an inconsistent indentation error")
	}
}

func TestLex_ParenSuppressesNewline(t *testing.T) {
	src := "f(a,\nb)\n"

	toks, err := Lex(src, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sameKinds(t, kinds(toks), []token.Kind{
		token.Ident, token.LParen, token.Ident, token.Comma, token.Ident, token.RParen,
		token.Newline, token.Eof,
	})
}

func TestLex_MaximalMunchOperators(t *testing.T) {
	toks, err := Lex("a <=> b ?. c ?[0] d ?? e .. f ..= g", 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []token.Kind{
		token.Ident, token.Spaceship, token.Ident, token.QDot, token.Ident,
		token.QBracket, token.IntLit, token.RBracket, token.Ident, token.QQ, token.Ident,
		token.DotDot, token.Ident, token.DotDotEq, token.Ident, token.Newline, token.Eof,
	}

	sameKinds(t, kinds(toks), want)
}

func TestLex_Comments(t *testing.T) {
	toks, err := Lex("x // a comment\ny\n", 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sameKinds(t, kinds(toks), []token.Kind{
		token.Ident, token.Newline, token.Ident, token.Newline, token.Eof,
	})
}

func TestLex_Directive(t *testing.T) {
	toks, err := Lex("@lumen", 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if toks[0].Kind != token.Directive || toks[0].Payload.(string) != "lumen" {
		t.Errorf("got %v, want directive 'lumen'", toks[0])
	}
}

func TestLex_UnexpectedChar(t *testing.T) {
	_, err := Lex("a `", 1, 0)
	if err == nil {
		t.Fatal("expected an unexpected-character error")
	}
}

func TestLex_StartOffsetStitching(t *testing.T) {
	toks, err := Lex("x", 3, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if toks[0].Span.Start() != 100 {
		t.Errorf("got start %d, want 100", toks[0].Span.Start())
	}
}

func TestLex_OutOfI64RangeLiteralKeepsUnsignedMagnitude(t *testing.T) {
	toks, err := Lex("9223372036854775808", 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if toks[0].Kind != token.IntLit {
		t.Fatalf("got %v, want IntLit", toks[0].Kind)
	}

	mag, ok := toks[0].Payload.(uint64)
	if !ok || mag != 9223372036854775808 {
		t.Fatalf("got payload %#v, want uint64(9223372036854775808)", toks[0].Payload)
	}
}

func TestLex_InRangeLiteralStillInt64(t *testing.T) {
	toks, err := Lex("9223372036854775807", 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, ok := toks[0].Payload.(int64)
	if !ok || v != 9223372036854775807 {
		t.Fatalf("got payload %#v, want int64(9223372036854775807)", toks[0].Payload)
	}
}
