package source

import "testing"

func TestSpan_JoinCoversBoth(t *testing.T) {
	a := NewSpan(2, 5)
	b := NewSpan(8, 10)

	joined := a.Join(b)
	if joined.Start() != 2 || joined.End() != 10 {
		t.Fatalf("joined = %v, want [2,10)", joined)
	}
}

func TestSpan_ContainsRespectsHalfOpenRange(t *testing.T) {
	s := NewSpan(3, 6)

	if s.Contains(2) || s.Contains(6) {
		t.Fatal("span should not contain its boundary-exclusive end or anything before start")
	}

	if !s.Contains(3) || !s.Contains(5) {
		t.Fatal("span should contain its start and every offset up to (not including) its end")
	}
}

func TestFile_TextReturnsSpanSubstring(t *testing.T) {
	f := NewFile("test.lm", []byte("cell add()\n  return 1\n"))

	text := f.Text(NewSpan(0, 4))
	if text != "cell" {
		t.Fatalf("text = %q, want %q", text, "cell")
	}
}

func TestFile_LineColComputesOneBasedPosition(t *testing.T) {
	f := NewFile("test.lm", []byte("abc\ndef\nghi"))

	line, col := f.LineCol(5) // 'e' on the second line
	if line != 2 || col != 2 {
		t.Fatalf("line,col = %d,%d, want 2,2", line, col)
	}

	line, col = f.LineCol(0)
	if line != 1 || col != 1 {
		t.Fatalf("line,col = %d,%d, want 1,1", line, col)
	}
}

func TestFile_FindFirstEnclosingLineReturnsCorrectLine(t *testing.T) {
	f := NewFile("test.lm", []byte("first\nsecond\nthird"))

	l := f.FindFirstEnclosingLine(NewSpan(6, 8)) // inside "second"
	if l.Number() != 2 || l.String() != "second" {
		t.Fatalf("got line %d (%q), want 2 (\"second\")", l.Number(), l.String())
	}
}

func TestFile_SyntaxErrorRoundTripsFileSpanMessage(t *testing.T) {
	f := NewFile("test.lm", []byte("bad token"))

	err := f.SyntaxError(NewSpan(0, 3), "unexpected token")
	if err.File() != f || err.Message() != "unexpected token" {
		t.Fatalf("got file=%v message=%q", err.File(), err.Message())
	}
}
