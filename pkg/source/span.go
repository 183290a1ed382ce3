// Package source provides the position-tracking primitives shared by every
// stage of the Lumen toolchain: rune-offset spans, line/column lookup and a
// source file abstraction that diagnostics are anchored to.
package source

import "fmt"

// Span identifies a contiguous run of runes in some source file by rune
// offset (the lexer indexes decoded text, as File does). Spans are carried through every stage of the pipeline (tokens,
// AST nodes, typed AST, LIR) so diagnostics can always point back at the
// original text, literate or raw.
type Span struct {
	start int
	end   int
}

// NewSpan constructs a span covering [start,end).
func NewSpan(start, end int) Span {
	if end < start {
		end = start
	}

	return Span{start, end}
}

// Start returns the offset of the first rune covered by this span.
func (s Span) Start() int { return s.start }

// End returns the offset one past the last rune covered by this span.
func (s Span) End() int { return s.end }

// Len returns the number of runes covered by this span.
func (s Span) Len() int { return s.end - s.start }

// Contains determines whether offset lies within this span.
func (s Span) Contains(offset int) bool {
	return offset >= s.start && offset < s.end
}

// Join returns the smallest span covering both s and other.
func (s Span) Join(other Span) Span {
	start := min(s.start, other.start)
	end := max(s.end, other.end)

	return Span{start, end}
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.start, s.end)
}
