package source

import (
	"fmt"
	"os"
)

// ReadFiles reads a given set of source files from disk, or returns the
// first error encountered.
func ReadFiles(filenames ...string) ([]*File, error) {
	files := make([]*File, len(filenames))

	for i, name := range filenames {
		bytes, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}

		files[i] = NewFile(name, bytes)
	}

	return files, nil
}

// File represents a single source file (literate or raw) held in memory for
// the duration of compilation.
type File struct {
	filename string
	contents []rune
}

// NewFile constructs a source file from its raw bytes.
func NewFile(filename string, bytes []byte) *File {
	return &File{filename, []rune(string(bytes))}
}

// Filename returns the name this file was loaded under.
func (f *File) Filename() string { return f.filename }

// Contents returns the full decoded contents of this file.
func (f *File) Contents() []rune { return f.contents }

// Text returns the substring of the file covered by span.
func (f *File) Text(span Span) string {
	start, end := clamp(span.Start(), len(f.contents)), clamp(span.End(), len(f.contents))
	return string(f.contents[start:end])
}

// SyntaxError constructs a diagnostic anchored to a span within this file.
func (f *File) SyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{f, span, msg}
}

// LineCol converts a rune offset into a 1-based (line, column) pair. Columns
// count runes, not bytes, since the lexer operates over decoded text.
func (f *File) LineCol(offset int) (line, col int) {
	offset = clamp(offset, len(f.contents))
	line, col = 1, 1

	for i := 0; i < offset; i++ {
		if f.contents[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	return line, col
}

// Line describes a single physical line of a source file.
type Line struct {
	text   []rune
	span   Span
	number int
}

// String returns the text of this line.
func (l Line) String() string { return string(l.text[l.span.Start():l.span.End()]) }

// Number returns the 1-based line number.
func (l Line) Number() int { return l.number }

// Span returns the span of this line within the source file.
func (l Line) Span() Span { return l.span }

// FindFirstEnclosingLine returns the first physical line which encloses the
// start of span. A span beyond the end of the file resolves to the last line.
func (f *File) FindFirstEnclosingLine(span Span) Line {
	index := span.Start()
	num, start := 1, 0

	for i := 0; i < len(f.contents); i++ {
		if i == index {
			return Line{f.contents, NewSpan(start, endOfLine(index, f.contents)), num}
		} else if f.contents[i] == '\n' {
			num++
			start = i + 1
		}
	}

	return Line{f.contents, NewSpan(start, len(f.contents)), num}
}

func endOfLine(index int, text []rune) int {
	for i := index; i < len(text); i++ {
		if text[i] == '\n' {
			return i
		}
	}

	return len(text)
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}

	if v > max {
		return max
	}

	return v
}

// SyntaxError is a structured diagnostic retaining the span in the original
// source file where it arose.
type SyntaxError struct {
	file *File
	span Span
	msg  string
}

// NewSyntaxError constructs a syntax error not anchored to any file (used by
// stages, such as the lexer over a literate fragment, that work from a raw
// string rather than a *File).
func NewSyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{nil, span, msg}
}

// File returns the source file this error was raised against, or nil.
func (e *SyntaxError) File() *File { return e.file }

// Span returns the span this error covers.
func (e *SyntaxError) Span() Span { return e.span }

// Message returns the human-readable error message.
func (e *SyntaxError) Message() string { return e.msg }

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.file != nil {
		line, col := e.file.LineCol(e.span.Start())
		return fmt.Sprintf("%s:%d:%d: %s", e.file.Filename(), line, col, e.msg)
	}

	return fmt.Sprintf("%d:%d: %s", e.span.Start(), e.span.End(), e.msg)
}

// FirstEnclosingLine returns the first line of the owning file enclosing this
// error's span, panicking if this error has no owning file.
func (e *SyntaxError) FirstEnclosingLine() Line {
	return e.file.FindFirstEnclosingLine(e.span)
}
