// Package markdown extracts compilable Lumen source from literate ".lumen.md"
// documents: fenced code blocks tagged "lumen" are concatenated (each
// remembering its origin offset so diagnostics point back at the Markdown),
// and directives are collected from both prose lines and HTML comments.
package markdown

import (
	"strings"
)

// Directive is a single literate directive, e.g. "@package foo" or
// "<!-- @doc_mode narrative -->".
type Directive struct {
	Name  string
	Value string
	Line  int
}

// Block is one fenced ```lumen code block extracted from a document.
type Block struct {
	Source     string
	StartLine  int
	StartByte  int // byte offset of Source's first rune within the original document
}

// Document is the result of extracting a literate source file: the fenced
// code blocks in order, concatenated for lexing, plus any directives found.
type Document struct {
	Blocks     []Block
	Directives []Directive
}

// Concat joins every extracted block's source with newlines, returning the
// combined text together with a function mapping an offset in that combined
// text back to the document's absolute byte offset (for span stitching into
// the lexer).
func (d *Document) Concat() (text string, toAbsolute func(offset int) int) {
	var sb strings.Builder

	type run struct {
		relStart, absStart, length int
	}

	var runs []run

	for _, b := range d.Blocks {
		runs = append(runs, run{sb.Len(), b.StartByte, len(b.Source)})
		sb.WriteString(b.Source)
		sb.WriteByte('\n')
	}

	text = sb.String()

	toAbsolute = func(offset int) int {
		for i := len(runs) - 1; i >= 0; i-- {
			r := runs[i]
			if offset >= r.relStart {
				d := offset - r.relStart
				if d > r.length {
					d = r.length
				}

				return r.absStart + d
			}
		}

		return 0
	}

	return text, toAbsolute
}

const fenceMarker = "```"

// Extract scans a literate Markdown document for fenced code blocks tagged
// "lumen" (case-insensitive) and for directive lines, either written in
// prose as "@name value" or hidden in an HTML comment
// "<!-- @name value -->".
func Extract(doc string) *Document {
	lines := strings.Split(doc, "\n")
	result := &Document{}

	byteOffset := 0
	inFence := false
	fenceIsLumen := false
	var blockLines []string
	blockStartLine := 0
	blockStartByte := 0

	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)

		switch {
		case !inFence && strings.HasPrefix(trimmed, fenceMarker):
			tag := strings.ToLower(strings.TrimSpace(trimmed[len(fenceMarker):]))
			inFence = true
			fenceIsLumen = tag == "lumen"
			blockLines = nil
			blockStartLine = lineNo + 1
			blockStartByte = byteOffset + len(line) + 1
		case inFence && strings.HasPrefix(trimmed, fenceMarker):
			inFence = false

			if fenceIsLumen {
				result.Blocks = append(result.Blocks, Block{
					Source:    strings.Join(blockLines, "\n"),
					StartLine: blockStartLine,
					StartByte: blockStartByte,
				})
			}
		case inFence:
			if fenceIsLumen {
				blockLines = append(blockLines, line)
			}
		default:
			if d, ok := parseProseDirective(trimmed, lineNo); ok {
				result.Directives = append(result.Directives, d)
			} else if d, ok := parseCommentDirective(trimmed, lineNo); ok {
				result.Directives = append(result.Directives, d)
			}
		}

		byteOffset += len(line) + 1
	}

	return result
}

func parseProseDirective(line string, lineNo int) (Directive, bool) {
	if !strings.HasPrefix(line, "@") {
		return Directive{}, false
	}

	return splitDirective(line[1:], lineNo)
}

func parseCommentDirective(line string, lineNo int) (Directive, bool) {
	const open, close = "<!--", "-->"

	if !strings.HasPrefix(line, open) || !strings.HasSuffix(line, close) {
		return Directive{}, false
	}

	inner := strings.TrimSpace(line[len(open) : len(line)-len(close)])
	if !strings.HasPrefix(inner, "@") {
		return Directive{}, false
	}

	return splitDirective(inner[1:], lineNo)
}

func splitDirective(body string, lineNo int) (Directive, bool) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Directive{}, false
	}

	fields := strings.SplitN(body, " ", 2)
	name := fields[0]
	value := ""

	if len(fields) == 2 {
		value = strings.TrimSpace(fields[1])
	}

	if name == "" {
		return Directive{}, false
	}

	return Directive{Name: name, Value: value, Line: lineNo}, true
}
