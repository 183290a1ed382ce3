// Package diag defines the LSP-style diagnostic types shared by every
// compiler stage's recovery/partial-result path (spec.md §6 "Diagnostics
// format"). It wires go.lsp.dev/protocol's 0-based Range/Position types
// without running an LSP server: these are plain value types consumed by the
// `check` CLI command and by future incremental (partial-resolution)
// consumers.
package diag

import (
	"github.com/lumen-lang/lumen/pkg/source"
	"go.lsp.dev/protocol"
)

// Severity mirrors spec.md §6: "severity in {error, warning}".
type Severity uint8

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}

	return "error"
}

// Diagnostic is one reported problem, carrying an LSP-style 0-based range
// for the primary span plus optional secondary spans and hints.
type Diagnostic struct {
	Severity  Severity
	Message   string
	Range     protocol.Range
	Secondary []protocol.Range
	Hints     []string
}

// FromSpan converts a byte-offset Span plus its owning file into an LSP
// 0-based Range.
func FromSpan(file *source.File, span source.Span) protocol.Range {
	startLine, startCol := file.LineCol(span.Start())
	endLine, endCol := file.LineCol(span.End())

	return protocol.Range{
		Start: protocol.Position{Line: uint32(startLine - 1), Character: uint32(startCol - 1)},
		End:   protocol.Position{Line: uint32(endLine - 1), Character: uint32(endCol - 1)},
	}
}

// New constructs a Diagnostic anchored to span within file.
func New(severity Severity, file *source.File, span source.Span, message string) Diagnostic {
	return Diagnostic{Severity: severity, Message: message, Range: FromSpan(file, span)}
}

// WithHint appends a hint to d and returns it, for fluent construction.
func (d Diagnostic) WithHint(hint string) Diagnostic {
	d.Hints = append(d.Hints, hint)
	return d
}
