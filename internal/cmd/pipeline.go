package cmd

import (
	"fmt"
	"path"
	"strings"

	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/constraint"
	"github.com/lumen-lang/lumen/pkg/diag"
	"github.com/lumen-lang/lumen/pkg/lex"
	"github.com/lumen-lang/lumen/pkg/lir"
	"github.com/lumen-lang/lumen/pkg/lower"
	"github.com/lumen-lang/lumen/pkg/markdown"
	"github.com/lumen-lang/lumen/pkg/parser"
	"github.com/lumen-lang/lumen/pkg/resolve"
	"github.com/lumen-lang/lumen/pkg/source"
	"github.com/lumen-lang/lumen/pkg/trace"
	"github.com/lumen-lang/lumen/pkg/types"
)

// isLiterate reports whether filename carries one of the literate source
// extensions (spec.md §6 "Source file extensions").
func isLiterate(filename string) bool {
	return strings.HasSuffix(filename, ".lm.md") || strings.HasSuffix(filename, ".lumen.md")
}

// loadSource reads filename, extracting fenced lumen blocks from literate
// documents, and returns a source.File over the compilable text. For
// literate sources this is the concatenated block text, not the raw
// Markdown, so diagnostic positions are reported against the extracted
// source rather than original document line numbers — stitching spans back
// through markdown.Document.Concat's offset map is left for the editor/LSP
// surface this CLI does not implement.
func loadSource(filename string) (*source.File, error) {
	files, err := source.ReadFiles(filename)
	if err != nil {
		return nil, err
	}

	raw := files[0]

	if !isLiterate(filename) {
		return raw, nil
	}

	doc := markdown.Extract(string(raw.Contents()))
	concat, _ := doc.Concat()

	return source.NewFile(filename, []byte(concat)), nil
}

// compileResult bundles everything a CLI command might need after a
// successful compile.
type compileResult struct {
	file    *source.File
	module  *lir.Module
	program *ast.Program
}

// compile runs the full pipeline (lex -> parse -> resolve -> type-check ->
// constraint-validate -> lower) over filename, returning the LIR module on
// success or a list of diagnostics on failure.
func compile(filename string) (*compileResult, []diag.Diagnostic, error) {
	file, err := loadSource(filename)
	if err != nil {
		return nil, nil, err
	}

	text := string(file.Contents())

	tokens, lexErr := lex.Lex(text, 1, 0)
	if lexErr != nil {
		return nil, []diag.Diagnostic{diag.New(diag.Error, file, source.NewSpan(0, 0), lexErr.Error())}, nil
	}

	prog, diags := parser.ParseProgramWithRecovery(tokens, file)
	if len(diags) > 0 {
		return nil, diags, nil
	}

	if _, errs := resolve.Partial(prog); len(errs) > 0 {
		return nil, diagsFromSpanned(file, errs, func(e *resolve.Error) (source.Span, string) {
			return e.Span, e.Error()
		}), nil
	}

	typed, typeErrs := types.Partial(prog)
	if len(typeErrs) > 0 {
		return nil, diagsFromSpanned(file, typeErrs, func(e *types.Error) (source.Span, string) {
			return e.Span, e.Error()
		}), nil
	}

	if constraintErrs := constraint.ValidatePartial(prog); len(constraintErrs) > 0 {
		return nil, diagsFromSpanned(file, constraintErrs, func(e *constraint.Error) (source.Span, string) {
			return e.Span, e.Error()
		}), nil
	}

	docHash := trace.Sha256Hash(text)

	mod, lowerErr := lower.Lower(prog, typed, docHash)
	if lowerErr != nil {
		return nil, []diag.Diagnostic{diag.New(diag.Error, file, source.NewSpan(0, 0), lowerErr.Error())}, nil
	}

	return &compileResult{file: file, module: mod, program: prog}, nil, nil
}

func diagsFromSpanned[E error](file *source.File, errs []E, extract func(E) (source.Span, string)) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(errs))

	for _, e := range errs {
		span, msg := extract(e)
		out = append(out, diag.New(diag.Error, file, span, msg))
	}

	return out
}

// printDiagnostics renders diagnostics in "file:line:col: severity: message"
// form, one per line, with any hints indented beneath.
func printDiagnostics(filename string, diags []diag.Diagnostic) {
	for _, d := range diags {
		loc := fmt.Sprintf("%s:%d:%d", path.Clean(filename), d.Range.Start.Line+1, d.Range.Start.Character+1)
		fmt.Printf("%s: %s: %s\n", loc, d.Severity, d.Message)

		for _, hint := range d.Hints {
			fmt.Printf("  hint: %s\n", hint)
		}
	}
}
