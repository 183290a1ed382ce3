// Package module implements import resolution: given a root source and a
// resolver callback mapping an import name to source text, it produces a
// transitively-loaded set of programs, detecting cycles and accumulating
// parse errors across every dependency (spec.md §4.4).
package module

import (
	"fmt"
	"strings"

	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lex"
	"github.com/lumen-lang/lumen/pkg/parser"
	"github.com/lumen-lang/lumen/pkg/source"
	"go.uber.org/multierr"
)

// Resolver maps an import name to its source text, or reports it cannot be
// found.
type Resolver func(name string) (src string, ok bool)

// CircularImportError names the import cycle detected while loading a
// module.
type CircularImportError struct {
	Cycle []string
}

func (e *CircularImportError) Error() string {
	return fmt.Sprintf("circular import: %s", strings.Join(e.Cycle, " -> "))
}

// Graph is the transitively-loaded result of resolving a root source's
// imports: every module's parsed program, keyed by import name, plus the
// load order (dependencies before dependents).
type Graph struct {
	Programs map[string]*ast.Program
	Order    []string
}

// Load parses rootName/rootSrc and transitively follows every ImportStmt it
// (and its dependencies) contain, using resolve to fetch each import's
// source text. Parse errors across every dependency are accumulated via
// multierr before returning.
func Load(rootName, rootSrc string, resolve Resolver) (*Graph, error) {
	l := &loader{
		resolve:  resolve,
		programs: map[string]*ast.Program{},
		loading:  map[string]bool{},
	}

	var err error
	if loadErr := l.load(rootName, rootSrc); loadErr != nil {
		err = multierr.Append(err, loadErr)
	}

	return &Graph{Programs: l.programs, Order: l.order}, err
}

type loader struct {
	resolve  Resolver
	programs map[string]*ast.Program
	loading  map[string]bool
	stack    []string
	order    []string
}

func (l *loader) load(name, src string) error {
	if l.loading[name] {
		cycle := append(append([]string{}, l.stack...), name)
		return &CircularImportError{Cycle: cycle}
	}

	if _, done := l.programs[name]; done {
		return nil
	}

	l.loading[name] = true
	l.stack = append(l.stack, name)

	defer func() {
		l.loading[name] = false
		l.stack = l.stack[:len(l.stack)-1]
	}()

	toks, lexErr := lex.Lex(src, 1, 0)

	var accum error
	if lexErr != nil {
		accum = multierr.Append(accum, lexErr)
	}

	prog, parseErr := parser.Parse(toks, source.NewFile(name, []byte(src)))
	if parseErr != nil {
		accum = multierr.Append(accum, parseErr)
	}

	l.programs[name] = prog
	l.order = append(l.order, name)

	for _, item := range prog.Items {
		imp, ok := item.(*ast.ImportStmt)
		if !ok {
			continue
		}

		depSrc, found := l.resolve(imp.Path)
		if !found {
			accum = multierr.Append(accum, fmt.Errorf("import %q: module not found", imp.Path))
			continue
		}

		if err := l.load(imp.Path, depSrc); err != nil {
			accum = multierr.Append(accum, err)
		}
	}

	l.order = append(l.order, name)

	return accum
}
