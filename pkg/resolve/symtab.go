package resolve

import "github.com/lumen-lang/lumen/pkg/source"

// DefKind identifies which namespace a definition lives in (spec.md §3
// "Symbol table... separate namespaces for types, cells, tools, effects,
// and local bindings").
type DefKind uint8

const (
	DefType DefKind = iota
	DefCell
	DefTool
	DefEffect
	DefLocal
)

// Def is a single binding: a name resolved to its definition site.
type Def struct {
	Kind DefKind
	Name string
	Span source.Span
	Mut  bool // meaningful only for DefLocal
}

// Table is the resolved symbol table: one namespace per DefKind, plus a
// stack of lexical scopes for locals.
type Table struct {
	Types   map[string]Def
	Cells   map[string]Def
	Tools   map[string]Def
	Effects map[string]Def
	scopes  []map[string]Def
}

// NewTable constructs an empty symbol table with one (global) local scope.
func NewTable() *Table {
	return &Table{
		Types:   map[string]Def{},
		Cells:   map[string]Def{},
		Tools:   map[string]Def{},
		Effects: map[string]Def{},
		scopes:  []map[string]Def{{}},
	}
}

func (t *Table) pushScope() { t.scopes = append(t.scopes, map[string]Def{}) }

func (t *Table) popScope() { t.scopes = t.scopes[:len(t.scopes)-1] }

func (t *Table) top() map[string]Def { return t.scopes[len(t.scopes)-1] }

// DeclareLocal binds name in the innermost scope, returning false if it
// would shadow an existing binding in that same scope (spec.md §4.5
// "Duplicate for shadowing at the same scope").
func (t *Table) DeclareLocal(def Def) bool {
	if _, exists := t.top()[def.Name]; exists {
		return false
	}

	t.top()[def.Name] = def

	return true
}

// LookupLocal searches the scope stack innermost-first.
func (t *Table) LookupLocal(name string) (Def, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if d, ok := t.scopes[i][name]; ok {
			return d, true
		}
	}

	return Def{}, false
}
