package lir

import "github.com/lumen-lang/lumen/pkg/value"

// FieldDescriptor describes one record field's layout.
type FieldDescriptor struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TypeDescriptor describes a record layout or an enum's variant set.
type TypeDescriptor struct {
	Name     string            `json:"name"`
	IsEnum   bool              `json:"is_enum"`
	Fields   []FieldDescriptor `json:"fields,omitempty"`
	Variants []string          `json:"variants,omitempty"`
}

// Cell is one compiled function: its parameter shape, register file, and
// instruction sequence.
type Cell struct {
	Name       string        `json:"name"`
	Params     []string      `json:"params"`
	ReturnType string        `json:"return_type,omitempty"`
	Registers  int64         `json:"registers"`
	Width      Width         `json:"width"`
	Constants  []value.Value `json:"constants"`
	Instrs     []Instruction `json:"instructions"`
}

// EffectDescriptor describes a declared effect signature.
type EffectDescriptor struct {
	Name       string   `json:"name"`
	Params     []string `json:"params"`
	ReturnType string   `json:"return_type,omitempty"`
}

// EffectBind associates a handler cell with the effect it implements.
type EffectBind struct {
	Effect  string `json:"effect"`
	Handler string `json:"handler"`
}

// HandlerDescriptor describes a compiled handler block.
type HandlerDescriptor struct {
	Name    string   `json:"name"`
	Effects []string `json:"effects"`
	Cell    string   `json:"cell"`
}

// ToolDescriptor and PolicyDescriptor are placeholders for the external
// tool/policy surfaces referenced by the wire format (spec.md §6); the core
// toolchain only round-trips them, it does not interpret their contents.
type ToolDescriptor struct {
	Name string `json:"name"`
}

type PolicyDescriptor struct {
	Name string `json:"name"`
}

// Module is the versioned, serializable LIR bundle produced by lowering and
// consumed by the VM (spec.md §3 "LIR module", §6 "LIR module
// serialization").
type Module struct {
	Version  int                 `json:"version"`
	DocHash  string              `json:"doc_hash"`
	Strings  []string            `json:"strings"`
	Types    []TypeDescriptor    `json:"types"`
	Cells    []Cell              `json:"cells"`
	Tools    []ToolDescriptor    `json:"tools,omitempty"`
	Policies []PolicyDescriptor  `json:"policies,omitempty"`
	Agents   []string            `json:"agents,omitempty"`
	Addons   []string            `json:"addons,omitempty"`
	Effects  []EffectDescriptor  `json:"effects,omitempty"`
	Binds    []EffectBind        `json:"effect_binds,omitempty"`
	Handlers []HandlerDescriptor `json:"handlers,omitempty"`
}

// CurrentVersion is the LIR wire format version this package emits.
const CurrentVersion = 1

// NewModule constructs an empty module with the current wire version.
func NewModule(docHash string) *Module {
	return &Module{Version: CurrentVersion, DocHash: docHash}
}

// CellByName finds a cell by name, returning (nil, false) if absent.
func (m *Module) CellByName(name string) (*Cell, bool) {
	for i := range m.Cells {
		if m.Cells[i].Name == name {
			return &m.Cells[i], true
		}
	}

	return nil, false
}
