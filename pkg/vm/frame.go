package vm

import "github.com/lumen-lang/lumen/pkg/value"

// Frame is a per-cell activation record: the executing cell's identity, the
// program counter, the register file, and (for a closure invocation) the
// captured-variable environment it reads via CaptureLoad (spec.md §3
// "Frame: per-cell activation record holding cell_index, ip, base_reg, and a
// local-name map for diagnostics").
type Frame struct {
	CellName  string
	IP        int64
	Regs      []value.Value
	Captures  map[string]value.Value
	ReturnTo  int64 // register in the caller's frame that receives our result
	Handlers  int   // handler-stack depth slot; no VM code sets it and error unwinding does not read it
}

// NewFrame constructs a frame for cellName with a register file of the
// given size.
func NewFrame(cellName string, registers int64) Frame {
	return Frame{CellName: cellName, Regs: make([]value.Value, registers)}
}
