package lir

// Width selects which fixed-width encoding a cell's instructions use.
type Width uint8

// Instruction encodings (spec.md §3 "Instruction").
const (
	// Width32 packs into a single uint32: [op:8][a:8][b:8][c:8], with
	// alternate views ABx (a:8, bx:16), Ax (ax:24 unsigned), sAx (sax:24
	// signed). 256 registers/cell, 64K constants/cell, +-8M jump range.
	Width32 Width = iota
	// Width64 packs into a uint64: [op:8][a:16][b:16][c:16][pad:8]. ABx
	// uses a 32-bit constant index; Ax uses a 48-bit immediate. 65536
	// registers/cell.
	Width64
)

// Instruction is the in-memory (unpacked) form of one LIR instruction.
// Lowering and the VM both operate on this form; Pack32/Pack64 produce the
// bit-packed encodings only for serialization and hashing.
type Instruction struct {
	Op Opcode
	A  int64
	B  int64
	C  int64
}

// ABx returns the alternate (A, Bx) view: A narrow, Bx wide (used by LoadK
// and jump-target-bearing opcodes).
func (i Instruction) ABx() (a int64, bx int64) { return i.A, i.B }

// Ax returns the alternate wide-immediate view used by unconditional jumps.
func (i Instruction) Ax() int64 { return i.A }

const (
	width32RegMax   = 1<<8 - 1
	width32ConstMax = 1<<16 - 1
	width32AxBits   = 24
	width64RegMax   = 1<<16 - 1
	width64ConstMax = 1<<32 - 1
	width64AxBits   = 48
)

// Pack32 encodes i into the 32-bit [op:8][a:8][b:8][c:8] form. The caller
// must ensure i's fields fit Width32's ranges; Fits32 checks this. Only the
// ABC view is packed: an ABx constant index or an Ax/sAx immediate wider
// than 8 bits does not fit this form.
func Pack32(i Instruction) uint32 {
	return uint32(byte(i.Op))<<24 | uint32(byte(i.A))<<16 | uint32(byte(i.B))<<8 | uint32(byte(i.C))
}

// Unpack32 decodes a 32-bit packed instruction word.
func Unpack32(word uint32) Instruction {
	return Instruction{
		Op: Opcode(word >> 24 & 0xff),
		A:  int64(word >> 16 & 0xff),
		B:  int64(word >> 8 & 0xff),
		C:  int64(word & 0xff),
	}
}

// Fits32 reports whether i's operands fit within the 32-bit encoding's
// per-field ranges (each of A, B, C is an unsigned byte in this packing).
func Fits32(i Instruction) bool {
	return i.A >= 0 && i.A <= width32RegMax && i.B >= 0 && i.B <= width32RegMax && i.C >= 0 && i.C <= width32RegMax
}

// Pack64 encodes i into the 64-bit [op:8][a:16][b:16][c:16][pad:8] form.
// Only the ABC view is packed: a constant index or immediate wider than 16
// bits does not fit this form.
func Pack64(i Instruction) uint64 {
	return uint64(byte(i.Op))<<56 | uint64(uint16(i.A))<<40 | uint64(uint16(i.B))<<24 | uint64(uint16(i.C))<<8
}

// Unpack64 decodes a 64-bit packed instruction word.
func Unpack64(word uint64) Instruction {
	return Instruction{
		Op: Opcode(word >> 56 & 0xff),
		A:  int64(word >> 40 & 0xffff),
		B:  int64(word >> 24 & 0xffff),
		C:  int64(word >> 8 & 0xffff),
	}
}

// RegisterWidth returns the maximum register index Width w can address.
func (w Width) RegisterWidth() int64 {
	if w == Width32 {
		return width32RegMax
	}

	return width64RegMax
}

// ConstantWidth returns the maximum constant-pool index Width w can address
// via the ABx view.
func (w Width) ConstantWidth() int64 {
	if w == Width32 {
		return width32ConstMax
	}

	return width64ConstMax
}
