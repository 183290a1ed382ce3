// Package lower translates a type-checked AST into an *lir.Module: register
// allocation, constant pool deduplication, and instruction emission with
// jump backpatching (spec.md §4.8).
package lower

import "github.com/lumen-lang/lumen/pkg/value"

// regAlloc is a per-cell linear-scan register allocator: a monotonically
// increasing counter assigns registers, parameters get the lowest indices,
// and a bind/unbind stack supports let-bound name shadowing (spec.md §4.8).
type regAlloc struct {
	next      int64
	highWater int64
	named     []namedReg // stack of named bindings, innermost last
}

type namedReg struct {
	name string
	reg  int64
}

// alloc reserves the next free anonymous register for an expression
// temporary.
func (r *regAlloc) alloc() int64 {
	reg := r.next
	r.next++

	if r.next > r.highWater {
		r.highWater = r.next
	}

	return reg
}

// bind reserves a register and associates it with name, so later lookups
// via resolve find it (spec.md §4.8 "bind/unbind API supports shadowing").
func (r *regAlloc) bind(name string) int64 {
	reg := r.alloc()
	r.named = append(r.named, namedReg{name: name, reg: reg})

	return reg
}

// unbind pops the n most recently bound names, restoring the prior scope.
// It does not reclaim their registers: once allocated within a cell, a
// register index is never reused, matching the teacher's conservative
// linear-scan posture (simplicity over register pressure).
func (r *regAlloc) unbind(n int) {
	r.named = r.named[:len(r.named)-n]
}

// resolve looks up a named register innermost-scope-first.
func (r *regAlloc) resolve(name string) (int64, bool) {
	for i := len(r.named) - 1; i >= 0; i-- {
		if r.named[i].name == name {
			return r.named[i].reg, true
		}
	}

	return 0, false
}

// registers returns the high-water mark: the total register count the
// cell's Registers field must report (spec.md §3 "registers field >=
// maximum register index referenced").
func (r *regAlloc) registers() int64 { return r.highWater }

// constPool deduplicates literal constants within a single cell (spec.md
// §4.8 "Constant pool: literals deduplicated per cell").
type constPool struct {
	values []value.Value
	index  map[string]int64
}

func newConstPool() *constPool {
	return &constPool{index: map[string]int64{}}
}

func (p *constPool) intern(v value.Value) int64 {
	key := constKey(v)

	if idx, ok := p.index[key]; ok {
		return idx
	}

	idx := int64(len(p.values))
	p.values = append(p.values, v)
	p.index[key] = idx

	return idx
}

// constKey produces a stable dedup key for v. Collection-typed constants
// are never interned (each literal emits fresh construction instructions
// instead), so only scalar kinds need a key here.
func constKey(v value.Value) string {
	return v.AsString() + "#" + kindTag(v)
}

func kindTag(v value.Value) string {
	switch v.Kind {
	case value.KindNull:
		return "n"
	case value.KindBool:
		return "b"
	case value.KindInt:
		return "i"
	case value.KindFloat:
		return "f"
	case value.KindString:
		return "s"
	case value.KindBytes:
		return "y"
	default:
		return "?"
	}
}
