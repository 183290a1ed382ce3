// Package gc implements Lumen's own managed-memory layer atop the host
// runtime: an atomic refcount header on every shared heap value (spec.md
// §4.10 "reference counting for value sharing"), and an Immix-style
// mark-region collector for the cycles refcounting alone cannot reclaim.
// Go's garbage collector remains the ultimate backstop — this package
// models Lumen's own accounting on top of it, the way a hosted VM tracks
// its guest heap independently of the host's memory manager.
package gc

import "sync/atomic"

// Header is the refcount every shared heap value (List, Map, Set, Record,
// Closure) carries. A nil *Header means the value is not
// heap-tracked (e.g. a constant-pool literal, never mutated in place).
type Header struct {
	refcount int32
}

// NewHeader allocates a header for a freshly created value, owned once by
// the register that holds it.
func NewHeader() *Header {
	return &Header{refcount: 1}
}

// Retain records an additional owner (e.g. a register aliasing the same
// value after a Move or argument copy).
func (h *Header) Retain() {
	if h == nil {
		return
	}

	atomic.AddInt32(&h.refcount, 1)
}

// Release drops one owner, returning true if the count reached zero.
func (h *Header) Release() bool {
	if h == nil {
		return false
	}

	return atomic.AddInt32(&h.refcount, -1) == 0
}

// SoleOwner reports whether exactly one reference to this value remains,
// the condition under which in-place mutation is safe without violating
// another owner's view (spec.md §5 "exclusive mutation requires the 'sole
// owner' check (refcount == 1) — otherwise clone").
func (h *Header) SoleOwner() bool {
	if h == nil {
		return true
	}

	return atomic.LoadInt32(&h.refcount) == 1
}

// Count returns the current refcount, mainly for diagnostics and tests.
func (h *Header) Count() int32 {
	if h == nil {
		return 0
	}

	return atomic.LoadInt32(&h.refcount)
}
