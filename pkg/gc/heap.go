package gc

// Heap combines the shared block pool, a default arena for single-worker
// callers (e.g. the `run` CLI command executing outside the scheduler),
// and the cycle collector. The scheduler instead calls NewArena once per
// worker so TLAB bump-allocation stays contention-free (spec.md §4.11).
type Heap struct {
	pool      *BlockAllocator
	collector *Collector
	arena     *Arena
}

// NewHeap constructs an empty heap.
func NewHeap() *Heap {
	pool := NewBlockAllocator()

	return &Heap{pool: pool, collector: NewCollector(pool), arena: NewArena(pool)}
}

// NewArena hands out a fresh per-worker TLAB backed by this heap's shared
// block pool.
func (h *Heap) NewArena() *Arena {
	return NewArena(h.pool)
}

// NewHeader allocates and registers a header for a freshly created heap
// value using the heap's default arena.
func (h *Heap) NewHeader() *Header {
	hdr := NewHeader()
	h.arena.Allocate(hdr)

	return hdr
}

// Collect runs one mark-sweep-evacuate cycle rooted at roots.
func (h *Heap) Collect(roots []Object) Stats {
	return h.collector.Collect(roots)
}
