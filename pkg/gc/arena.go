package gc

// Arena is a thread-local allocation buffer: it bump-allocates header
// slots from its current block and only touches the shared pool's mutex
// when that block fills up (spec.md §4.10 "each worker bumps a pointer in
// its local arena, refilling from the global heap in bulk"). The
// scheduler constructs one Arena per worker via Heap.NewArena so
// allocation contention is confined to block refills, not every object.
type Arena struct {
	pool    *BlockAllocator
	current *Block
}

// NewArena constructs a TLAB backed by pool.
func NewArena(pool *BlockAllocator) *Arena {
	return &Arena{pool: pool}
}

// Allocate places h in the arena's current block, refilling from the pool
// first if that block is full, and returns the block/line coordinates the
// collector later uses to address it.
func (a *Arena) Allocate(h *Header) (blockID, line int) {
	if a.current == nil || a.current.full() {
		a.current = a.pool.Acquire()
	}

	line = a.current.place(h)

	return a.current.id, line
}
