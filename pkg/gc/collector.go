package gc

// Object is implemented by any heap value the collector can trace: its own
// Header (nil if untracked) plus the other Objects it holds a reference
// to. pkg/value.Value satisfies this directly, so VM registers and
// closure captures can be handed to Collect as roots with no adapter.
type Object interface {
	Header() *Header
	Children() []Object
}

// Stats summarizes one collection cycle, surfaced to callers (e.g. a
// `cache clear`-style diagnostic command or trace event) rather than
// silently discarded.
type Stats struct {
	BlocksSwept     int
	BlocksEvacuated int
	LinesReclaimed  int
}

// evacuationThreshold: a block whose live-line occupancy falls below this
// fraction after a sweep is compacted into a fresh block (spec.md §4.10
// "evacuation compacts sparsely occupied blocks to reduce fragmentation").
const evacuationThreshold = 0.25

// Collector runs mark-region cycle collection over every block a
// BlockAllocator currently owns.
type Collector struct {
	pool *BlockAllocator
}

// NewCollector constructs a collector over pool.
func NewCollector(pool *BlockAllocator) *Collector {
	return &Collector{pool: pool}
}

// Mark walks the object graph reachable from roots, returning the set of
// headers found live. This is the only place cycles matter: an object
// whose refcount is pinned above zero purely by a cycle among its peers
// is reclaimed here even though refcounting alone would never drop it.
func (c *Collector) Mark(roots []Object) map[*Header]bool {
	marked := make(map[*Header]bool)

	var visit func(Object)
	visit = func(o Object) {
		if o == nil {
			return
		}

		h := o.Header()
		if h == nil || marked[h] {
			return
		}

		marked[h] = true

		for _, child := range o.Children() {
			visit(child)
		}
	}

	for _, r := range roots {
		visit(r)
	}

	return marked
}

// Sweep clears every line whose header the mark pass did not reach,
// regardless of refcount, sets the mark bit for every line that did
// survive, and evacuates blocks that dropped below evacuationThreshold
// occupancy.
func (c *Collector) Sweep(marked map[*Header]bool) Stats {
	var stats Stats

	for _, b := range c.pool.Blocks() {
		for i, h := range b.lines[:b.next] {
			if h == nil {
				continue
			}

			switch {
			case marked[h]:
				b.mark.Set(uint(i))
			default:
				// Unreached from any root: either refcount already hit
				// zero, or it is pinned above zero only by a cycle among
				// peers the mark walk never reached from a root. Either
				// way nothing outside this graph can still observe it.
				b.lines[i] = nil
				b.mark.Clear(uint(i))
				stats.LinesReclaimed++
			}
		}

		stats.BlocksSwept++

		if b.next > 0 && float64(b.liveLines())/float64(b.next) < evacuationThreshold {
			c.evacuate(b)
			stats.BlocksEvacuated++
		}
	}

	return stats
}

// evacuate copies a block's surviving lines into a fresh block under the
// same ID and retires the sparse original, compacting fragmented space.
func (c *Collector) evacuate(old *Block) {
	fresh := newBlock(old.id)

	for _, h := range old.lines[:old.next] {
		if h != nil && h.Count() > 0 {
			fresh.place(h)
		}
	}

	c.pool.replace(old, fresh)
}

// Collect runs one full mark-sweep-evacuate cycle.
func (c *Collector) Collect(roots []Object) Stats {
	return c.Sweep(c.Mark(roots))
}
