package gc

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// LinesPerBlock is the number of header slots ("lines") a Block holds
// before a TLAB must refill from the shared BlockAllocator (spec.md §4.10
// "heap partitioned into lines within blocks").
const LinesPerBlock = 128

// Block is one fixed-size region of the Immix-style heap: a flat array of
// header slots plus a one-bit-per-line mark bitmap, mirroring the mark
// bitmap shape the corpus's own bitset abstraction uses for dense indexed
// sets (pkg/util/collection/bit.Set in the teacher repo), built here on
// the real bits-and-blooms/bitset library instead of a hand-rolled one.
type Block struct {
	id    int
	lines [LinesPerBlock]*Header
	next  int
	mark  *bitset.BitSet
}

func newBlock(id int) *Block {
	return &Block{id: id, mark: bitset.New(LinesPerBlock)}
}

// ID returns the block's identity, stable across evacuation.
func (b *Block) ID() int { return b.id }

func (b *Block) full() bool {
	return b.next >= LinesPerBlock
}

func (b *Block) place(h *Header) int {
	line := b.next
	b.lines[line] = h
	b.next++

	return line
}

// liveLines counts lines whose header still has at least one owner.
func (b *Block) liveLines() int {
	n := 0

	for _, h := range b.lines[:b.next] {
		if h != nil && h.Count() > 0 {
			n++
		}
	}

	return n
}

// BlockAllocator is the shared pool TLABs refill from. Acquire/replace are
// the only mutating operations, both mutex-protected since multiple
// workers' arenas may refill concurrently (spec.md §4.11 shared-resource
// model: "the injection queue is mutex-protected").
type BlockAllocator struct {
	mu     sync.Mutex
	blocks []*Block
	nextID int
}

// NewBlockAllocator constructs an empty pool.
func NewBlockAllocator() *BlockAllocator {
	return &BlockAllocator{}
}

// Acquire hands out a fresh, empty block, registering it with the pool so
// the collector's sweep can reach it.
func (p *BlockAllocator) Acquire() *Block {
	p.mu.Lock()
	defer p.mu.Unlock()

	b := newBlock(p.nextID)
	p.nextID++
	p.blocks = append(p.blocks, b)

	return b
}

// Blocks returns a snapshot of every block currently live in the pool.
func (p *BlockAllocator) Blocks() []*Block {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*Block, len(p.blocks))
	copy(out, p.blocks)

	return out
}

// replace swaps old for fresh at the same pool slot, used by evacuation to
// compact a sparsely occupied block into a denser one under the same ID.
func (p *BlockAllocator) replace(old, fresh *Block) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, b := range p.blocks {
		if b == old {
			p.blocks[i] = fresh
			return
		}
	}
}
