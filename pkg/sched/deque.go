package sched

import "sync"

// Deque is a per-worker task queue: the owning worker pushes and pops at
// the tail (LIFO, cheap pending-work reuse for cache locality); idle peers
// steal from the head (FIFO from the stealer's perspective, so a thief
// takes the oldest-queued work rather than competing with the owner for
// the most recent).
//
// True lock-free CAS deques (Chase-Lev style) appear nowhere in the
// example corpus, so this one structure is built on a mutex-guarded slice
// rather than a pack-grounded lock-free design — the one place this
// implementation falls back to stdlib primitives alone (see DESIGN.md).
type Deque struct {
	mu    sync.Mutex
	items []*ScheduledTask
}

// NewDeque constructs an empty deque.
func NewDeque() *Deque {
	return &Deque{}
}

// PushBack adds t to the tail; only the owning worker calls this.
func (d *Deque) PushBack(t *ScheduledTask) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.items = append(d.items, t)
}

// PopBack removes and returns the tail; only the owning worker calls this.
func (d *Deque) PopBack() (*ScheduledTask, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.items) == 0 {
		return nil, false
	}

	last := len(d.items) - 1
	t := d.items[last]
	d.items = d.items[:last]

	return t, true
}

// StealFront removes and returns the head; called by a peer worker when
// its own deque and the injection queue are both empty.
func (d *Deque) StealFront() (*ScheduledTask, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.items) == 0 {
		return nil, false
	}

	t := d.items[0]
	d.items = d.items[1:]

	return t, true
}

// Len reports the number of tasks currently queued.
func (d *Deque) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.items)
}
