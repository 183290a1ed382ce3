// Package sched implements the work-stealing scheduler that runs many
// lightweight Lumen tasks across a small pool of worker goroutines, with
// cooperative preemption via reduction counting (spec.md §4.11).
package sched

// DefaultBudget is the default reduction quantum per scheduling turn,
// ported from original_source/rust/lumen-rt/src/services/reduction.rs
// ("roughly on par with Erlang's default").
const DefaultBudget uint32 = 2000

// ReductionCounter is a per-task budget of VM instructions ("reductions")
// a task may execute before it must yield back to the scheduler. It
// satisfies pkg/vm.ReductionCounter via Tick.
//
// This is a plain value type: no mutex, no atomics. It is owned by a
// single task and only ever touched by the worker currently running that
// task.
type ReductionCounter struct {
	remaining uint32
	budget    uint32
}

// NewReductionCounter constructs a counter with remaining initialized to
// budget.
func NewReductionCounter(budget uint32) *ReductionCounter {
	return &ReductionCounter{remaining: budget, budget: budget}
}

// Tick consumes one reduction, returning true once the budget is
// exhausted. Repeated calls at zero keep returning true without
// underflowing.
func (c *ReductionCounter) Tick() bool {
	if c.remaining == 0 {
		return true
	}

	c.remaining--

	return c.remaining == 0
}

// Reset restores remaining to the full budget, called when a yielded task
// is rescheduled.
func (c *ReductionCounter) Reset() {
	c.remaining = c.budget
}

// Remaining reports reductions left in the current quantum.
func (c *ReductionCounter) Remaining() uint32 { return c.remaining }

// Budget reports the configured budget.
func (c *ReductionCounter) Budget() uint32 { return c.budget }

// SetBudget changes the budget used by future Reset calls; it does not
// alter Remaining until Reset is called.
func (c *ReductionCounter) SetBudget(budget uint32) { c.budget = budget }

// Consumed reports reductions used since the last Reset.
func (c *ReductionCounter) Consumed() uint32 { return c.budget - c.remaining }

// IsExhausted reports whether the budget has reached zero.
func (c *ReductionCounter) IsExhausted() bool { return c.remaining == 0 }
