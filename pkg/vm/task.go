package vm

import (
	"sync/atomic"

	"github.com/lumen-lang/lumen/pkg/value"
)

// handlerEntry records one HandlerPush: the effect names it covers, the
// handler cell to invoke on EffectPerform, and the call-stack depth it was
// installed at. HandlerPop removes the newest entry without checking depth.
type handlerEntry struct {
	effects []string
	cell    string
	depth   int
}

// Status reports the outcome of a single VM.Run call over a Task.
type Status uint8

const (
	// StatusDone means the task's outermost cell returned; Task.Result
	// holds the value.
	StatusDone Status = iota
	// StatusYielded means the reduction budget was exhausted; the scheduler should
	// re-enqueue the task and call Run again later to resume exactly
	// where it left off.
	StatusYielded
	// StatusFailed means a RuntimeError propagated past the outermost
	// frame; Task.Err holds it.
	StatusFailed
	// StatusCancelled means the task observed its cancellation flag at a
	// checkpoint (spec.md §4.11 "Cancellation").
	StatusCancelled
)

// Task is one schedulable unit of VM execution: an explicit call stack (not
// the Go call stack) so that Run can suspend mid-cell and resume later on a
// possibly different worker (spec.md §4.11, §5 "each awaited operation
// records its continuation frame so the task can be resumed").
type Task struct {
	ID        uint64
	Stack     []Frame
	Handlers  []handlerEntry
	Result    value.Value
	Err       error
	cancelled atomic.Bool
}

// Cancel requests cooperative cancellation; the task observes it at its next
// checkpoint (spec.md §4.11 "a task receives a cancellation flag it MUST
// poll at safe points").
func (t *Task) Cancel() { t.cancelled.Store(true) }

// Cancelled reports whether Cancel has been called on t.
func (t *Task) Cancelled() bool { return t.cancelled.Load() }

func (t *Task) current() *Frame { return &t.Stack[len(t.Stack)-1] }
