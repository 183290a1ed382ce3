package sched

import (
	"sync"

	"github.com/lumen-lang/lumen/pkg/vm"
)

// ScheduledTask bundles a VM task with its own reduction counter and the
// bookkeeping the scheduler needs to report completion to whoever spawned
// it.
type ScheduledTask struct {
	Task    *vm.Task
	Counter *ReductionCounter

	done   chan struct{}
	once   sync.Once
	status vm.Status
	err    error
}

func newScheduledTask(t *vm.Task, budget uint32) *ScheduledTask {
	return &ScheduledTask{
		Task:    t,
		Counter: NewReductionCounter(budget),
		done:    make(chan struct{}),
	}
}

// finish records the task's terminal status and unblocks any Wait call.
// Safe to call at most meaningfully once; later calls are no-ops.
func (st *ScheduledTask) finish(status vm.Status, err error) {
	st.once.Do(func() {
		st.status = status
		st.err = err
		close(st.done)
	})
}

// Wait blocks until the task reaches a terminal status (Done, Failed, or
// Cancelled), returning that status and any execution error.
func (st *ScheduledTask) Wait() (vm.Status, error) {
	<-st.done

	return st.status, st.err
}
