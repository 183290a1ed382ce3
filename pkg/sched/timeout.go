package sched

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/lumen-lang/lumen/pkg/vm"
)

// ErrTimedOut is returned by RunWithTimeout when the timer wins the race.
var ErrTimedOut = errors.New("task timed out")

// RunWithTimeout waits for st to finish, cancelling it if timeout elapses
// first — a race between the work task and a timer, matching spec.md §5
// "Timeouts: implemented as races between a work task and a timer task;
// the losing task is cancelled." A cancellation from any other source
// (explicit Scheduler.Cancel) still reports StatusCancelled without
// ErrTimedOut.
func RunWithTimeout(st *ScheduledTask, timeout time.Duration) (vm.Status, error) {
	var timedOut atomic.Bool

	timer := time.AfterFunc(timeout, func() {
		timedOut.Store(true)
		st.Task.Cancel()
	})
	defer timer.Stop()

	status, err := st.Wait()
	if status == vm.StatusCancelled && timedOut.Load() {
		return status, ErrTimedOut
	}

	return status, err
}
