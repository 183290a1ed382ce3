package sched

import (
	"time"

	"github.com/lumen-lang/lumen/internal/tracelog"
	"github.com/lumen-lang/lumen/pkg/vm"
)

// idleBackoff is how long a worker sleeps after finding no work anywhere
// (its own deque, the injection queue, and every peer's deque) before
// looking again.
const idleBackoff = 200 * time.Microsecond

// worker drains its own deque, then the shared injection queue, then
// steals from peers, executing whichever task it finds for one reduction
// quantum at a time (spec.md §4.11 "work-stealing... workers drain [the
// injection queue] before stealing").
type worker struct {
	id    int
	sched *Scheduler
	deque *Deque
}

func (w *worker) run() {
	defer w.sched.wg.Done()

	for {
		select {
		case <-w.sched.stop:
			return
		default:
		}

		st, ok := w.nextTask()
		if !ok {
			time.Sleep(idleBackoff)
			continue
		}

		w.execute(st)
	}
}

func (w *worker) nextTask() (*ScheduledTask, bool) {
	if st, ok := w.deque.PopBack(); ok {
		return st, true
	}

	var drained []*ScheduledTask
	if n := w.sched.injection.DrainInto(&drained, 1); n > 0 {
		return drained[0], true
	}

	for i := 0; i < len(w.sched.workers); i++ {
		peer := w.sched.workers[(w.id+1+i)%len(w.sched.workers)]
		if peer == w {
			continue
		}

		if st, ok := peer.deque.StealFront(); ok {
			tracelog.L().Debug("stole task", tracelog.WorkerField(w.id), tracelog.TaskField(st.Task.ID))
			return st, true
		}
	}

	return nil, false
}

func (w *worker) execute(st *ScheduledTask) {
	status, err := w.sched.vmInstance.Run(st.Task, st.Counter)

	switch status {
	case vm.StatusYielded:
		st.Counter.Reset()
		w.deque.PushBack(st)
	default:
		st.finish(status, err)
		w.sched.completeTask(st)
	}
}
