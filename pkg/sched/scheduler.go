package sched

import (
	"sync"

	"go.uber.org/zap"

	"github.com/lumen-lang/lumen/internal/tracelog"
	"github.com/lumen-lang/lumen/pkg/value"
	"github.com/lumen-lang/lumen/pkg/vm"
)

// DefaultGCEvery is how many task completions pass between mark-region
// collection cycles — the cycle-suspicion heuristic decided in DESIGN.md's
// Open Questions section: a fixed cadence rather than live cycle
// detection on the refcount scheme itself.
const DefaultGCEvery = 64

// Scheduler runs spawned tasks across a fixed pool of worker goroutines,
// each with its own work-stealing deque, draining a shared injection
// queue first (spec.md §4.11, §5).
type Scheduler struct {
	vmInstance *vm.VM
	injection  *InjectionQueue[*ScheduledTask]
	workers    []*worker
	wg         sync.WaitGroup
	stop       chan struct{}

	mu      sync.Mutex
	nextID  uint64
	tasks   map[uint64]*ScheduledTask
	sinceGC int
	gcEvery int
}

// New constructs a scheduler bound to vmInstance with numWorkers workers.
func New(vmInstance *vm.VM, numWorkers int) *Scheduler {
	s := &Scheduler{
		vmInstance: vmInstance,
		injection:  NewInjectionQueue[*ScheduledTask](),
		stop:       make(chan struct{}),
		tasks:      make(map[uint64]*ScheduledTask),
		gcEvery:    DefaultGCEvery,
	}

	for i := 0; i < numWorkers; i++ {
		s.workers = append(s.workers, &worker{id: i, sched: s, deque: NewDeque()})
	}

	return s
}

// Start launches every worker goroutine.
func (s *Scheduler) Start() {
	for _, w := range s.workers {
		s.wg.Add(1)

		go w.run()
	}
}

// Stop signals every worker to exit and waits for them to drain.
func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
}

// Spawn creates a task executing cellName with args and enqueues it on the
// shared injection queue.
func (s *Scheduler) Spawn(cellName string, args []value.Value) (*ScheduledTask, error) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.mu.Unlock()

	task, verr := s.vmInstance.NewTask(id, cellName, args)
	if verr != nil {
		return nil, verr
	}

	st := newScheduledTask(task, DefaultBudget)

	s.mu.Lock()
	s.tasks[id] = st
	s.mu.Unlock()

	s.injection.Push(st)

	return st, nil
}

// Cancel requests cooperative cancellation of the task with the given ID,
// if it is still in flight.
func (s *Scheduler) Cancel(taskID uint64) bool {
	s.mu.Lock()
	st, ok := s.tasks[taskID]
	s.mu.Unlock()

	if !ok {
		return false
	}

	st.Task.Cancel()

	return true
}

func (s *Scheduler) completeTask(st *ScheduledTask) {
	s.mu.Lock()
	s.sinceGC++
	due := s.sinceGC >= s.gcEvery
	if due {
		s.sinceGC = 0
	}

	delete(s.tasks, st.Task.ID)
	s.mu.Unlock()

	if due {
		s.collectGarbage()
	}
}

func (s *Scheduler) collectGarbage() {
	s.mu.Lock()
	live := make([]*vm.Task, 0, len(s.tasks))
	for _, st := range s.tasks {
		live = append(live, st.Task)
	}
	s.mu.Unlock()

	stats := s.vmInstance.CollectGarbage(live)
	tracelog.L().Debug("gc cycle",
		zap.Int("blocks_swept", stats.BlocksSwept),
		zap.Int("blocks_evacuated", stats.BlocksEvacuated),
		zap.Int("lines_reclaimed", stats.LinesReclaimed),
	)
}
