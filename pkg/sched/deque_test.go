package sched

import (
	"testing"

	"github.com/lumen-lang/lumen/pkg/vm"
)

func mkScheduledTask(id uint64) *ScheduledTask {
	return newScheduledTask(&vm.Task{ID: id}, DefaultBudget)
}

func TestDeque_PushPopIsLIFO(t *testing.T) {
	d := NewDeque()
	d.PushBack(mkScheduledTask(1))
	d.PushBack(mkScheduledTask(2))

	st, ok := d.PopBack()
	if !ok || st.Task.ID != 2 {
		t.Fatalf("PopBack should return most recently pushed task, got %+v, ok=%v", st, ok)
	}

	st, ok = d.PopBack()
	if !ok || st.Task.ID != 1 {
		t.Fatalf("PopBack should return the remaining task, got %+v, ok=%v", st, ok)
	}

	if _, ok := d.PopBack(); ok {
		t.Fatal("PopBack on empty deque should report false")
	}
}

func TestDeque_StealFrontIsOldestFirst(t *testing.T) {
	d := NewDeque()
	d.PushBack(mkScheduledTask(1))
	d.PushBack(mkScheduledTask(2))
	d.PushBack(mkScheduledTask(3))

	st, ok := d.StealFront()
	if !ok || st.Task.ID != 1 {
		t.Fatalf("StealFront should take the oldest task, got %+v, ok=%v", st, ok)
	}

	if d.Len() != 2 {
		t.Fatalf("len = %d, want 2", d.Len())
	}
}
