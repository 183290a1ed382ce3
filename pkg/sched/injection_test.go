package sched

import "testing"

func TestInjectionQueue_PushAndPopFIFO(t *testing.T) {
	q := NewInjectionQueue[int]()
	q.Push(1)
	q.Push(2)
	q.Push(3)

	for _, want := range []int{1, 2, 3} {
		got, ok := q.Pop()
		if !ok || got != want {
			t.Fatalf("pop = (%d, %v), want (%d, true)", got, ok, want)
		}
	}

	if _, ok := q.Pop(); ok {
		t.Fatal("pop on empty queue should report false")
	}
}

func TestInjectionQueue_LenAndIsEmpty(t *testing.T) {
	q := NewInjectionQueue[int]()

	if !q.IsEmpty() {
		t.Fatal("fresh queue should be empty")
	}

	q.Push(42)

	if q.IsEmpty() || q.Len() != 1 {
		t.Fatalf("len = %d, isEmpty = %v", q.Len(), q.IsEmpty())
	}

	q.Pop()

	if !q.IsEmpty() {
		t.Fatal("queue should be empty after draining its only item")
	}
}

func TestInjectionQueue_DrainIntoRespectsMax(t *testing.T) {
	q := NewInjectionQueue[int]()
	for i := 0; i < 10; i++ {
		q.Push(i)
	}

	var buf []int

	n := q.DrainInto(&buf, 3)
	if n != 3 {
		t.Fatalf("drained = %d, want 3", n)
	}

	for i, want := range []int{0, 1, 2} {
		if buf[i] != want {
			t.Fatalf("buf[%d] = %d, want %d", i, buf[i], want)
		}
	}

	if q.Len() != 7 {
		t.Fatalf("remaining len = %d, want 7", q.Len())
	}
}

func TestInjectionQueue_DrainAllEmptiesQueue(t *testing.T) {
	q := NewInjectionQueue[int]()
	for i := 0; i < 5; i++ {
		q.Push(i)
	}

	var buf []int

	n := q.DrainAll(&buf)
	if n != 5 || len(buf) != 5 {
		t.Fatalf("drained = %d, len(buf) = %d, want 5/5", n, len(buf))
	}

	if !q.IsEmpty() {
		t.Fatal("queue should be empty after DrainAll")
	}
}
