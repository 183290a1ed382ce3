package sched

import "testing"

func TestReductionCounter_DefaultBudget(t *testing.T) {
	c := NewReductionCounter(DefaultBudget)

	if c.Budget() != DefaultBudget {
		t.Fatalf("budget = %d, want %d", c.Budget(), DefaultBudget)
	}

	if c.Remaining() != DefaultBudget {
		t.Fatalf("remaining = %d, want %d", c.Remaining(), DefaultBudget)
	}

	if c.IsExhausted() {
		t.Fatal("fresh counter should not be exhausted")
	}
}

func TestReductionCounter_TickDecrementsAndSignalsExhaustion(t *testing.T) {
	c := NewReductionCounter(3)

	if c.Tick() {
		t.Fatal("tick 1 should not exhaust")
	}

	if c.Remaining() != 2 {
		t.Fatalf("remaining = %d, want 2", c.Remaining())
	}

	if c.Tick() {
		t.Fatal("tick 2 should not exhaust")
	}

	if !c.Tick() {
		t.Fatal("tick 3 should exhaust")
	}

	if !c.IsExhausted() {
		t.Fatal("counter should report exhausted")
	}
}

func TestReductionCounter_TickAtZeroStaysZero(t *testing.T) {
	c := NewReductionCounter(1)

	if !c.Tick() {
		t.Fatal("single-reduction budget should exhaust immediately")
	}

	if !c.Tick() || !c.Tick() {
		t.Fatal("ticking an exhausted counter should keep reporting exhausted")
	}

	if c.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", c.Remaining())
	}
}

func TestReductionCounter_ResetRestoresBudget(t *testing.T) {
	c := NewReductionCounter(10)

	for i := 0; i < 10; i++ {
		c.Tick()
	}

	if !c.IsExhausted() {
		t.Fatal("counter should be exhausted after 10 ticks")
	}

	c.Reset()

	if c.Remaining() != 10 {
		t.Fatalf("remaining after reset = %d, want 10", c.Remaining())
	}
}

func TestReductionCounter_SetBudgetAffectsNextReset(t *testing.T) {
	c := NewReductionCounter(100)

	for i := 0; i < 50; i++ {
		c.Tick()
	}

	c.SetBudget(200)

	if c.Remaining() != 50 {
		t.Fatalf("remaining = %d, want 50 (set_budget must not alter remaining)", c.Remaining())
	}

	c.Reset()

	if c.Remaining() != 200 {
		t.Fatalf("remaining after reset = %d, want 200", c.Remaining())
	}
}

func TestReductionCounter_ConsumedTracksWorkDone(t *testing.T) {
	c := NewReductionCounter(100)

	for i := 0; i < 37; i++ {
		c.Tick()
	}

	if c.Consumed() != 37 {
		t.Fatalf("consumed = %d, want 37", c.Consumed())
	}
}

func TestReductionCounter_ZeroBudget(t *testing.T) {
	c := NewReductionCounter(0)

	if !c.IsExhausted() {
		t.Fatal("zero-budget counter should start exhausted")
	}

	if !c.Tick() {
		t.Fatal("tick on zero-budget counter should report exhausted")
	}
}
