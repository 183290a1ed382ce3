package trace

import "testing"

func TestReadRun_RoundTripsEmittedEvents(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	runID, err := store.StartRun("sha256:doc")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	store.CellStart("main")
	store.CellEnd("main")

	if err := store.EndRun(); err != nil {
		t.Fatalf("EndRun: %v", err)
	}

	events, err := ReadRun(dir, runID)
	if err != nil {
		t.Fatalf("ReadRun: %v", err)
	}

	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}

	if err := VerifyChain(events); err != nil {
		t.Fatalf("VerifyChain: %v", err)
	}
}

func TestVerifyChain_DetectsTamperedHash(t *testing.T) {
	events := []Event{
		{Seq: 1, Kind: KindRunStart, PrevHash: genesisHash, Hash: "sha256:aaa"},
		{Seq: 2, Kind: KindRunEnd, PrevHash: "sha256:bbb", Hash: "sha256:ccc"},
	}

	if err := VerifyChain(events); err == nil {
		t.Fatal("VerifyChain should reject a broken chain link")
	}
}
