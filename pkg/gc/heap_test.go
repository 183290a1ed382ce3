package gc

import "testing"

func TestHeap_NewHeaderIsSoleOwnedAndTracked(t *testing.T) {
	h := NewHeap()

	hdr := h.NewHeader()
	if !hdr.SoleOwner() {
		t.Fatal("freshly allocated header should be sole-owned")
	}

	root := &node{header: hdr}

	stats := h.Collect([]Object{root})
	if stats.LinesReclaimed != 0 {
		t.Fatalf("reachable header should survive collection, reclaimed = %d", stats.LinesReclaimed)
	}
}

func TestHeap_CollectReclaimsUnrootedHeader(t *testing.T) {
	h := NewHeap()

	hdr := h.NewHeader()
	hdr.Release()

	stats := h.Collect(nil)
	if stats.LinesReclaimed != 1 {
		t.Fatalf("lines reclaimed = %d, want 1", stats.LinesReclaimed)
	}
}
