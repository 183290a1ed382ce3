package trace

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	json "github.com/segmentio/encoding/json"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open trace file: %v", err)
	}
	defer f.Close()

	var events []Event

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("unmarshal event line: %v", err)
		}

		events = append(events, e)
	}

	return events
}

func TestStore_HashChainLinksSequentially(t *testing.T) {
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

	events := readEvents(t, filepath.Join(dir, "trace", runID+".jsonl"))
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4 (run_start, cell_start, cell_end, run_end)", len(events))
	}

	if events[0].PrevHash != genesisHash {
		t.Fatalf("first event prev_hash = %q, want genesis seed", events[0].PrevHash)
	}

	for i := 1; i < len(events); i++ {
		if events[i].PrevHash != events[i-1].Hash {
			t.Fatalf("event %d prev_hash = %q, want prior event's hash %q", i, events[i].PrevHash, events[i-1].Hash)
		}

		if events[i].Seq != events[i-1].Seq+1 {
			t.Fatalf("event %d seq = %d, want %d", i, events[i].Seq, events[i-1].Seq+1)
		}
	}

	kinds := []EventKind{KindRunStart, KindCellStart, KindCellEnd, KindRunEnd}
	for i, e := range events {
		if e.Kind != kinds[i] {
			t.Fatalf("event %d kind = %q, want %q", i, e.Kind, kinds[i])
		}
	}
}

func TestStore_ToolCallRecordsLatencyAndCacheFlag(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	runID, err := store.StartRun("sha256:doc")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	store.ToolCall("main", "tool.fetch", "1.0.0", "sha256:in", "sha256:out", "sha256:policy", 42, true)

	if err := store.EndRun(); err != nil {
		t.Fatalf("EndRun: %v", err)
	}

	events := readEvents(t, filepath.Join(dir, "trace", runID+".jsonl"))

	var toolEvent *Event
	for i := range events {
		if events[i].Kind == KindToolCall {
			toolEvent = &events[i]
		}
	}

	if toolEvent == nil {
		t.Fatal("no tool_call event found")
	}

	if toolEvent.ToolID != "tool.fetch" || toolEvent.LatencyMS == nil || *toolEvent.LatencyMS != 42 {
		t.Fatalf("tool_call event missing expected fields: %+v", toolEvent)
	}

	if toolEvent.Cached == nil || !*toolEvent.Cached {
		t.Fatalf("tool_call event cached flag = %v, want true", toolEvent.Cached)
	}
}

func TestStore_StartRunResetsChainAcrossRuns(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	firstRun, _ := store.StartRun("sha256:doc")
	store.CellStart("main")
	store.EndRun()

	secondRun, _ := store.StartRun("sha256:doc")
	store.EndRun()

	if firstRun == secondRun {
		t.Fatal("StartRun should mint a fresh run ID each call")
	}

	events := readEvents(t, filepath.Join(dir, "trace", secondRun+".jsonl"))
	if events[0].PrevHash != genesisHash {
		t.Fatal("second run should restart the hash chain from genesis")
	}
}
