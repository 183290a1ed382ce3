package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/lumen-lang/lumen/pkg/trace"
)

func TestStore_PutAndGet(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	entry := Entry{Key: "sha256:abc", ToolID: "tool.fetch", Version: "1.0.0", Outputs: map[string]any{"ok": true}}

	if err := s.Put(entry); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := s.Get("sha256:abc")
	if !ok {
		t.Fatal("Get should find entry just Put")
	}

	if got.ToolID != "tool.fetch" {
		t.Fatalf("got.ToolID = %q, want tool.fetch", got.ToolID)
	}
}

func TestStore_LookupMissReturnsFalse(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	_, ok, err := s.Lookup("tool.fetch", "1.0.0", "sha256:policy", map[string]any{"a": 1.0})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if ok {
		t.Fatal("Lookup on empty cache should miss")
	}
}

func TestStore_LookupHitsAfterPutWithMatchingKey(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	args := map[string]any{"a": 1.0}

	argsHash, err := trace.CanonicalHashOf(args)
	if err != nil {
		t.Fatalf("CanonicalHashOf: %v", err)
	}

	key := trace.CacheKey("tool.fetch", "1.0.0", "sha256:policy", argsHash)

	if err := s.Put(Entry{Key: key, ToolID: "tool.fetch", Version: "1.0.0"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	entry, ok, err := s.Lookup("tool.fetch", "1.0.0", "sha256:policy", args)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if !ok || entry.Key != key {
		t.Fatalf("Lookup = (%+v, %v), want matching entry", entry, ok)
	}
}

func TestStore_ClearRemovesEntries(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := s.Put(Entry{Key: "sha256:abc", ToolID: "tool.fetch"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if _, ok := s.Get("sha256:abc"); ok {
		t.Fatal("entry should be gone after Clear")
	}
}

func TestStore_BuildRunsOnceForConcurrentCallers(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	var calls int32

	build := func() (Entry, error) {
		atomic.AddInt32(&calls, 1)
		return Entry{Key: "sha256:shared", ToolID: "tool.slow"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Build("sha256:shared", build); err != nil {
				t.Errorf("Build: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("build ran %d times, want exactly 1", got)
	}
}

func TestStore_BuildPropagatesError(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	wantErr := errors.New("boom")

	_, err = s.Build("sha256:failing", func() (Entry, error) {
		return Entry{}, wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Fatalf("Build error = %v, want %v", err, wantErr)
	}
}
