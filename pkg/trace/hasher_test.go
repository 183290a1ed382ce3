package trace

import (
	"strings"
	"testing"
)

func TestSha256Hash(t *testing.T) {
	h := Sha256Hash("hello")

	if !strings.HasPrefix(h, "sha256:") {
		t.Fatalf("hash %q missing sha256: prefix", h)
	}

	if len(h) != len("sha256:")+64 {
		t.Fatalf("hash len = %d, want %d", len(h), len("sha256:")+64)
	}
}

func TestCanonicalJSON_SortedKeys(t *testing.T) {
	val := map[string]any{"b": 2.0, "a": 1.0}

	got := CanonicalJSON(val)
	want := `{"a":1,"b":2}`

	if got != want {
		t.Fatalf("canonical json = %q, want %q", got, want)
	}
}

func TestCanonicalJSON_Nested(t *testing.T) {
	val := map[string]any{
		"z": []any{3.0, 1.0, 2.0},
		"a": map[string]any{"y": 1.0, "x": 2.0},
	}

	got := CanonicalJSON(val)
	want := `{"a":{"x":2,"y":1},"z":[3,1,2]}`

	if got != want {
		t.Fatalf("canonical json = %q, want %q", got, want)
	}
}

func TestCanonicalHash_StableAcrossKeyOrder(t *testing.T) {
	a := map[string]any{"b": 2.0, "a": 1.0}
	b := map[string]any{"a": 1.0, "b": 2.0}

	if CanonicalHash(a) != CanonicalHash(b) {
		t.Fatal("canonical hash should not depend on map iteration order")
	}
}

func TestCacheKey_DeterministicAndPositional(t *testing.T) {
	k1 := CacheKey("tool.fetch", "1.0.0", "policy-hash", "args-hash")
	k2 := CacheKey("tool.fetch", "1.0.0", "policy-hash", "args-hash")

	if k1 != k2 {
		t.Fatal("cache key should be deterministic for identical inputs")
	}

	k3 := CacheKey("tool.fetch", "2.0.0", "policy-hash", "args-hash")
	if k1 == k3 {
		t.Fatal("cache key should differ when version differs")
	}
}
