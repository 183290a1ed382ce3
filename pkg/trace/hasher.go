package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	json "github.com/segmentio/encoding/json"
)

// Sha256Hash hashes data with SHA-256 and prefixes it "sha256:", matching
// original_source/rust/lumen-runtime/src/trace/hasher.rs's sha256_hash.
func Sha256Hash(data string) string {
	sum := sha256.Sum256([]byte(data))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// CanonicalJSON renders a decoded JSON value (map[string]any, []any, or a
// JSON scalar) with object keys sorted and no whitespace, so the same
// logical value always hashes the same way regardless of field order.
func CanonicalJSON(value any) string {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		entries := make([]string, 0, len(keys))
		for _, k := range keys {
			keyJSON, _ := json.Marshal(k)
			entries = append(entries, string(keyJSON)+":"+CanonicalJSON(v[k]))
		}

		return "{" + strings.Join(entries, ",") + "}"
	case []any:
		entries := make([]string, len(v))
		for i, elem := range v {
			entries[i] = CanonicalJSON(elem)
		}

		return "[" + strings.Join(entries, ",") + "]"
	default:
		buf, _ := json.Marshal(v)
		return string(buf)
	}
}

// CanonicalHash computes a stable hash of a decoded JSON value, used for
// trace event chaining and cache key derivation.
func CanonicalHash(value any) string {
	return Sha256Hash(CanonicalJSON(value))
}

// CanonicalHashOf marshals v with the package's JSON encoder, decodes it
// back into a canonical-hashable form, and hashes that — the path used for
// struct values (TraceEvent payload fragments, tool args) rather than
// already-decoded maps.
func CanonicalHashOf(v any) (string, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	var decoded any
	if err := json.Unmarshal(buf, &decoded); err != nil {
		return "", err
	}

	return CanonicalHash(decoded), nil
}

// CacheKey derives a content-addressed cache key from a tool invocation's
// identity, version, the policy hash in force, and a hash of its
// arguments (spec.md §4.13).
func CacheKey(toolID, version, policyHash, argsHash string) string {
	return Sha256Hash(fmt.Sprintf("%s:%s:%s:%s", toolID, version, policyHash, argsHash))
}
