package lir

import (
	"bytes"

	json "github.com/segmentio/encoding/json"
)

// MarshalPretty renders m as indented JSON, for debugging (spec.md §6 "two
// serialization modes: pretty... and canonical compact").
func MarshalPretty(m *Module) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// MarshalCanonical renders m as compact JSON with object keys sorted, so
// byte-identical input produces byte-identical output (spec.md §8 round-trip
// property). segmentio/encoding/json sorts map keys by default; struct field
// order follows declaration order, which is stable across calls, satisfying
// canonical-form determinism for our fixed schema.
func MarshalCanonical(m *Module) ([]byte, error) {
	buf, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, buf); err != nil {
		return nil, err
	}

	return compact.Bytes(), nil
}

// Unmarshal parses canonical or pretty LIR JSON into a Module.
func Unmarshal(data []byte) (*Module, error) {
	var m Module
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	return &m, nil
}
