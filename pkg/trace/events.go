// Package trace implements the hash-chained, append-only JSONL trace store
// (spec.md §4.12): one file per run, every event referencing the previous
// event's hash back to a genesis seed.
package trace

import "time"

// EventKind identifies which of the fixed event shapes a line carries.
type EventKind string

// Event kinds, matching original_source/rust/lumen-runtime/src/trace/
// events.rs's TraceEventKind exactly.
const (
	KindRunStart      EventKind = "run_start"
	KindCellStart     EventKind = "cell_start"
	KindCellEnd       EventKind = "cell_end"
	KindToolCall      EventKind = "tool_call"
	KindSchemaValidate EventKind = "schema_validate"
	KindError         EventKind = "error"
	KindRunEnd        EventKind = "run_end"
)

// Event is one JSONL line. Fields absent for a given Kind are omitted on
// serialization, matching the Rust source's Option<T> + skip_serializing_if
// fields.
type Event struct {
	Seq         uint64    `json:"seq"`
	Kind        EventKind `json:"kind"`
	PrevHash    string    `json:"prev_hash"`
	Hash        string    `json:"hash"`
	Timestamp   time.Time `json:"timestamp"`
	DocHash     string    `json:"doc_hash"`
	Cell        string    `json:"cell,omitempty"`
	ToolID      string    `json:"tool_id,omitempty"`
	ToolVersion string    `json:"tool_version,omitempty"`
	InputsHash  string    `json:"inputs_hash,omitempty"`
	OutputsHash string    `json:"outputs_hash,omitempty"`
	PolicyHash  string    `json:"policy_hash,omitempty"`
	LatencyMS   *uint64   `json:"latency_ms,omitempty"`
	Cached      *bool     `json:"cached,omitempty"`
	Message     string    `json:"message,omitempty"`
}
