package trace

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/segmentio/encoding/json"
)

// ReadRun loads every event from baseDir/trace/<runID>.jsonl in order, for
// the "trace show" CLI command and for tooling that audits a run's hash
// chain after the fact.
func ReadRun(baseDir, runID string) ([]Event, error) {
	path := filepath.Join(baseDir, "trace", runID+".jsonl")

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []Event

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, err
		}

		events = append(events, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// VerifyChain checks that every event's prev_hash matches its predecessor's
// hash, and the first event's prev_hash is the genesis seed, confirming
// the run's hash chain has not been tampered with or truncated.
func VerifyChain(events []Event) error {
	prev := genesisHash

	for i, e := range events {
		if e.PrevHash != prev {
			return &ChainError{Index: i, Seq: e.Seq, Want: prev, Got: e.PrevHash}
		}

		prev = e.Hash
	}

	return nil
}

// ChainError reports a broken link in a trace file's hash chain.
type ChainError struct {
	Index int
	Seq   uint64
	Want  string
	Got   string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("trace hash chain broken at event %d (seq %d): expected prev_hash %s, got %s", e.Index, e.Seq, e.Want, e.Got)
}
