package trace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	json "github.com/segmentio/encoding/json"
	"go.uber.org/zap"

	"github.com/lumen-lang/lumen/internal/tracelog"
)

const genesisHash = "sha256:genesis"

// Store writes hash-chained JSONL trace events for a run to
// <baseDir>/trace/<run-id>.jsonl, ported from
// original_source/rust/lumen-runtime/src/trace/store.rs. Each event's hash
// covers its sequence number, kind, and the previous event's hash, so the
// file as a whole forms a tamper-evident chain back to a genesis seed.
//
// Every exported method holds the store's mutex while it runs, so events
// from concurrent callers are appended to the one chain in some serial
// order.
type Store struct {
	mu sync.Mutex

	traceDir string
	runID    string
	file     *os.File
	seq      uint64
	prevHash string
	docHash  string
}

// NewStore creates a store rooted at baseDir/trace, creating the
// directory if needed.
func NewStore(baseDir string) (*Store, error) {
	traceDir := filepath.Join(baseDir, "trace")
	if err := os.MkdirAll(traceDir, 0o755); err != nil {
		return nil, err
	}

	return &Store{traceDir: traceDir, prevHash: genesisHash}, nil
}

// StartRun opens a new run file named by a freshly generated UUID,
// resets the hash chain, and emits the run's RunStart event.
func (s *Store) StartRun(docHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID := uuid.New().String()

	path := filepath.Join(s.traceDir, runID+".jsonl")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}

	s.runID = runID
	s.docHash = docHash
	s.seq = 0
	s.prevHash = genesisHash
	s.file = f

	s.emitLocked(KindRunStart, "", "")
	tracelog.L().Info("trace run started", tracelog.RunField(runID))

	return runID, nil
}

// EndRun emits the run's RunEnd event and closes the underlying file.
func (s *Store) EndRun() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.emitLocked(KindRunEnd, "", "")

	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil

	tracelog.L().Info("trace run ended", tracelog.RunField(s.runID))

	return err
}

// CellStart emits a CellStart event for cellName.
func (s *Store) CellStart(cellName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.emitLocked(KindCellStart, cellName, "")
}

// CellEnd emits a CellEnd event for cellName.
func (s *Store) CellEnd(cellName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.emitLocked(KindCellEnd, cellName, "")
}

// ToolCall emits a ToolCall event recording a tool invocation's identity,
// latency, and whether it was served from the cache.
func (s *Store) ToolCall(cell, toolID, toolVersion, inputsHash, outputsHash, policyHash string, latencyMS uint64, cached bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event := s.makeEventLocked(KindToolCall)
	event.Cell = cell
	event.ToolID = toolID
	event.ToolVersion = toolVersion
	event.InputsHash = inputsHash
	event.OutputsHash = outputsHash
	event.PolicyHash = policyHash
	event.LatencyMS = &latencyMS
	event.Cached = &cached

	s.writeLocked(event)

	tracelog.L().Debug("tool call",
		zap.String("cell", cell),
		zap.String("tool_id", toolID),
		zap.Uint64("latency_ms", latencyMS),
		zap.Bool("cached", cached),
	)
}

// SchemaValidate emits a SchemaValidate event for a tool's input or
// output schema check.
func (s *Store) SchemaValidate(cell, toolID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event := s.makeEventLocked(KindSchemaValidate)
	event.Cell = cell
	event.ToolID = toolID
	event.Message = message

	s.writeLocked(event)
}

// Error emits an Error event, optionally scoped to a cell.
func (s *Store) Error(cell, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.emitLocked(KindError, cell, message)

	tracelog.L().Warn("trace error event", zap.String("cell", cell), zap.String("message", message))
}

// RunID reports the current run's identifier, or "" if no run has been
// started.
func (s *Store) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.runID
}

func (s *Store) emitLocked(kind EventKind, cell, message string) {
	event := s.makeEventLocked(kind)
	event.Cell = cell
	event.Message = message
	s.writeLocked(event)
}

func (s *Store) makeEventLocked(kind EventKind) Event {
	s.seq++

	content := fmt.Sprintf("%d:%s:%s", s.seq, kind, s.prevHash)
	hash := Sha256Hash(content)

	event := Event{
		Seq:       s.seq,
		Kind:      kind,
		PrevHash:  s.prevHash,
		Hash:      hash,
		Timestamp: time.Now().UTC(),
		DocHash:   s.docHash,
	}

	s.prevHash = hash

	return event
}

func (s *Store) writeLocked(event Event) {
	if s.file == nil {
		return
	}

	buf, err := json.Marshal(event)
	if err != nil {
		return
	}

	buf = append(buf, '\n')
	_, _ = s.file.Write(buf)
}
