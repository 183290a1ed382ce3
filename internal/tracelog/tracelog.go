// Package tracelog is the zap-backed structured logging sink shared by the
// scheduler, trace store, and CLI. It mirrors trace-store events to the
// console (or wherever the configured zap core writes) without being on
// the critical path of the JSONL trace file itself (pkg/trace owns that).
package tracelog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu     sync.RWMutex
	logger *zap.Logger = zap.NewNop()
)

// Configure installs the process-wide logger. verbose selects a
// development encoder config (human-readable, debug level); the default
// is a quiet production encoder at info level.
func Configure(verbose bool) error {
	var (
		l   *zap.Logger
		err error
	)

	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}

	if err != nil {
		return err
	}

	mu.Lock()
	logger = l
	mu.Unlock()

	return nil
}

// L returns the current process-wide logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()

	return logger
}

// Sync flushes any buffered log entries; call before process exit.
func Sync() error {
	return L().Sync()
}

// WorkerField tags a log entry with the scheduler worker that emitted it.
func WorkerField(id int) zap.Field {
	return zap.Int("worker", id)
}

// TaskField tags a log entry with the task it concerns.
func TaskField(id uint64) zap.Field {
	return zap.Uint64("task", id)
}

// RunField tags a log entry with the trace run it concerns.
func RunField(runID string) zap.Field {
	return zap.String("run_id", runID)
}
