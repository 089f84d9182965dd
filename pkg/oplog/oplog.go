// Package oplog implements the append-only operation log.
//
// Every attempted action, planned or applied, appends one immutable
// Record. The log is single-writer (a mutex serializes appends) and
// safe to read concurrently. By default it lives in memory for the
// engine's lifetime; an optional journal makes it durable by appending
// each record as one JSON line to a file, written before the append
// returns.
package oplog

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/tidy/pkg/logging"
)

// Outcome is the terminal state of a logged action.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"
	OutcomeSimulated Outcome = "simulated"
	OutcomePartial   Outcome = "partial"
)

// Record is one audit-log entry for one user-level action. Records are
// immutable once appended. Parameters are logged in full: this is an
// audit log, nothing is redacted.
type Record struct {
	Seq     uint64                 `json:"seq"`
	Time    time.Time              `json:"time"`
	Op      string                 `json:"op"`
	Params  map[string]interface{} `json:"params,omitempty"`
	DryRun  bool                   `json:"dry_run"`
	Outcome Outcome                `json:"outcome"`
	Summary string                 `json:"summary"`
	Paths   []string               `json:"paths,omitempty"`
}

// Log is the append-only operation log.
type Log struct {
	mu      sync.Mutex
	records []Record
	seq     uint64

	journal     *zerolog.Logger
	journalFile *os.File
}

// New creates an in-memory log.
func New() *Log {
	return &Log{}
}

// WithJournal attaches a durable journal at path. Each appended record
// is also written to the file as a single JSON line. A journal that
// cannot be opened degrades to in-memory logging; the engine keeps
// working either way.
func (l *Log) WithJournal(path string) *Log {
	logger := logging.GetLogger("oplog")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Cannot create journal directory")
		return l
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Cannot open journal, log stays in memory")
		return l
	}

	journal := zerolog.New(f)
	l.mu.Lock()
	l.journal = &journal
	l.journalFile = f
	l.mu.Unlock()

	logger.Debug().Str("path", path).Msg("Operation journal attached")
	return l
}

// Append adds a record and returns it with sequence number and
// timestamp filled in. The journal line, when configured, is written
// before Append returns so the in-memory log never runs ahead of
// stable storage.
func (l *Log) Append(op string, params map[string]interface{}, dryRun bool, outcome Outcome, summary string, paths []string) Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	rec := Record{
		Seq:     l.seq,
		Time:    time.Now().UTC(),
		Op:      op,
		Params:  params,
		DryRun:  dryRun,
		Outcome: outcome,
		Summary: summary,
		Paths:   paths,
	}

	if l.journal != nil {
		l.journal.Log().
			Uint64("seq", rec.Seq).
			Time("time", rec.Time).
			Str("op", rec.Op).
			Interface("params", rec.Params).
			Bool("dry_run", rec.DryRun).
			Str("outcome", string(rec.Outcome)).
			Strs("paths", rec.Paths).
			Msg(rec.Summary)
	}

	l.records = append(l.records, rec)
	return rec
}

// Records returns the most recent records in append order. limit <= 0
// returns everything. The returned slice is a copy; the log stays
// immutable.
func (l *Log) Records(limit int) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := 0
	if limit > 0 && len(l.records) > limit {
		start = len(l.records) - limit
	}
	out := make([]Record, len(l.records)-start)
	copy(out, l.records[start:])
	return out
}

// Len returns the number of records.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Clear drops all in-memory records. The journal file, if any, is left
// untouched; it is the durable history.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
}

// Close releases the journal file handle.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.journalFile != nil {
		err := l.journalFile.Close()
		l.journal = nil
		l.journalFile = nil
		return err
	}
	return nil
}
