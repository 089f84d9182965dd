package executor

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/tidy/pkg/archive"
	"github.com/arthur-debert/tidy/pkg/config"
	"github.com/arthur-debert/tidy/pkg/hashing"
	"github.com/arthur-debert/tidy/pkg/logging"
	"github.com/arthur-debert/tidy/pkg/metadata"
	"github.com/arthur-debert/tidy/pkg/oplog"
	"github.com/arthur-debert/tidy/pkg/paths"
	"github.com/arthur-debert/tidy/pkg/trash"
	"github.com/arthur-debert/tidy/pkg/types"
)

// Engine runs all tidy operations against one filesystem tree. One
// request runs at a time; the engine serializes its own mutations.
type Engine struct {
	fs        types.FS
	resolver  *paths.Resolver
	hasher    *hashing.Hasher
	log       *oplog.Log
	vault     *trash.Vault
	codec     archive.Codec
	extractor metadata.Extractor
	cfg       config.Config
	logger    zerolog.Logger

	mu     sync.Mutex
	dryRun bool // session default; per-request Options may override
}

// Option customizes an Engine.
type Option func(*Engine)

// WithCodec swaps the archive collaborator.
func WithCodec(codec archive.Codec) Option {
	return func(e *Engine) { e.codec = codec }
}

// WithExtractor swaps the metadata collaborator. Availability is
// checked once here, not per call.
func WithExtractor(extractor metadata.Extractor) Option {
	return func(e *Engine) { e.extractor = extractor }
}

// WithLog supplies a pre-built operation log (e.g. one with a journal
// attached).
func WithLog(log *oplog.Log) Option {
	return func(e *Engine) { e.log = log }
}

// New wires an engine over fs using cfg. Defaults: a resolver confined
// to cfg.Root when set, the zip codec, the content-sniffing metadata
// extractor, and an in-memory operation log (with a journal when
// cfg.JournalPath is set).
func New(fs types.FS, cfg config.Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		fs:     fs,
		hasher: hashing.NewHasher(fs),
		vault:  trash.NewVault(fs, cfg.TrashDirName),
		cfg:    cfg,
		logger: logging.GetLogger("executor"),
		dryRun: cfg.DryRun,
	}

	if cfg.Root != "" {
		resolver, err := paths.NewRootedResolver(fs, cfg.Root)
		if err != nil {
			return nil, err
		}
		e.resolver = resolver
	} else {
		e.resolver = paths.NewResolver(fs)
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.codec == nil {
		e.codec = archive.NewZipCodec(fs)
	}
	if e.extractor == nil {
		e.extractor = metadata.NewSniffer(fs)
	}
	if e.log == nil {
		e.log = oplog.New()
		if cfg.JournalPath != "" {
			e.log.WithJournal(cfg.JournalPath)
		}
	}

	if !e.extractor.Available() {
		e.logger.Warn().Msg("Metadata extractor unavailable, by-metadata sorting degrades to Unsorted")
	}

	return e, nil
}

// Resolver exposes the engine's path resolver, mainly for commands
// that validate paths up front.
func (e *Engine) Resolver() *paths.Resolver {
	return e.resolver
}

// Extractor returns the metadata collaborator wired at construction.
func (e *Engine) Extractor() metadata.Extractor {
	return e.extractor
}

// SetDryRun flips the session-wide simulation default and records the
// toggle. Individual requests can still override per call.
func (e *Engine) SetDryRun(enabled bool) {
	e.mu.Lock()
	e.dryRun = enabled
	e.mu.Unlock()
	e.log.Append("set_dry_run", map[string]interface{}{"enabled": enabled},
		false, oplog.OutcomeSuccess, "dry-run default changed", nil)
}

// DryRun reports the session default.
func (e *Engine) DryRun() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dryRun
}

// Log returns the most recent operation records, oldest first.
// limit <= 0 returns everything.
func (e *Engine) Log(limit int) []oplog.Record {
	return e.log.Records(limit)
}

// ClearLog drops the in-memory operation log and records that it did.
func (e *Engine) ClearLog() {
	e.log.Clear()
	e.log.Append("clear_log", nil, false, oplog.OutcomeSuccess, "operation log cleared", nil)
}

// Close releases engine resources (the journal handle, if any).
func (e *Engine) Close() error {
	return e.log.Close()
}

// Options carries the per-request parameters shared by all operations.
type Options struct {
	// DryRun overrides the session default when non-nil.
	DryRun *bool

	// Permanent bypasses the trash vault on deletions. It must be set
	// explicitly; there is no config default for it.
	Permanent bool
}

// Bool is a convenience for building Options overrides.
func Bool(v bool) *bool { return &v }

// effectiveDryRun resolves the per-call override against the session
// default.
func (e *Engine) effectiveDryRun(opts Options) bool {
	if opts.DryRun != nil {
		return *opts.DryRun
	}
	return e.DryRun()
}

// recordFailure appends the record for a request that died during
// apply. Requests rejected during validation never reached the
// filesystem and are not logged.
func (e *Engine) recordFailure(op string, params map[string]interface{}, err error, paths []string) {
	e.log.Append(op, params, false, oplog.OutcomeFailure, err.Error(), paths)
}

// record appends the request's operation record and fills in the
// result status. Every operation, applied or simulated, passes through
// here exactly once before returning.
func (e *Engine) record(op string, params map[string]interface{}, result *Result) {
	if result.DryRun {
		result.Status = StatusSimulated
	} else {
		result.Status = StatusOK
	}
	e.log.Append(op, params, result.DryRun, result.outcome(), result.Summary, result.Paths)
}
