package executor

import (
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/tidy/pkg/errors"
)

// CleanupEmptyDirs removes empty directories under root, bottom-up: a
// directory qualifies once everything beneath it has been removed or
// was already absent. The root itself is never removed. Trash vaults
// count as content: a directory holding recoverable entries stays.
func (e *Engine) CleanupEmptyDirs(root string, opts Options) (Result, error) {
	dir, err := e.resolver.ResolveDir(root)
	if err != nil {
		return Result{}, err
	}

	result := Result{DryRun: e.effectiveDryRun(opts)}
	if _, err := e.sweepEmpty(dir, true, &result); err != nil {
		return Result{}, err
	}

	verb := "removed"
	if result.DryRun {
		verb = "would remove"
	}
	result.Summary = fmt.Sprintf("%s %d empty folder(s) under %s", verb, len(result.Paths), dir)

	e.record("cleanup_empty_folders", map[string]interface{}{"root": root}, &result)
	return result, nil
}

// sweepEmpty returns whether dir is (or would become) empty. It
// removes qualifying subdirectories as it unwinds unless the request
// is a dry run, in which case removal is only simulated.
func (e *Engine) sweepEmpty(dir string, isRoot bool, result *Result) (bool, error) {
	entries, err := e.fs.ReadDir(dir)
	if err != nil {
		result.Failures = append(result.Failures, FileFailure{Path: dir, Err: err.Error()})
		return false, nil
	}

	empty := true
	for _, entry := range entries {
		if !entry.IsDir() {
			empty = false
			continue
		}
		if entry.Name() == e.vault.DirName() {
			empty = false
			continue
		}
		sub := filepath.Join(dir, entry.Name())
		subEmpty, err := e.sweepEmpty(sub, false, result)
		if err != nil {
			return false, err
		}
		if !subEmpty {
			empty = false
			continue
		}
		result.Planned = append(result.Planned, PlannedAction{Kind: "rmdir", Source: sub})
		if result.DryRun {
			result.Paths = append(result.Paths, sub)
			continue
		}
		if err := e.fs.Remove(sub); err != nil {
			result.Failures = append(result.Failures, FileFailure{Path: sub, Err: err.Error()})
			empty = false
			continue
		}
		result.Paths = append(result.Paths, sub)
	}

	return empty && !isRoot, nil
}

// CleanupTempFiles trashes files under root whose names match the
// configured temp patterns. Matches route through the vault like any
// other deletion; opts.Permanent removes them outright.
func (e *Engine) CleanupTempFiles(root string, opts Options) (Result, error) {
	dir, err := e.resolver.ResolveDir(root)
	if err != nil {
		return Result{}, err
	}

	for _, pattern := range e.cfg.TempPatterns {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return Result{}, errors.Wrapf(err, errors.ErrConfigValid,
				"invalid temp pattern %q", pattern)
		}
	}

	result := Result{DryRun: e.effectiveDryRun(opts)}
	kind := "trash"
	if opts.Permanent {
		kind = "delete"
	}

	e.walkTempMatches(dir, func(path string) {
		result.Planned = append(result.Planned, PlannedAction{Kind: kind, Source: path})
		if result.DryRun {
			result.Paths = append(result.Paths, path)
			return
		}
		if opts.Permanent {
			if err := e.fs.Remove(path); err != nil {
				result.Failures = append(result.Failures, FileFailure{Path: path, Err: err.Error()})
				return
			}
		} else {
			if _, err := e.vault.SoftDelete(path); err != nil {
				result.Failures = append(result.Failures, FileFailure{Path: path, Err: err.Error()})
				return
			}
		}
		result.Paths = append(result.Paths, path)
	})

	verb := "cleaned up"
	if result.DryRun {
		verb = "would clean up"
	}
	result.Summary = fmt.Sprintf("%s %d temp file(s) under %s (%d failed)",
		verb, len(result.Paths), dir, len(result.Failures))

	e.record("cleanup_temp_files",
		map[string]interface{}{"root": root, "permanent": opts.Permanent}, &result)
	return result, nil
}

// walkTempMatches visits every file under dir whose base name matches
// a temp pattern, skipping trash vaults.
func (e *Engine) walkTempMatches(dir string, visit func(path string)) {
	entries, err := e.fs.ReadDir(dir)
	if err != nil {
		e.logger.Warn().Err(err).Str("dir", dir).Msg("Cannot read directory during temp cleanup")
		return
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if entry.Name() == e.vault.DirName() {
				continue
			}
			e.walkTempMatches(path, visit)
			continue
		}
		for _, pattern := range e.cfg.TempPatterns {
			if ok, _ := filepath.Match(pattern, entry.Name()); ok {
				visit(path)
				break
			}
		}
	}
}
