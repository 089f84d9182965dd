package executor

import (
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/tidy/pkg/paths"
	"github.com/arthur-debert/tidy/pkg/rules"
	"github.com/arthur-debert/tidy/pkg/types"
)

// Sort classifies the direct children of root with the given mode and
// moves each file into its category subfolder. Files already inside
// their category are left alone, so running the same sort twice is a
// no-op. A file that fails mid-batch is recorded and skipped; the rest
// of the batch proceeds.
func (e *Engine) Sort(root string, mode rules.Mode, opts Options) (Result, error) {
	dir, err := e.resolver.ResolveDir(root)
	if err != nil {
		return Result{}, err
	}

	entries, err := e.fs.ReadDir(dir)
	if err != nil {
		return Result{}, err
	}

	result := Result{DryRun: e.effectiveDryRun(opts)}
	moved := 0

	for _, entry := range entries {
		// Directories (including category folders and the trash vault)
		// are never sorted
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Failures = append(result.Failures, FileFailure{Path: path, Err: err.Error()})
			continue
		}

		category := mode.Classify(types.NewFileEntry(path, info))
		destDir := filepath.Join(dir, category)
		dest := filepath.Join(destDir, entry.Name())
		if dest == path {
			continue
		}

		dest, err = paths.Unique(e.fs, dest)
		if err != nil {
			result.Failures = append(result.Failures, FileFailure{Path: path, Err: err.Error()})
			continue
		}

		result.Planned = append(result.Planned, PlannedAction{Kind: "move", Source: path, Dest: dest})
		if result.DryRun {
			result.Paths = append(result.Paths, path)
			continue
		}

		if err := e.movePath(path, dest); err != nil {
			e.logger.Warn().Err(err).Str("path", path).Msg("Sort move failed, skipping file")
			result.Failures = append(result.Failures, FileFailure{Path: path, Err: err.Error()})
			continue
		}
		result.Paths = append(result.Paths, dest)
		moved++
	}

	if result.DryRun {
		result.Summary = fmt.Sprintf("would sort %d file(s) in %s by %s", len(result.Planned), dir, mode.Name())
	} else {
		result.Summary = fmt.Sprintf("sorted %d file(s) in %s by %s (%d failed)",
			moved, dir, mode.Name(), len(result.Failures))
	}

	e.record("sort_by_"+mode.Name(), map[string]interface{}{"root": root, "mode": mode.Name()}, &result)
	return result, nil
}
