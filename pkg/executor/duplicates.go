package executor

import (
	"fmt"

	"github.com/arthur-debert/tidy/pkg/dedup"
)

// FindDuplicates scans root for files with identical content. The scan
// is read-only; it is still logged like every other operation.
func (e *Engine) FindDuplicates(root string, opts Options) (Result, error) {
	dir, err := e.resolver.ResolveDir(root)
	if err != nil {
		return Result{}, err
	}

	finder := dedup.NewFinder(e.fs, e.hasher, 0, e.vault.DirName())
	groups, failures, err := finder.Find(dir)
	if err != nil {
		return Result{}, err
	}

	result := Result{DryRun: e.effectiveDryRun(opts), Groups: groups}
	for _, failure := range failures {
		result.Failures = append(result.Failures, FileFailure{Path: failure.Path, Err: failure.Err.Error()})
	}
	duplicates := 0
	for _, group := range groups {
		result.Paths = append(result.Paths, group.Paths...)
		duplicates += len(group.Duplicates())
	}
	result.Summary = fmt.Sprintf("found %d duplicate group(s), %d removable file(s) under %s",
		len(groups), duplicates, dir)

	e.record("find_duplicates", map[string]interface{}{"root": root}, &result)
	return result, nil
}

// RemoveDuplicates finds duplicate groups under root and deletes every
// member except the earliest-discovered one. Removal routes through
// the trash vault unless opts.Permanent is set.
func (e *Engine) RemoveDuplicates(root string, opts Options) (Result, error) {
	dir, err := e.resolver.ResolveDir(root)
	if err != nil {
		return Result{}, err
	}

	finder := dedup.NewFinder(e.fs, e.hasher, 0, e.vault.DirName())
	groups, failures, err := finder.Find(dir)
	if err != nil {
		return Result{}, err
	}

	result := Result{DryRun: e.effectiveDryRun(opts), Groups: groups}
	for _, failure := range failures {
		result.Failures = append(result.Failures, FileFailure{Path: failure.Path, Err: failure.Err.Error()})
	}

	kind := "trash"
	if opts.Permanent {
		kind = "delete"
	}

	removed := 0
	for _, group := range groups {
		for _, path := range group.Duplicates() {
			result.Planned = append(result.Planned, PlannedAction{Kind: kind, Source: path})
			if result.DryRun {
				result.Paths = append(result.Paths, path)
				continue
			}
			if opts.Permanent {
				if err := e.fs.Remove(path); err != nil {
					result.Failures = append(result.Failures, FileFailure{Path: path, Err: err.Error()})
					continue
				}
			} else {
				if _, err := e.vault.SoftDelete(path); err != nil {
					result.Failures = append(result.Failures, FileFailure{Path: path, Err: err.Error()})
					continue
				}
			}
			result.Paths = append(result.Paths, path)
			removed++
		}
	}

	if result.DryRun {
		result.Summary = fmt.Sprintf("would remove %d duplicate file(s) in %d group(s) under %s",
			len(result.Planned), len(groups), dir)
	} else {
		result.Summary = fmt.Sprintf("removed %d duplicate file(s) in %d group(s) under %s (%d failed)",
			removed, len(groups), dir, len(result.Failures))
	}

	e.record("remove_duplicates",
		map[string]interface{}{"root": root, "permanent": opts.Permanent}, &result)
	return result, nil
}
