package executor

import (
	"fmt"
)

// CreateArchive compresses the given paths into an archive through the
// codec collaborator. With removeOriginals the sources are soft-deleted
// afterwards through the trash vault. One record summarizes the whole
// action regardless of how many files it covers.
func (e *Engine) CreateArchive(sources []string, archivePath string, removeOriginals bool, opts Options) (Result, error) {
	resolved := make([]string, 0, len(sources))
	for _, source := range sources {
		path, err := e.resolver.ResolveExisting(source)
		if err != nil {
			return Result{}, err
		}
		resolved = append(resolved, path)
	}
	target, err := e.resolver.Resolve(archivePath)
	if err != nil {
		return Result{}, err
	}

	result := Result{DryRun: e.effectiveDryRun(opts)}
	for _, path := range resolved {
		result.Planned = append(result.Planned, PlannedAction{Kind: "archive", Source: path, Dest: target})
	}
	result.Paths = append([]string{}, resolved...)

	if result.DryRun {
		result.Summary = fmt.Sprintf("would archive %d path(s) into %s", len(resolved), target)
		e.record("create_archive", archiveParams(sources, archivePath, removeOriginals), &result)
		return result, nil
	}

	if err := e.codec.Compress(resolved, target); err != nil {
		e.recordFailure("create_archive", archiveParams(sources, archivePath, removeOriginals), err, result.Paths)
		return Result{}, err
	}
	result.Paths = append(result.Paths, target)

	if removeOriginals {
		for _, path := range resolved {
			if _, err := e.vault.SoftDelete(path); err != nil {
				result.Failures = append(result.Failures, FileFailure{Path: path, Err: err.Error()})
			}
		}
	}

	result.Summary = fmt.Sprintf("archived %d path(s) into %s (%d failed)",
		len(resolved), target, len(result.Failures))
	e.record("create_archive", archiveParams(sources, archivePath, removeOriginals), &result)
	return result, nil
}

// ExtractArchive decompresses an archive into destDir through the
// codec collaborator, optionally soft-deleting the archive afterwards.
func (e *Engine) ExtractArchive(archivePath, destDir string, removeArchive bool, opts Options) (Result, error) {
	source, err := e.resolver.ResolveExisting(archivePath)
	if err != nil {
		return Result{}, err
	}
	dest, err := e.resolver.Resolve(destDir)
	if err != nil {
		return Result{}, err
	}

	result := Result{DryRun: e.effectiveDryRun(opts)}
	result.Planned = []PlannedAction{{Kind: "extract", Source: source, Dest: dest}}

	if result.DryRun {
		result.Summary = fmt.Sprintf("would extract %s into %s", source, dest)
		e.record("extract_archive", extractParams(archivePath, destDir, removeArchive), &result)
		return result, nil
	}

	extracted, err := e.codec.Decompress(source, dest)
	if err != nil {
		e.recordFailure("extract_archive", extractParams(archivePath, destDir, removeArchive), err, []string{source})
		return Result{}, err
	}
	result.Paths = extracted

	if removeArchive {
		if _, err := e.vault.SoftDelete(source); err != nil {
			result.Failures = append(result.Failures, FileFailure{Path: source, Err: err.Error()})
		}
	}

	result.Summary = fmt.Sprintf("extracted %d file(s) from %s into %s (%d failed)",
		len(extracted), source, dest, len(result.Failures))
	e.record("extract_archive", extractParams(archivePath, destDir, removeArchive), &result)
	return result, nil
}

func archiveParams(sources []string, archivePath string, removeOriginals bool) map[string]interface{} {
	return map[string]interface{}{
		"sources":          sources,
		"archive":          archivePath,
		"remove_originals": removeOriginals,
	}
}

func extractParams(archivePath, destDir string, removeArchive bool) map[string]interface{} {
	return map[string]interface{}{
		"archive":        archivePath,
		"destination":    destDir,
		"remove_archive": removeArchive,
	}
}
