// Package dedup finds files with identical content.
//
// Candidates are grouped by size first, which is free and eliminates
// most non-duplicates, then thinned with a cheap xxhash quick-sum, and
// only then confirmed with the full sha256 digest. Hashing runs over a
// worker pool; everything else is single-goroutine, and nothing here
// mutates the filesystem.
package dedup

import (
	"path/filepath"
	"sort"

	"github.com/arthur-debert/tidy/pkg/errors"
	"github.com/arthur-debert/tidy/pkg/hashing"
	"github.com/arthur-debert/tidy/pkg/logging"
	"github.com/arthur-debert/tidy/pkg/types"
)

// Group is a set of paths sharing one content digest. Paths keep their
// discovery (traversal) order, so Keep is deterministic.
type Group struct {
	Digest string
	Paths  []string
}

// Keep returns the earliest-discovered member, the one duplicate
// removal preserves.
func (g Group) Keep() string {
	return g.Paths[0]
}

// Duplicates returns the members slated for removal.
func (g Group) Duplicates() []string {
	return g.Paths[1:]
}

// Failure records one file that could not be examined. The scan
// continues past it.
type Failure struct {
	Path string
	Err  error
}

// Finder scans a tree for duplicate files.
type Finder struct {
	fs       types.FS
	hasher   *hashing.Hasher
	workers  int
	skipDirs map[string]bool
}

// NewFinder creates a finder. skipDirs names directories (by base name)
// excluded from traversal, typically the trash vault.
func NewFinder(fs types.FS, hasher *hashing.Hasher, workers int, skipDirs ...string) *Finder {
	skip := make(map[string]bool, len(skipDirs))
	for _, dir := range skipDirs {
		skip[dir] = true
	}
	return &Finder{fs: fs, hasher: hasher, workers: workers, skipDirs: skip}
}

type candidate struct {
	path  string
	size  int64
	order int
}

// Find returns all duplicate groups under root, in discovery order.
// Files that cannot be read are reported as failures and skipped; one
// bad file never aborts the scan.
func (f *Finder) Find(root string) ([]Group, []Failure, error) {
	logger := logging.GetLogger("dedup")

	var candidates []candidate
	var failures []Failure
	if err := f.walk(root, &candidates, &failures); err != nil {
		return nil, nil, err
	}
	logger.Debug().Int("files", len(candidates)).Msg("Collected candidates")

	// Size buckets: a unique size cannot be a duplicate
	bySize := make(map[int64][]candidate)
	for _, c := range candidates {
		bySize[c.size] = append(bySize[c.size], c)
	}

	// Quick-sum prefilter within same-size buckets
	type quickKey struct {
		size int64
		sum  uint64
	}
	byQuick := make(map[quickKey][]candidate)
	for size, bucket := range bySize {
		if len(bucket) < 2 {
			continue
		}
		for _, c := range bucket {
			sum, err := f.hasher.QuickSum(c.path)
			if err != nil {
				failures = append(failures, Failure{Path: c.path, Err: err})
				continue
			}
			key := quickKey{size: size, sum: sum}
			byQuick[key] = append(byQuick[key], c)
		}
	}

	// Full digest confirmation over the worker pool
	order := make(map[string]int)
	var toHash []candidate
	for _, bucket := range byQuick {
		if len(bucket) < 2 {
			continue
		}
		for _, c := range bucket {
			order[c.path] = c.order
			toHash = append(toHash, c)
		}
	}

	digests, hashFailures, err := f.hashAll(toHash)
	if err != nil {
		return nil, nil, err
	}
	failures = append(failures, hashFailures...)

	byDigest := make(map[string][]string)
	for path, digest := range digests {
		byDigest[digest] = append(byDigest[digest], path)
	}

	var groups []Group
	for digest, paths := range byDigest {
		if len(paths) < 2 {
			continue
		}
		sort.Slice(paths, func(i, j int) bool {
			return order[paths[i]] < order[paths[j]]
		})
		groups = append(groups, Group{Digest: digest, Paths: paths})
	}
	sort.Slice(groups, func(i, j int) bool {
		return order[groups[i].Paths[0]] < order[groups[j].Paths[0]]
	})

	logger.Info().Int("groups", len(groups)).Int("failures", len(failures)).Msg("Duplicate scan complete")
	return groups, failures, nil
}

// walk traverses root depth-first in directory order, collecting
// regular files. Unreadable directories are recorded as failures.
func (f *Finder) walk(root string, out *[]candidate, failures *[]Failure) error {
	info, err := f.fs.Stat(root)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", root)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrInvalidPath, "not a directory: %s", root)
	}

	entries, err := f.fs.ReadDir(root)
	if err != nil {
		*failures = append(*failures, Failure{Path: root, Err: err})
		return nil
	}
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if entry.IsDir() {
			if f.skipDirs[entry.Name()] {
				continue
			}
			if err := f.walk(path, out, failures); err != nil {
				return err
			}
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			*failures = append(*failures, Failure{Path: path, Err: err})
			continue
		}
		*out = append(*out, candidate{path: path, size: fi.Size(), order: len(*out)})
	}
	return nil
}

// hashAll computes sha256 digests for the candidates over the pool.
func (f *Finder) hashAll(candidates []candidate) (map[string]string, []Failure, error) {
	digests := make(map[string]string, len(candidates))
	if len(candidates) == 0 {
		return digests, nil, nil
	}

	pool := hashing.NewPool(f.hasher, f.workers)
	if err := pool.Start(); err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrInternal, "cannot start hash pool")
	}

	go func() {
		for _, c := range candidates {
			pool.Add(hashing.Task{Path: c.path, Size: c.size})
		}
		pool.CloseAndWait()
	}()

	var failures []Failure
	for result := range pool.Results() {
		if result.Err != nil {
			failures = append(failures, Failure{Path: result.Path, Err: result.Err})
			continue
		}
		digests[result.Path] = result.Digest
	}
	return digests, failures, nil
}
