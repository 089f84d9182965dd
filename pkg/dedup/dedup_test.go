// Test Type: Unit Test
// Description: Tests for the dedup package - duplicate grouping and
// keep-first designation

package dedup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tidy/pkg/dedup"
	"github.com/arthur-debert/tidy/pkg/filesystem"
	"github.com/arthur-debert/tidy/pkg/hashing"
	"github.com/arthur-debert/tidy/pkg/types"
)

func newFinder(fs types.FS) *dedup.Finder {
	return dedup.NewFinder(fs, hashing.NewHasher(fs), 2, ".tidy-trash")
}

func TestFinder_Find(t *testing.T) {
	t.Run("three_identical_one_distinct", func(t *testing.T) {
		fs := filesystem.NewMemory()
		require.NoError(t, fs.WriteFile("/in/a.txt", []byte("dup"), 0644))
		require.NoError(t, fs.WriteFile("/in/b.txt", []byte("dup"), 0644))
		require.NoError(t, fs.WriteFile("/in/c.txt", []byte("dup"), 0644))
		require.NoError(t, fs.WriteFile("/in/unique.txt", []byte("one of a kind"), 0644))

		groups, failures, err := newFinder(fs).Find("/in")
		require.NoError(t, err)
		assert.Empty(t, failures)
		require.Len(t, groups, 1)

		group := groups[0]
		assert.Equal(t, []string{"/in/a.txt", "/in/b.txt", "/in/c.txt"}, group.Paths)
		assert.Equal(t, "/in/a.txt", group.Keep())
		assert.Equal(t, []string{"/in/b.txt", "/in/c.txt"}, group.Duplicates())
	})

	t.Run("same_size_different_content", func(t *testing.T) {
		fs := filesystem.NewMemory()
		require.NoError(t, fs.WriteFile("/in/x.bin", []byte("aaaa"), 0644))
		require.NoError(t, fs.WriteFile("/in/y.bin", []byte("bbbb"), 0644))

		groups, failures, err := newFinder(fs).Find("/in")
		require.NoError(t, err)
		assert.Empty(t, failures)
		assert.Empty(t, groups)
	})

	t.Run("duplicates_across_subdirectories", func(t *testing.T) {
		fs := filesystem.NewMemory()
		require.NoError(t, fs.WriteFile("/in/top.dat", []byte("shared"), 0644))
		require.NoError(t, fs.WriteFile("/in/sub/nested.dat", []byte("shared"), 0644))

		groups, _, err := newFinder(fs).Find("/in")
		require.NoError(t, err)
		require.Len(t, groups, 1)
		// Traversal visits files before descending into later siblings,
		// both orders are deterministic across runs
		assert.Len(t, groups[0].Paths, 2)
		assert.Contains(t, groups[0].Paths, "/in/top.dat")
		assert.Contains(t, groups[0].Paths, "/in/sub/nested.dat")
	})

	t.Run("trash_vault_skipped", func(t *testing.T) {
		fs := filesystem.NewMemory()
		require.NoError(t, fs.WriteFile("/in/live.txt", []byte("dup"), 0644))
		require.NoError(t, fs.WriteFile("/in/.tidy-trash/dead.txt", []byte("dup"), 0644))

		groups, _, err := newFinder(fs).Find("/in")
		require.NoError(t, err)
		assert.Empty(t, groups)
	})

	t.Run("not_a_directory", func(t *testing.T) {
		fs := filesystem.NewMemory()
		require.NoError(t, fs.WriteFile("/in/file.txt", []byte("x"), 0644))
		_, _, err := newFinder(fs).Find("/in/file.txt")
		assert.Error(t, err)
	})

	t.Run("empty_tree", func(t *testing.T) {
		fs := filesystem.NewMemory()
		require.NoError(t, fs.MkdirAll("/in", 0755))
		groups, failures, err := newFinder(fs).Find("/in")
		require.NoError(t, err)
		assert.Empty(t, groups)
		assert.Empty(t, failures)
	})
}
