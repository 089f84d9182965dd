// Test Type: Unit Test
// Description: Tests for the hashing package - digests and the worker pool

package hashing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tidy/pkg/filesystem"
	"github.com/arthur-debert/tidy/pkg/hashing"
)

func TestHasher_Sum(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.WriteFile("/a/first.txt", []byte("same content"), 0644))
	require.NoError(t, fs.WriteFile("/b/other-name.bin", []byte("same content"), 0600))
	require.NoError(t, fs.WriteFile("/a/different.txt", []byte("different content"), 0644))

	h := hashing.NewHasher(fs)

	t.Run("identical_content_identical_digest", func(t *testing.T) {
		first, err := h.Sum("/a/first.txt")
		require.NoError(t, err)
		second, err := h.Sum("/b/other-name.bin")
		require.NoError(t, err)
		assert.Equal(t, first, second, "digest must not depend on name or location")
	})

	t.Run("different_content_different_digest", func(t *testing.T) {
		first, err := h.Sum("/a/first.txt")
		require.NoError(t, err)
		other, err := h.Sum("/a/different.txt")
		require.NoError(t, err)
		assert.NotEqual(t, first, other)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := h.Sum("/nope")
		assert.Error(t, err)
	})
}

func TestHasher_QuickSum(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.WriteFile("/x", []byte("payload"), 0644))
	require.NoError(t, fs.WriteFile("/y", []byte("payload"), 0644))

	h := hashing.NewHasher(fs)
	x, err := h.QuickSum("/x")
	require.NoError(t, err)
	y, err := h.QuickSum("/y")
	require.NoError(t, err)
	assert.Equal(t, x, y)
}

func TestPool(t *testing.T) {
	fs := filesystem.NewMemory()
	files := map[string]string{
		"/p/a": "alpha",
		"/p/b": "beta",
		"/p/c": "alpha",
		"/p/d": "delta",
	}
	for path, content := range files {
		require.NoError(t, fs.WriteFile(path, []byte(content), 0644))
	}

	pool := hashing.NewPool(hashing.NewHasher(fs), 2)
	require.NoError(t, pool.Start())

	go func() {
		for path := range files {
			pool.Add(hashing.Task{Path: path, Size: int64(len(files[path]))})
		}
		pool.CloseAndWait()
	}()

	digests := make(map[string]string)
	for result := range pool.Results() {
		require.NoError(t, result.Err)
		digests[result.Path] = result.Digest
	}

	require.Len(t, digests, len(files))
	assert.Equal(t, digests["/p/a"], digests["/p/c"])
	assert.NotEqual(t, digests["/p/a"], digests["/p/b"])
}
