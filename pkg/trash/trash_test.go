// Test Type: Unit Test
// Description: Tests for the trash package - soft deletion, listing and
// restore

package trash_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tidy/pkg/filesystem"
	"github.com/arthur-debert/tidy/pkg/trash"
	"github.com/arthur-debert/tidy/pkg/types"
)

func newVault(t *testing.T) (*trash.Vault, types.FS) {
	t.Helper()
	fs := filesystem.NewMemory()
	return trash.NewVault(fs, ".tidy-trash"), fs
}

func TestVault_SoftDelete(t *testing.T) {
	t.Run("file_moves_into_vault_with_content_intact", func(t *testing.T) {
		vault, fs := newVault(t)
		require.NoError(t, fs.WriteFile("/docs/keep.txt", []byte("precious"), 0644))

		entry, err := vault.SoftDelete("/docs/keep.txt")
		require.NoError(t, err)

		// Original gone
		_, statErr := fs.Stat("/docs/keep.txt")
		assert.True(t, os.IsNotExist(statErr))

		// Content recoverable, byte for byte
		assert.True(t, strings.HasPrefix(entry.To, "/docs/.tidy-trash/"))
		data, err := fs.ReadFile(entry.To)
		require.NoError(t, err)
		assert.Equal(t, []byte("precious"), data)
		assert.False(t, entry.IsDir)
	})

	t.Run("same_name_twice_never_collides", func(t *testing.T) {
		vault, fs := newVault(t)
		require.NoError(t, fs.WriteFile("/docs/dup.txt", []byte("one"), 0644))
		first, err := vault.SoftDelete("/docs/dup.txt")
		require.NoError(t, err)

		require.NoError(t, fs.WriteFile("/docs/dup.txt", []byte("two"), 0644))
		second, err := vault.SoftDelete("/docs/dup.txt")
		require.NoError(t, err)

		assert.NotEqual(t, first.To, second.To)
		one, _ := fs.ReadFile(first.To)
		two, _ := fs.ReadFile(second.To)
		assert.Equal(t, []byte("one"), one)
		assert.Equal(t, []byte("two"), two)
	})

	t.Run("directory_moves_whole_subtree", func(t *testing.T) {
		vault, fs := newVault(t)
		require.NoError(t, fs.WriteFile("/proj/old/deep/file.txt", []byte("x"), 0644))

		entry, err := vault.SoftDelete("/proj/old")
		require.NoError(t, err)
		assert.True(t, entry.IsDir)

		_, statErr := fs.Stat("/proj/old")
		assert.True(t, os.IsNotExist(statErr))
		data, err := fs.ReadFile(filepath.Join(entry.To, "deep", "file.txt"))
		require.NoError(t, err)
		assert.Equal(t, []byte("x"), data)
	})

	t.Run("missing_path_fails", func(t *testing.T) {
		vault, _ := newVault(t)
		_, err := vault.SoftDelete("/nope")
		assert.Error(t, err)
	})
}

func TestVault_List(t *testing.T) {
	vault, fs := newVault(t)

	t.Run("no_vault_no_entries", func(t *testing.T) {
		entries, err := vault.List("/docs")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	require.NoError(t, fs.WriteFile("/docs/a.txt", []byte("a"), 0644))
	require.NoError(t, fs.WriteFile("/docs/b.txt", []byte("b"), 0644))
	_, err := vault.SoftDelete("/docs/a.txt")
	require.NoError(t, err)
	_, err = vault.SoftDelete("/docs/b.txt")
	require.NoError(t, err)

	t.Run("entries_in_deletion_order", func(t *testing.T) {
		entries, err := vault.List("/docs")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "/docs/a.txt", entries[0].From)
		assert.Equal(t, "/docs/b.txt", entries[1].From)
		assert.NotEmpty(t, entries[0].ID)
	})
}

func TestVault_Restore(t *testing.T) {
	t.Run("round_trip_restores_bytes", func(t *testing.T) {
		vault, fs := newVault(t)
		require.NoError(t, fs.WriteFile("/docs/back.txt", []byte("come back"), 0644))
		entry, err := vault.SoftDelete("/docs/back.txt")
		require.NoError(t, err)

		restored, err := vault.Restore("/docs", entry.ID)
		require.NoError(t, err)
		assert.Equal(t, "/docs/back.txt", restored)

		data, err := fs.ReadFile("/docs/back.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("come back"), data)

		// Restored entries drop out of the manifest
		entries, err := vault.List("/docs")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("occupied_original_path_gets_disambiguated", func(t *testing.T) {
		vault, fs := newVault(t)
		require.NoError(t, fs.WriteFile("/docs/spot.txt", []byte("old"), 0644))
		entry, err := vault.SoftDelete("/docs/spot.txt")
		require.NoError(t, err)

		// Something new took the spot in the meantime
		require.NoError(t, fs.WriteFile("/docs/spot.txt", []byte("new"), 0644))

		restored, err := vault.Restore("/docs", entry.ID)
		require.NoError(t, err)
		assert.Equal(t, "/docs/spot (1).txt", restored)

		current, _ := fs.ReadFile("/docs/spot.txt")
		assert.Equal(t, []byte("new"), current)
		old, _ := fs.ReadFile(restored)
		assert.Equal(t, []byte("old"), old)
	})

	t.Run("unknown_id_fails", func(t *testing.T) {
		vault, fs := newVault(t)
		require.NoError(t, fs.MkdirAll("/docs", 0755))
		_, err := vault.Restore("/docs", "no-such-id")
		assert.Error(t, err)
	})
}
