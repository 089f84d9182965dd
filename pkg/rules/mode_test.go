// Test Type: Unit Test
// Description: Tests for the rules package - sort mode classification

package rules_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tidy/pkg/config"
	"github.com/arthur-debert/tidy/pkg/filesystem"
	"github.com/arthur-debert/tidy/pkg/metadata"
	"github.com/arthur-debert/tidy/pkg/rules"
	"github.com/arthur-debert/tidy/pkg/types"
)

func entry(path string, size int64, mod time.Time) types.FileEntry {
	return types.FileEntry{
		Path:    path,
		Size:    size,
		ModTime: mod,
		Ext:     strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")),
	}
}

func TestByType(t *testing.T) {
	mode := rules.NewByType(map[string][]string{
		"Documents": {"pdf"},
		"Images":    {"jpg", "JPEG"},
	}, "Other")

	t.Run("known_extensions", func(t *testing.T) {
		assert.Equal(t, "Documents", mode.Classify(entry("/in/a.pdf", 1, time.Now())))
		assert.Equal(t, "Images", mode.Classify(entry("/in/b.jpg", 1, time.Now())))
	})

	t.Run("extension_case_insensitive", func(t *testing.T) {
		// Ext on FileEntry is already lower-cased by NewFileEntry;
		// configured extensions may come in any case
		assert.Equal(t, "Images", mode.Classify(entry("/in/c.jpeg", 1, time.Now())))
	})

	t.Run("unknown_extension_falls_back", func(t *testing.T) {
		assert.Equal(t, "Other", mode.Classify(entry("/in/c.txt", 1, time.Now())))
	})
}

func TestByDate(t *testing.T) {
	mode := rules.NewByDate("modified")
	mod := time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "2024-03", mode.Classify(entry("/in/x.txt", 1, mod)))
}

func TestBySize(t *testing.T) {
	mode := rules.NewBySize(config.Defaults().SizeTiers)

	assert.Equal(t, "small", mode.Classify(entry("/in/s", 512, time.Now())))
	assert.Equal(t, "medium", mode.Classify(entry("/in/m", 50<<20, time.Now())))
	assert.Equal(t, "large", mode.Classify(entry("/in/l", 500<<20, time.Now())))
}

func TestByPattern(t *testing.T) {
	t.Run("first_match_wins", func(t *testing.T) {
		mode, err := rules.NewByPattern([]config.PatternRule{
			{Pattern: `^invoice`, Label: "Invoices"},
			{Pattern: `\.pdf$`, Label: "PDFs"},
		})
		require.NoError(t, err)

		assert.Equal(t, "Invoices", mode.Classify(entry("/in/invoice-2024.pdf", 1, time.Now())))
		assert.Equal(t, "PDFs", mode.Classify(entry("/in/manual.pdf", 1, time.Now())))
		assert.Equal(t, rules.Unmatched, mode.Classify(entry("/in/notes.txt", 1, time.Now())))
	})

	t.Run("invalid_regex_rejected_at_build", func(t *testing.T) {
		_, err := rules.NewByPattern([]config.PatternRule{{Pattern: `([`, Label: "Bad"}})
		require.Error(t, err)
	})

	t.Run("empty_label_rejected", func(t *testing.T) {
		_, err := rules.NewByPattern([]config.PatternRule{{Pattern: `.*`}})
		require.Error(t, err)
	})

	t.Run("label_with_separator_rejected", func(t *testing.T) {
		_, err := rules.NewByPattern([]config.PatternRule{{Pattern: `.*`, Label: "../escape"}})
		require.Error(t, err)
	})
}

func TestByKeyword(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.WriteFile("/in/report.txt", []byte("Quarterly INVOICE enclosed"), 0644))
	require.NoError(t, fs.WriteFile("/in/plain.txt", []byte("nothing interesting"), 0644))

	mode := rules.NewByKeyword(fs, []string{"contract", "invoice"}, 0)

	t.Run("case_insensitive_first_keyword_wins", func(t *testing.T) {
		assert.Equal(t, "invoice", mode.Classify(entry("/in/report.txt", 1, time.Now())))
	})

	t.Run("no_keyword_unmatched", func(t *testing.T) {
		assert.Equal(t, rules.Unmatched, mode.Classify(entry("/in/plain.txt", 1, time.Now())))
	})

	t.Run("unreadable_file_unsorted", func(t *testing.T) {
		assert.Equal(t, rules.Unsorted, mode.Classify(entry("/in/missing.txt", 1, time.Now())))
	})
}

func TestByMetadata(t *testing.T) {
	t.Run("unavailable_extractor_degrades_to_unsorted", func(t *testing.T) {
		mode := rules.NewByMetadata(metadata.Unavailable(), "kind")
		assert.Equal(t, rules.Unsorted, mode.Classify(entry("/in/photo.jpg", 1, time.Now())))
	})

	t.Run("precomputed_metadata_used", func(t *testing.T) {
		mode := rules.NewByMetadata(metadata.NewSniffer(filesystem.NewMemory()), "kind")
		e := entry("/in/photo.jpg", 1, time.Now())
		e.Metadata = map[string]string{"kind": "image"}
		assert.Equal(t, "image", mode.Classify(e))
	})

	t.Run("value_with_separator_degrades_to_unsorted", func(t *testing.T) {
		mode := rules.NewByMetadata(metadata.NewSniffer(filesystem.NewMemory()), "kind")
		e := entry("/in/photo.jpg", 1, time.Now())
		e.Metadata = map[string]string{"kind": "../escape"}
		assert.Equal(t, rules.Unsorted, mode.Classify(e))
	})

	t.Run("sniffer_classifies_by_magic_bytes", func(t *testing.T) {
		fs := filesystem.NewMemory()
		// Minimal PNG signature
		png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
		require.NoError(t, fs.WriteFile("/in/pic", png, 0644))

		mode := rules.NewByMetadata(metadata.NewSniffer(fs), "kind")
		assert.Equal(t, "image", mode.Classify(entry("/in/pic", int64(len(png)), time.Now())))
	})
}

func TestModeFor(t *testing.T) {
	cfg := config.Defaults()
	fs := filesystem.NewMemory()
	extractor := metadata.NewSniffer(fs)

	t.Run("known_modes", func(t *testing.T) {
		for _, name := range []string{"type", "date", "size", "metadata"} {
			mode, err := rules.ModeFor(name, cfg, fs, extractor)
			require.NoError(t, err, name)
			assert.Equal(t, name, mode.Name())
		}
	})

	t.Run("pattern_requires_rules", func(t *testing.T) {
		_, err := rules.ModeFor("pattern", cfg, fs, extractor)
		require.Error(t, err)
	})

	t.Run("unknown_mode", func(t *testing.T) {
		_, err := rules.ModeFor("bogus", cfg, fs, extractor)
		require.Error(t, err)
	})
}
