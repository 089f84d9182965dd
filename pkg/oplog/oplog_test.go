// Test Type: Unit Test
// Description: Tests for the oplog package - append-only record keeping
// and the optional journal

package oplog_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tidy/pkg/oplog"
)

func TestLog_Append(t *testing.T) {
	l := oplog.New()

	first := l.Append("move", map[string]interface{}{"source": "/a"}, false,
		oplog.OutcomeSuccess, "moved /a", []string{"/a", "/b"})
	second := l.Append("delete", nil, true,
		oplog.OutcomeSimulated, "would trash /c", []string{"/c"})

	t.Run("monotonic_sequence", func(t *testing.T) {
		assert.Equal(t, uint64(1), first.Seq)
		assert.Equal(t, uint64(2), second.Seq)
	})

	t.Run("utc_timestamps", func(t *testing.T) {
		assert.Equal(t, "UTC", first.Time.Location().String())
		assert.False(t, second.Time.Before(first.Time))
	})

	t.Run("dry_run_flag_preserved", func(t *testing.T) {
		records := l.Records(0)
		require.Len(t, records, 2)
		assert.False(t, records[0].DryRun)
		assert.True(t, records[1].DryRun)
	})
}

func TestLog_Records(t *testing.T) {
	l := oplog.New()
	for i := 0; i < 5; i++ {
		l.Append("mkdir", nil, false, oplog.OutcomeSuccess, "mkdir", nil)
	}

	t.Run("limit_returns_most_recent", func(t *testing.T) {
		records := l.Records(2)
		require.Len(t, records, 2)
		assert.Equal(t, uint64(4), records[0].Seq)
		assert.Equal(t, uint64(5), records[1].Seq)
	})

	t.Run("no_limit_returns_all", func(t *testing.T) {
		assert.Len(t, l.Records(0), 5)
		assert.Len(t, l.Records(-1), 5)
	})

	t.Run("returned_slice_is_a_copy", func(t *testing.T) {
		records := l.Records(0)
		records[0].Summary = "tampered"
		assert.Equal(t, "mkdir", l.Records(0)[0].Summary)
	})
}

func TestLog_Clear(t *testing.T) {
	l := oplog.New()
	l.Append("move", nil, false, oplog.OutcomeSuccess, "moved", nil)
	require.Equal(t, 1, l.Len())

	l.Clear()
	assert.Equal(t, 0, l.Len())

	// Sequence numbers keep climbing across a clear
	rec := l.Append("move", nil, false, oplog.OutcomeSuccess, "moved again", nil)
	assert.Equal(t, uint64(2), rec.Seq)
}

func TestLog_Journal(t *testing.T) {
	dir := t.TempDir()
	journal := filepath.Join(dir, "state", "journal.jsonl")

	l := oplog.New().WithJournal(journal)
	defer func() { require.NoError(t, l.Close()) }()

	l.Append("sort_by_type", map[string]interface{}{"root": "/in"}, false,
		oplog.OutcomeSuccess, "sorted 3 file(s)", []string{"/in/a.pdf"})
	l.Append("delete", nil, true, oplog.OutcomeSimulated, "would trash /x", nil)

	data, err := os.ReadFile(journal)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &decoded))
	assert.Equal(t, "sort_by_type", decoded["op"])
	assert.Equal(t, float64(1), decoded["seq"])
	assert.Equal(t, "success", decoded["outcome"])

	t.Run("clear_keeps_journal", func(t *testing.T) {
		l.Clear()
		data, err := os.ReadFile(journal)
		require.NoError(t, err)
		assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 2)
	})
}

func TestLog_JournalUnwritable(t *testing.T) {
	// A journal that cannot be opened degrades to in-memory logging
	l := oplog.New().WithJournal(string([]byte{0}))
	rec := l.Append("move", nil, false, oplog.OutcomeSuccess, "still works", nil)
	assert.Equal(t, uint64(1), rec.Seq)
}
