package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLine(t *testing.T) {
	at := time.Date(2026, 8, 29, 14, 30, 5, 0, time.UTC)

	t.Run("batch with keywords", func(t *testing.T) {
		rec := Record{
			Time:              at,
			SourceChatIDs:     []int64{-1001234},
			DestinationChatID: -1005678,
			MessageIDs:        []int{1, 2, 3},
			Keywords:          []string{"urgent", "meeting"},
			Batch:             true,
		}
		assert.Equal(t,
			"2026-08-29 14:30:05\tSRC:-1001234\tDEST:-1005678\tIDS:1,2,3\tKWS:urgent,meeting\tBATCH",
			rec.Line())
	})

	t.Run("single without keywords", func(t *testing.T) {
		rec := Record{
			Time:              at,
			SourceChatIDs:     []int64{100},
			DestinationChatID: 200,
			MessageIDs:        []int{42},
		}
		assert.Equal(t,
			"2026-08-29 14:30:05\tSRC:100\tDEST:200\tIDS:42\tKWS:ANY\tSINGLE",
			rec.Line())
	})

	t.Run("multiple sources", func(t *testing.T) {
		rec := Record{
			Time:              at,
			SourceChatIDs:     []int64{100, 101},
			DestinationChatID: 200,
			MessageIDs:        []int{7},
		}
		assert.Contains(t, rec.Line(), "SRC:100,101")
	})
}

func TestLogAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.txt")

	log, err := NewLog(path)
	require.NoError(t, err)
	defer log.Close()

	require.NoError(t, log.Append(Record{
		Time:              time.Date(2026, 8, 29, 14, 30, 5, 0, time.UTC),
		SourceChatIDs:     []int64{100},
		DestinationChatID: 200,
		MessageIDs:        []int{1},
	}))
	require.NoError(t, log.Append(Record{
		SourceChatIDs:     []int64{100},
		DestinationChatID: 200,
		MessageIDs:        []int{2, 3},
		Batch:             true,
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2026-08-29 14:30:05\tSRC:100\tDEST:200\tIDS:1\tKWS:ANY\tSINGLE", lines[0])
	// zero time is stamped on append
	assert.NotContains(t, lines[1], "0001-01-01")
	assert.True(t, strings.HasSuffix(lines[1], "BATCH"))
}

func TestLogAppendIsAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")

	log, err := NewLog(path)
	require.NoError(t, err)
	require.NoError(t, log.Append(Record{SourceChatIDs: []int64{1}, DestinationChatID: 2, MessageIDs: []int{1}}))
	require.NoError(t, log.Close())

	// reopening must keep existing lines
	log, err = NewLog(path)
	require.NoError(t, err)
	require.NoError(t, log.Append(Record{SourceChatIDs: []int64{1}, DestinationChatID: 2, MessageIDs: []int{2}}))
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}
