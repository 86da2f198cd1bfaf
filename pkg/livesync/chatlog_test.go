package livesync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatLogAppendPreservesArrivalOrder(t *testing.T) {
	base := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	log := NewChatLog()
	log.Reset(1, []Message{
		{ID: 1, Content: "m1", CreatedAt: base},
		{ID: 2, Content: "m2", CreatedAt: base.Add(time.Minute)},
	})

	// m3 carries an older timestamp but still renders last.
	ok := log.Append(Message{ID: 3, Content: "m3", CreatedAt: base.Add(-time.Hour)})
	require.True(t, ok)

	got := log.Messages()
	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].ID, got[1].ID, got[2].ID})
}

func TestChatLogDeduplicatesByID(t *testing.T) {
	log := NewChatLog()
	log.Reset(1, nil)

	require.True(t, log.Append(Message{ID: 7, Content: "hello"}))
	assert.False(t, log.Append(Message{ID: 7, Content: "hello"}))
	assert.Equal(t, 1, log.Len())
}

func TestChatLogDeduplicatesAgainstHistory(t *testing.T) {
	log := NewChatLog()
	log.Reset(1, []Message{{ID: 4, Content: "from history"}})

	assert.False(t, log.Append(Message{ID: 4, Content: "from push"}))
	assert.Equal(t, 1, log.Len())
}

func TestChatLogResetReplacesContents(t *testing.T) {
	log := NewChatLog()
	log.Reset(1, []Message{{ID: 1}})
	log.Append(Message{ID: 2})

	log.Reset(2, []Message{{ID: 9}})
	got := log.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, 9, got[0].ID)
	assert.Equal(t, 2, log.EventID())

	// ids from the discarded conversation are appendable again
	assert.True(t, log.Append(Message{ID: 1}))
}
