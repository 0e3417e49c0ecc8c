package room

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func makeMessage(i int) ChatMessage {
	return ChatMessage{
		ID:        fmt.Sprintf("msg-%d", i),
		UserID:    "conn-1",
		UserName:  "alice",
		Text:      fmt.Sprintf("hello %d", i),
		Timestamp: time.Unix(int64(i), 0),
	}
}

func TestMessageStore_NeverExceedsBound(t *testing.T) {
	store := NewMessageStore(5)

	for i := 0; i < 20; i++ {
		store.Add(makeMessage(i))
		assert.LessOrEqual(t, store.Len(), 5)
	}

	assert.Equal(t, 5, store.Len())
}

func TestMessageStore_EvictsOldestFirst(t *testing.T) {
	store := NewMessageStore(3)

	for i := 0; i < 5; i++ {
		store.Add(makeMessage(i))
	}

	recent := store.Recent(3)
	assert.Len(t, recent, 3)
	assert.Equal(t, "msg-2", recent[0].ID)
	assert.Equal(t, "msg-3", recent[1].ID)
	assert.Equal(t, "msg-4", recent[2].ID)
}

func TestMessageStore_RecentReturnsArrivalOrder(t *testing.T) {
	store := NewMessageStore(100)

	for i := 0; i < 10; i++ {
		store.Add(makeMessage(i))
	}

	recent := store.Recent(4)
	assert.Len(t, recent, 4)
	for i, msg := range recent {
		assert.Equal(t, fmt.Sprintf("msg-%d", 6+i), msg.ID)
	}
}

func TestMessageStore_RecentLargerThanStored(t *testing.T) {
	store := NewMessageStore(100)
	store.Add(makeMessage(0))

	recent := store.Recent(50)
	assert.Len(t, recent, 1)
}

func TestMessageStore_Clear(t *testing.T) {
	store := NewMessageStore(10)
	store.Add(makeMessage(0))
	store.Clear()

	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.Recent(10))
}
