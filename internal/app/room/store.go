package room

import "time"

// ChatMessage is a single stored chat message. Immutable once stored.
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Text      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageStore is a bounded, append-only buffer of chat messages with
// oldest-first eviction. It is not safe for concurrent use; the Room
// serializes all access.
type MessageStore struct {
	messages []ChatMessage
	limit    int
}

// NewMessageStore creates a MessageStore holding at most limit messages.
func NewMessageStore(limit int) *MessageStore {
	return &MessageStore{
		messages: make([]ChatMessage, 0, 64),
		limit:    limit,
	}
}

// Add appends a message, evicting the oldest entries if the bound is exceeded.
func (s *MessageStore) Add(msg ChatMessage) {
	s.messages = append(s.messages, msg)

	if len(s.messages) > s.limit {
		s.messages = s.messages[len(s.messages)-s.limit:]
	}
}

// Recent returns the n most recent messages in arrival order. The returned
// slice is a copy and safe to hand to encoders.
func (s *MessageStore) Recent(n int) []ChatMessage {
	if n > len(s.messages) {
		n = len(s.messages)
	}

	out := make([]ChatMessage, n)
	copy(out, s.messages[len(s.messages)-n:])
	return out
}

// Len returns the number of stored messages.
func (s *MessageStore) Len() int {
	return len(s.messages)
}

// Clear discards all stored messages.
func (s *MessageStore) Clear() {
	s.messages = s.messages[:0]
}
