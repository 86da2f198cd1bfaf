package livesync

import "sync"

// ChatLog holds the message collection for one event's conversation. History
// arrives once via Reset; live pushes are appended in arrival order without
// re-sorting, so a late push with an older timestamp still renders last.
// Pushes are deduplicated by message id because transport redelivery across
// reconnects would otherwise duplicate visible messages.
type ChatLog struct {
	mu       sync.RWMutex
	eventID  int
	messages []Message
	seen     map[int]struct{}
}

// NewChatLog creates an empty log.
func NewChatLog() *ChatLog {
	return &ChatLog{seen: make(map[int]struct{})}
}

// Reset replaces the log with the fetched history, preserving its order.
func (l *ChatLog) Reset(eventID int, history []Message) {
	messages := make([]Message, len(history))
	copy(messages, history)

	seen := make(map[int]struct{}, len(messages))
	for _, m := range messages {
		seen[m.ID] = struct{}{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.eventID = eventID
	l.messages = messages
	l.seen = seen
}

// Append adds a pushed message to the end of the log. Returns false when the
// message id was already present.
func (l *ChatLog) Append(msg Message) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[msg.ID]; ok {
		return false
	}
	l.seen[msg.ID] = struct{}{}
	l.messages = append(l.messages, msg)
	return true
}

// Messages returns a copy of the log in display order.
func (l *ChatLog) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// EventID returns the event the current history belongs to.
func (l *ChatLog) EventID() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.eventID
}

// Len returns the number of messages held.
func (l *ChatLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
