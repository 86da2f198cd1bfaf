// Package livesync is the client half of the race service's live views: it
// keeps one websocket connection per event, loads the authoritative snapshot
// over REST and merges server pushes into the locally held collections.
package livesync

import "time"

// Enrollment is one row of the race-status board, keyed by dorsal number.
type Enrollment struct {
	Dorsal      int    `json:"dorsal"`
	AthleteName string `json:"athlete_name"`
	Status      string `json:"status"`
}

// StatusUpdate is a partial enrollment record pushed by the server. Fields
// other than Dorsal are optional; absent fields keep their current value.
type StatusUpdate struct {
	Dorsal      int    `json:"dorsal"`
	AthleteName string `json:"athlete_name,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Message is one chat message in an event conversation.
type Message struct {
	ID         int       `json:"id"`
	EventID    int       `json:"event_id"`
	SenderID   int       `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	SenderRole string    `json:"sender_role"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// frame is the wire envelope for every server push.
type frame struct {
	Type    string        `json:"type"`
	Update  *StatusUpdate `json:"update,omitempty"`
	Message *Message      `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// outbound is what a chat client sends.
type outbound struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}
