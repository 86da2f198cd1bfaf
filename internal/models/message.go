package models

import "time"

// Message represents a chat message in an event conversation.
type Message struct {
	ID         int       `db:"id" json:"id"`
	EventID    int       `db:"event_id" json:"event_id"`
	SenderID   int       `db:"sender_id" json:"sender_id"`
	SenderName string    `db:"sender_name" json:"sender_name"`
	SenderRole string    `db:"sender_role" json:"sender_role"`
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ChatEvent is broadcast through chat websockets.
type ChatEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// ChatInbound is what a chat client sends over its websocket.
type ChatInbound struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}
