package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"race-service/internal/models"
)

// MessageRepository defines interactions for event chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, eventID int, senderID int, senderName, senderRole, content string) (models.Message, error)
	GetEventMessages(ctx context.Context, eventID int) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message in an event conversation.
func (r *MessageRepo) CreateMessage(ctx context.Context, eventID int, senderID int, senderName, senderRole, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (event_id, sender_id, sender_name, sender_role, content) VALUES ($1, $2, $3, $4, $5)
        RETURNING id, event_id, sender_id, sender_name, sender_role, content, created_at`, eventID, senderID, senderName, senderRole, content).
		Scan(&msg.ID, &msg.EventID, &msg.SenderID, &msg.SenderName, &msg.SenderRole, &msg.Content, &msg.CreatedAt)
	return msg, err
}

// GetEventMessages returns the message history in chronological order.
func (r *MessageRepo) GetEventMessages(ctx context.Context, eventID int) ([]models.Message, error) {
	query := `SELECT id, event_id, sender_id, sender_name, sender_role, content, created_at
        FROM messages
        WHERE event_id=$1
        ORDER BY created_at ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, eventID)
	return msgs, err
}
