package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"race-service/internal/models"
)

var ErrEventNotFound = errors.New("event not found")

// EventRepository abstracts event persistence.
type EventRepository interface {
	GetEvent(ctx context.Context, eventID int) (models.Event, error)
	CreateEvent(ctx context.Context, name string, startsAt sql.NullTime) (models.Event, error)
}

// EventRepo is a sqlx implementation of EventRepository.
type EventRepo struct {
	db *sqlx.DB
}

// NewEventRepo constructs an EventRepo.
func NewEventRepo(db *sqlx.DB) *EventRepo {
	return &EventRepo{db: db}
}

// GetEvent fetches an event by id.
func (r *EventRepo) GetEvent(ctx context.Context, eventID int) (models.Event, error) {
	var event models.Event
	err := r.db.GetContext(ctx, &event, `SELECT id, name, starts_at, created_at FROM events WHERE id=$1`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, ErrEventNotFound
	}
	return event, err
}

// CreateEvent stores a new event.
func (r *EventRepo) CreateEvent(ctx context.Context, name string, startsAt sql.NullTime) (models.Event, error) {
	var event models.Event
	err := r.db.QueryRowxContext(ctx, `INSERT INTO events (name, starts_at) VALUES ($1, COALESCE($2, NOW())) RETURNING id, name, starts_at, created_at`, name, startsAt).
		Scan(&event.ID, &event.Name, &event.StartsAt, &event.CreatedAt)
	return event, err
}
