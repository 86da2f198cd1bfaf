package models

import "time"

// Event represents a trail-running event.
type Event struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartsAt  time.Time `db:"starts_at" json:"starts_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
