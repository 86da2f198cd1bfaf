package models

import "time"

// Race progress values stored for an enrollment. The live layer treats the
// status as an opaque string; these are what the backend writes.
const (
	StatusNotStarted = "NOT_STARTED"
	StatusStarted    = "STARTED"
	StatusFinished   = "FINISHED"
	StatusDNF        = "DNF"
)

// Enrollment represents an athlete enrolled in an event, identified by
// dorsal number. The dorsal is unique within one event.
type Enrollment struct {
	EventID     int       `db:"event_id" json:"event_id"`
	Dorsal      int       `db:"dorsal" json:"dorsal"`
	AthleteName string    `db:"athlete_name" json:"athlete_name"`
	Status      string    `db:"status" json:"status"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// StatusUpdate is the partial enrollment record pushed over websockets when
// an official changes race progress. Fields other than the dorsal key are
// optional; absent fields keep their current value on the client side.
type StatusUpdate struct {
	Dorsal      int    `json:"dorsal"`
	AthleteName string `json:"athlete_name,omitempty"`
	Status      string `json:"status,omitempty"`
}

// RaceEvent is broadcast through race-status websockets.
type RaceEvent struct {
	Type   string        `json:"type"`
	Update *StatusUpdate `json:"update,omitempty"`
}
