package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"race-service/internal/models"
)

var ErrEnrollmentNotFound = errors.New("enrollment not found")

// EnrollmentRepository defines interactions for event enrollments.
type EnrollmentRepository interface {
	ListByEvent(ctx context.Context, eventID int) ([]models.Enrollment, error)
	Enroll(ctx context.Context, eventID int, dorsal int, athleteName string) (models.Enrollment, error)
	UpdateStatus(ctx context.Context, eventID int, dorsal int, status string) (models.Enrollment, error)
}

// EnrollmentRepo is a sqlx-backed repository.
type EnrollmentRepo struct {
	db *sqlx.DB
}

// NewEnrollmentRepo constructs EnrollmentRepo.
func NewEnrollmentRepo(db *sqlx.DB) *EnrollmentRepo {
	return &EnrollmentRepo{db: db}
}

// ListByEvent returns the enrollment snapshot in ascending dorsal order.
func (r *EnrollmentRepo) ListByEvent(ctx context.Context, eventID int) ([]models.Enrollment, error) {
	query := `SELECT event_id, dorsal, athlete_name, status, updated_at
        FROM enrollments
        WHERE event_id=$1
        ORDER BY dorsal ASC`
	var enrollments []models.Enrollment
	err := r.db.SelectContext(ctx, &enrollments, query, eventID)
	return enrollments, err
}

// Enroll registers an athlete for an event under a dorsal number.
func (r *EnrollmentRepo) Enroll(ctx context.Context, eventID int, dorsal int, athleteName string) (models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.QueryRowxContext(ctx, `INSERT INTO enrollments (event_id, dorsal, athlete_name) VALUES ($1, $2, $3)
        RETURNING event_id, dorsal, athlete_name, status, updated_at`, eventID, dorsal, athleteName).
		Scan(&enrollment.EventID, &enrollment.Dorsal, &enrollment.AthleteName, &enrollment.Status, &enrollment.UpdatedAt)
	return enrollment, err
}

// UpdateStatus changes the race progress for a single dorsal.
func (r *EnrollmentRepo) UpdateStatus(ctx context.Context, eventID int, dorsal int, status string) (models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.QueryRowxContext(ctx, `UPDATE enrollments SET status=$3, updated_at=NOW()
        WHERE event_id=$1 AND dorsal=$2
        RETURNING event_id, dorsal, athlete_name, status, updated_at`, eventID, dorsal, status).
		Scan(&enrollment.EventID, &enrollment.Dorsal, &enrollment.AthleteName, &enrollment.Status, &enrollment.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Enrollment{}, ErrEnrollmentNotFound
	}
	return enrollment, err
}
