package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"race-service/internal/models"
	"race-service/internal/observability"
	"race-service/internal/repositories"
	"race-service/internal/telemetry"
	"race-service/internal/ws"
)

// EnrollmentHandler manages enrollment snapshot and status endpoints.
type EnrollmentHandler struct {
	eventRepo      repositories.EventRepository
	enrollmentRepo repositories.EnrollmentRepository
	hub            *ws.Hub
	audit          *telemetry.AuditEmitter
}

// NewEnrollmentHandler builds an EnrollmentHandler.
func NewEnrollmentHandler(eventRepo repositories.EventRepository, enrollmentRepo repositories.EnrollmentRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *EnrollmentHandler {
	return &EnrollmentHandler{
		eventRepo:      eventRepo,
		enrollmentRepo: enrollmentRepo,
		hub:            hub,
		audit:          audit,
	}
}

// ListEnrollments returns the enrollment snapshot for an event, ascending by
// dorsal. This is the authoritative initial state for the race-status view.
func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("event_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	if _, err := h.eventRepo.GetEvent(c.Request.Context(), eventID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrEventNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "event not found"})
		return
	}

	enrollments, err := h.enrollmentRepo.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load enrollments"})
		return
	}
	if enrollments == nil {
		enrollments = []models.Enrollment{}
	}

	c.JSON(http.StatusOK, gin.H{"enrollments": enrollments})
}

// Enroll registers an athlete under a dorsal number (organizer only).
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("event_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req struct {
		Dorsal      int    `json:"dorsal" binding:"required"`
		AthleteName string `json:"athlete_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.eventRepo.GetEvent(c.Request.Context(), eventID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrEventNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "event not found"})
		return
	}

	enrollment, err := h.enrollmentRepo.Enroll(c.Request.Context(), eventID, req.Dorsal, req.AthleteName)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not enroll athlete"})
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// UpdateStatus changes race progress for a dorsal and pushes the partial
// update to every client watching the event (official or organizer only).
func (h *EnrollmentHandler) UpdateStatus(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("event_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}
	dorsal, err := strconv.Atoi(c.Param("dorsal"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dorsal"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	enrollment, err := h.enrollmentRepo.UpdateStatus(c.Request.Context(), eventID, dorsal, req.Status)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrEnrollmentNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not update status"})
		return
	}

	h.hub.BroadcastStatusUpdate(eventID, models.StatusUpdate{
		Dorsal: enrollment.Dorsal,
		Status: enrollment.Status,
	})
	observability.IncStatusUpdate(enrollment.Status)

	if h.audit != nil {
		text := fmt.Sprintf("status change event=%d dorsal=%d status=%s", eventID, dorsal, enrollment.Status)
		h.audit.Emit(c.Request.Context(), "INFO", text, requestIDFromContext(c), userIDFromContext(c))
	}

	c.JSON(http.StatusOK, enrollment)
}

func validStatus(status string) bool {
	switch status {
	case models.StatusNotStarted, models.StatusStarted, models.StatusFinished, models.StatusDNF:
		return true
	}
	return false
}
