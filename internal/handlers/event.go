package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"race-service/internal/repositories"
)

// EventHandler manages event metadata endpoints.
type EventHandler struct {
	eventRepo repositories.EventRepository
}

// NewEventHandler builds an EventHandler.
func NewEventHandler(eventRepo repositories.EventRepository) *EventHandler {
	return &EventHandler{eventRepo: eventRepo}
}

// GetEvent returns event metadata for the live views.
func (h *EventHandler) GetEvent(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("event_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	event, err := h.eventRepo.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrEventNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "event not found"})
		return
	}

	c.JSON(http.StatusOK, event)
}

// CreateEvent registers a new trail-running event (organizer only).
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req struct {
		Name     string     `json:"name" binding:"required"`
		StartsAt *time.Time `json:"starts_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var startsAt sql.NullTime
	if req.StartsAt != nil {
		startsAt = sql.NullTime{Time: *req.StartsAt, Valid: true}
	}

	event, err := h.eventRepo.CreateEvent(c.Request.Context(), req.Name, startsAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create event"})
		return
	}

	c.JSON(http.StatusCreated, event)
}
