package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"race-service/internal/models"
	"race-service/internal/repositories"
	"race-service/internal/ws"
)

// MessageHandler manages event chat endpoints.
type MessageHandler struct {
	eventRepo   repositories.EventRepository
	messageRepo repositories.MessageRepository
	hub         *ws.Hub
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(eventRepo repositories.EventRepository, messageRepo repositories.MessageRepository, hub *ws.Hub) *MessageHandler {
	return &MessageHandler{eventRepo: eventRepo, messageRepo: messageRepo, hub: hub}
}

// GetEventMessages returns the chat history in chronological order. This is
// the authoritative initial state for the chat view.
func (h *MessageHandler) GetEventMessages(c *gin.Context) {
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

	msgs, err := h.messageRepo.GetEventMessages(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostEventMessage stores a chat message and broadcasts it to the event's
// chat room.
func (h *MessageHandler) PostEventMessage(c *gin.Context) {
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

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty message"})
		return
	}

	userID := c.GetInt("userID")
	userName := c.GetString("userName")
	userRole := c.GetString("userRole")

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), eventID, userID, userName, userRole, content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	h.hub.BroadcastChatMessage(eventID, msg)
	c.JSON(http.StatusCreated, msg)
}
