package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"race-service/internal/models"
	"race-service/internal/observability"
	"race-service/internal/repositories"
	"race-service/pkg/jwt"
)

// ChatWebSocketHandler handles chat websocket connections.
type ChatWebSocketHandler struct {
	hub         *Hub
	eventRepo   repositories.EventRepository
	messageRepo repositories.MessageRepository
	tokens      *jwt.Manager
}

// NewChatWebSocketHandler constructs a ChatWebSocketHandler.
func NewChatWebSocketHandler(hub *Hub, eventRepo repositories.EventRepository, messageRepo repositories.MessageRepository, tokens *jwt.Manager) *ChatWebSocketHandler {
	return &ChatWebSocketHandler{hub: hub, eventRepo: eventRepo, messageRepo: messageRepo, tokens: tokens}
}

// Handle upgrades the connection, registers the client in the event's chat
// room and serves inbound send_message frames until the peer goes away.
func (h *ChatWebSocketHandler) Handle(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("event_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	ctx, span := otel.Tracer("race-service/ws").Start(c.Request.Context(), "ws.chat.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	identity, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if _, err := h.eventRepo.GetEvent(ctx, eventID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	requestID := observability.RequestIDFromRequest(c.Request)
	traceID := traceIDFromSpan(span)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      identity.UserID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	h.hub.AddChatClient(eventID, conn, info)

	observability.IncWSActive("chat")
	observability.IncWSEvent("chat", "ws_connect")
	headers := observability.BuildHeaders(requestID, traceID)
	_ = observability.PublishEvent(ctx, wsRoutingKey("chat"), lifecycleEnvelope("chat", eventID, "ws_connect", info, ""), headers)

	// The read loop outlives this handler and the request context dies the
	// moment it returns; persistence and lifecycle publishes run on a
	// detached copy that keeps the trace values.
	connCtx := context.WithoutCancel(ctx)

	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveChatClient(eventID, conn)
			observability.DecWSActive("chat")
			observability.IncWSEvent("chat", "ws_disconnect")
			_ = observability.PublishEvent(connCtx, wsRoutingKey("chat"), lifecycleEnvelope("chat", eventID, "ws_disconnect", info, closeReason), headers)
			conn.Close()
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("chat", "ws_error")
					_ = observability.PublishEvent(connCtx, wsRoutingKey("chat"), lifecycleEnvelope("chat", eventID, "ws_error", info, closeReason), headers)
				}
				return
			}
			h.handleInbound(connCtx, eventID, identity, conn, data)
		}
	}()
}

// handleInbound processes a frame sent by the chat client. Malformed or
// unknown frames answer with an error event on the same connection instead
// of tearing it down.
func (h *ChatWebSocketHandler) handleInbound(ctx context.Context, eventID int, identity jwt.Identity, conn *websocket.Conn, data []byte) {
	var inbound models.ChatInbound
	if err := json.Unmarshal(data, &inbound); err != nil {
		h.writeError(conn, "malformed frame")
		return
	}
	if inbound.Type != "send_message" {
		h.writeError(conn, "unknown frame type")
		return
	}
	content := strings.TrimSpace(inbound.Content)
	if content == "" {
		h.writeError(conn, "empty message")
		return
	}

	msg, err := h.messageRepo.CreateMessage(ctx, eventID, identity.UserID, identity.Name, identity.Role, content)
	if err != nil {
		h.writeError(conn, "failed to store message")
		return
	}
	h.hub.BroadcastChatMessage(eventID, msg)
}

func (h *ChatWebSocketHandler) writeError(conn *websocket.Conn, reason string) {
	payload, _ := json.Marshal(models.ChatEvent{Type: "error", Error: reason})
	_ = conn.WriteMessage(websocket.TextMessage, payload)
}

func (h *ChatWebSocketHandler) validateToken(header string) (jwt.Identity, error) {
	parts := strings.Split(header, " ")
	if len(parts) == 2 {
		return h.tokens.ValidateToken(parts[1])
	}
	return jwt.Identity{}, jwt.ErrInvalidToken
}
