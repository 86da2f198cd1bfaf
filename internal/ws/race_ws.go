package ws

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"race-service/internal/observability"
	"race-service/internal/repositories"
)

// RaceWebSocketHandler handles public race-status websocket connections.
type RaceWebSocketHandler struct {
	hub       *Hub
	eventRepo repositories.EventRepository
}

// NewRaceWebSocketHandler constructs a RaceWebSocketHandler.
func NewRaceWebSocketHandler(hub *Hub, eventRepo repositories.EventRepository) *RaceWebSocketHandler {
	return &RaceWebSocketHandler{hub: hub, eventRepo: eventRepo}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the client in the event's
// race room. Race status is public; no token is required.
func (h *RaceWebSocketHandler) Handle(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("event_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	ctx, span := otel.Tracer("race-service/ws").Start(c.Request.Context(), "ws.race.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

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
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	h.hub.AddRaceClient(eventID, conn, info)

	observability.IncWSActive("race")
	observability.IncWSEvent("race", "ws_connect")
	headers := observability.BuildHeaders(requestID, traceID)
	_ = observability.PublishEvent(ctx, wsRoutingKey("race"), lifecycleEnvelope("race", eventID, "ws_connect", info, ""), headers)

	// Lifecycle publishes after the handler returns need a context that
	// survives it.
	connCtx := context.WithoutCancel(ctx)

	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveRaceClient(eventID, conn)
			observability.DecWSActive("race")
			observability.IncWSEvent("race", "ws_disconnect")
			_ = observability.PublishEvent(connCtx, wsRoutingKey("race"), lifecycleEnvelope("race", eventID, "ws_disconnect", info, closeReason), headers)
			conn.Close()
		}()
		for {
			// Race-status clients never send application frames; the read
			// loop only notices the close.
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("race", "ws_error")
					_ = observability.PublishEvent(connCtx, wsRoutingKey("race"), lifecycleEnvelope("race", eventID, "ws_error", info, closeReason), headers)
				}
				return
			}
		}
	}()
}
