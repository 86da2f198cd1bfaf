package ws

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"go.opentelemetry.io/otel/trace"

	"race-service/internal/observability"
)

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

func wsLifecyclePayload(kind string, eventID int, event string, info ConnInfo, reason string) map[string]interface{} {
	durationMS := int64(0)
	if event != "ws_connect" {
		durationMS = time.Since(info.ConnectedAt).Milliseconds()
	}
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        kind,
			"event_id":    eventID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": durationMS,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}

func lifecycleEnvelope(kind string, eventID int, event string, info ConnInfo, reason string) observability.EventEnvelope {
	return observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		EventID:   eventID,
		Payload:   wsLifecyclePayload(kind, eventID, event, info, reason),
	}
}

func traceIDFromSpan(span trace.Span) string {
	return span.SpanContext().TraceID().String()
}
