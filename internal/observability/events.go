package observability

// EventEnvelope wraps websocket lifecycle events published to the broker.
// EventType is the stream ("ws_events"), EventName the concrete occurrence
// (ws_connect, ws_disconnect, ws_error). EventID names the race event whose
// room the connection belongs to, so consumers can route without opening
// the payload.
type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	EventID   int         `json:"event_id"`
	Payload   interface{} `json:"payload"`
}

// BuildHeaders carries request correlation into broker messages. Empty
// values are omitted.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
