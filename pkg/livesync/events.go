package livesync

// DisconnectReason distinguishes who ended a connection.
type DisconnectReason string

const (
	// ReasonClient means Disconnect or a switch to another event closed it.
	ReasonClient DisconnectReason = "client"
	// ReasonServer means the server sent a close frame.
	ReasonServer DisconnectReason = "server"
	// ReasonNetwork means the transport failed without a close frame.
	ReasonNetwork DisconnectReason = "network"
)

// Event is a tagged notification delivered on Manager.Events. Dispatch on the
// concrete type instead of inspecting untyped payloads.
type Event interface {
	isEvent()
}

// Connected is emitted once per successful (re)connection.
type Connected struct {
	EventID int
}

// Disconnected is emitted once when an established connection ends. Err is
// nil for client-initiated disconnects.
type Disconnected struct {
	EventID int
	Reason  DisconnectReason
	Err     error
}

// ConnectError is emitted when a dial attempt fails.
type ConnectError struct {
	EventID int
	Err     error
}

// StatusUpdateEvent carries a race-status push.
type StatusUpdateEvent struct {
	EventID int
	Update  StatusUpdate
}

// NewMessageEvent carries a chat push.
type NewMessageEvent struct {
	EventID int
	Message Message
}

// ProtocolError is emitted when the server answers a frame with an error
// event. The connection stays up.
type ProtocolError struct {
	EventID int
	Message string
}

func (Connected) isEvent()         {}
func (Disconnected) isEvent()      {}
func (ConnectError) isEvent()      {}
func (StatusUpdateEvent) isEvent() {}
func (NewMessageEvent) isEvent()   {}
func (ProtocolError) isEvent()     {}
