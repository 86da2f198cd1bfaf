package livesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Features the service exposes websocket endpoints for.
const (
	FeatureRaceStatus = "race-status"
	FeatureChat       = "chat"
)

const (
	defaultReconnectAttempts = 5
	defaultReconnectInterval = 2 * time.Second
)

var (
	ErrNoEventID    = errors.New("livesync: event id is required")
	ErrNoToken      = errors.New("livesync: chat connections require a token")
	ErrClosed       = errors.New("livesync: manager is closed")
	ErrNotConnected = errors.New("livesync: not connected")
)

// ManagerConfig configures a connection Manager.
type ManagerConfig struct {
	// BaseURL is the websocket base, e.g. "ws://localhost:8083".
	BaseURL string
	// Feature selects the endpoint: FeatureRaceStatus or FeatureChat.
	Feature string
	// Token authenticates chat connections. Ignored for race status.
	Token string
	// MaxReconnectAttempts bounds automatic reconnection after a transport
	// failure. Zero means the default (5); a negative value retries without
	// bound.
	MaxReconnectAttempts int
	// ReconnectInterval is the constant delay between attempts.
	ReconnectInterval time.Duration
	Dialer            *websocket.Dialer
	Logger            *logrus.Logger
}

// Manager owns at most one live websocket connection, keyed by event id.
// Connecting to a different event tears the previous connection down first,
// so updates for a stale event can never leak into the new view.
type Manager struct {
	cfg    ManagerConfig
	dialer *websocket.Dialer
	logger *logrus.Logger
	events chan Event

	// connectMu serializes Connect end to end, so two racing calls cannot
	// both install run state and strand a connection.
	connectMu sync.Mutex

	mu        sync.Mutex
	wmu       sync.Mutex
	eventID   int
	conn      *websocket.Conn
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
	lastErr   error
	closed    bool
}

// NewManager constructs a Manager. It does not connect.
func NewManager(cfg ManagerConfig) *Manager {
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = defaultReconnectInterval
	}
	return &Manager{
		cfg:    cfg,
		dialer: dialer,
		logger: logger,
		events: make(chan Event, 64),
	}
}

// Events returns the stream of tagged notifications. It is closed by Close.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Connect establishes a connection for the event. Calling it again for the
// same event while a connection is live is a no-op; calling it for a
// different event fully tears down the previous connection first. The dial
// itself is asynchronous; outcomes arrive on Events.
func (m *Manager) Connect(eventID int) error {
	if eventID <= 0 {
		return ErrNoEventID
	}
	if m.cfg.Feature == FeatureChat && m.cfg.Token == "" {
		return ErrNoToken
	}

	m.connectMu.Lock()
	defer m.connectMu.Unlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.done != nil && m.eventID == eventID {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	if cancel, done, conn := m.detach(); done != nil {
		teardown(cancel, done, conn)
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		runCancel()
		return ErrClosed
	}
	m.eventID = eventID
	m.cancel = runCancel
	m.done = runDone
	m.mu.Unlock()

	go m.run(runCtx, eventID, runDone)
	return nil
}

// Disconnect closes the current connection. Safe to call when already
// disconnected.
func (m *Manager) Disconnect() {
	if cancel, done, conn := m.detach(); done != nil {
		teardown(cancel, done, conn)
	}
}

// Close disconnects and closes the event stream. The manager cannot be
// reused afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	if cancel, done, conn := m.detach(); done != nil {
		teardown(cancel, done, conn)
	}
	close(m.events)
}

// State reports whether the connection is up and the last transport error.
// Client-initiated disconnects never populate the error.
func (m *Manager) State() (connected bool, lastErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected, m.lastErr
}

// Send delivers a chat message over the live connection.
func (m *Manager) Send(content string) error {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	payload, err := json.Marshal(outbound{Type: "send_message", Content: content})
	if err != nil {
		return err
	}
	m.wmu.Lock()
	defer m.wmu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// detach swaps out the current run state under the lock. The caller owns the
// returned handles.
func (m *Manager) detach() (context.CancelFunc, chan struct{}, *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cancel, done, conn := m.cancel, m.done, m.conn
	m.cancel, m.done = nil, nil
	m.eventID = 0
	return cancel, done, conn
}

// teardown cancels the run loop, unblocks its read and waits until it has
// fully exited. Cancel happens before the close so the read loop classifies
// the disconnect as client-initiated.
func teardown(cancel context.CancelFunc, done chan struct{}, conn *websocket.Conn) {
	cancel()
	if conn != nil {
		_ = conn.Close()
	}
	<-done
}

func (m *Manager) run(ctx context.Context, eventID int, done chan struct{}) {
	defer close(done)

	attempts := 0
	for {
		conn, resp, err := m.dialer.DialContext(ctx, m.endpoint(eventID), nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if resp != nil && resp.Body != nil {
				resp.Body.Close()
			}
			m.setLastErr(err)
			m.emit(ctx, ConnectError{EventID: eventID, Err: err})
			attempts++
			if !m.shouldRetry(attempts) {
				return
			}
			if !sleepCtx(ctx, m.cfg.ReconnectInterval) {
				return
			}
			continue
		}
		attempts = 0

		if m.attach(conn) {
			m.emit(ctx, Connected{EventID: eventID})
		}

		reason, readErr := m.readLoop(ctx, eventID, conn)
		m.detachConn(conn)
		conn.Close()

		if reason != ReasonClient {
			m.setLastErr(readErr)
		}
		m.emit(ctx, Disconnected{EventID: eventID, Reason: reason, Err: readErr})

		if reason == ReasonClient || ctx.Err() != nil {
			return
		}
		attempts++
		if !m.shouldRetry(attempts) {
			return
		}
		if !sleepCtx(ctx, m.cfg.ReconnectInterval) {
			return
		}
	}
}

func (m *Manager) readLoop(ctx context.Context, eventID int, conn *websocket.Conn) (DisconnectReason, error) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ReasonClient, nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return ReasonServer, err
			}
			return ReasonNetwork, err
		}
		m.dispatch(ctx, eventID, data)
	}
}

func (m *Manager) dispatch(ctx context.Context, eventID int, data []byte) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		m.logger.WithError(err).Warn("livesync: dropping malformed frame")
		return
	}

	switch f.Type {
	case "status_update":
		if f.Update != nil {
			m.emit(ctx, StatusUpdateEvent{EventID: eventID, Update: *f.Update})
		}
	case "new_message":
		if f.Message != nil {
			m.emit(ctx, NewMessageEvent{EventID: eventID, Message: *f.Message})
		}
	case "error":
		m.emit(ctx, ProtocolError{EventID: eventID, Message: f.Error})
	default:
		m.logger.WithField("type", f.Type).Debug("livesync: ignoring unknown frame")
	}
}

// emit delivers the event without dropping transitions: a buffered send is
// tried first, then a blocking send bounded by the connection lifetime.
func (m *Manager) emit(ctx context.Context, ev Event) {
	select {
	case m.events <- ev:
		return
	default:
	}
	select {
	case m.events <- ev:
	case <-ctx.Done():
	}
}

func (m *Manager) attach(conn *websocket.Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conn = conn
	if m.connected {
		return false
	}
	m.connected = true
	m.lastErr = nil
	return true
}

func (m *Manager) detachConn(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == conn {
		m.conn = nil
	}
	m.connected = false
}

func (m *Manager) setLastErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = err
}

func (m *Manager) shouldRetry(attempts int) bool {
	limit := m.cfg.MaxReconnectAttempts
	if limit < 0 {
		return true
	}
	if limit == 0 {
		limit = defaultReconnectAttempts
	}
	return attempts <= limit
}

func (m *Manager) endpoint(eventID int) string {
	base := strings.TrimRight(m.cfg.BaseURL, "/")
	endpoint := fmt.Sprintf("%s/ws/%s/%d", base, m.cfg.Feature, eventID)
	if m.cfg.Feature == FeatureChat && m.cfg.Token != "" {
		endpoint += "?token=" + url.QueryEscape(m.cfg.Token)
	}
	return endpoint
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
