package livesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrStaleLoad is returned when a load resolved after a newer load for the
// view already applied its result. The newer snapshot stays in place.
var ErrStaleLoad = errors.New("livesync: load superseded by a newer request")

// snapshotGuard orders snapshot applications by request order, not by
// completion order. A slow response for an earlier request can never
// overwrite the state installed by a later one.
type snapshotGuard struct {
	seq     atomic.Uint64
	mu      sync.Mutex
	applied uint64
}

func (g *snapshotGuard) begin() uint64 {
	return g.seq.Add(1)
}

// commit runs apply unless a newer request has already committed.
func (g *snapshotGuard) commit(ticket uint64, apply func()) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ticket < g.applied {
		return ErrStaleLoad
	}
	g.applied = ticket
	apply()
	return nil
}

// RaceStatusView composes the enrollment snapshot loader with the board
// reducer for one race-status view.
type RaceStatusView struct {
	baseURL string
	client  *http.Client
	guard   snapshotGuard
	board   *Board
}

// NewRaceStatusView constructs a view against the service's REST base URL.
// A nil client uses http.DefaultClient.
func NewRaceStatusView(baseURL string, client *http.Client) *RaceStatusView {
	if client == nil {
		client = http.DefaultClient
	}
	return &RaceStatusView{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		board:   NewBoard(),
	}
}

// Load fetches the enrollment snapshot and installs it on the board. On
// failure the previously loaded collection is left untouched. Safe to call
// again (refetch); see ErrStaleLoad for overlapping calls.
func (v *RaceStatusView) Load(ctx context.Context, eventID int) error {
	if eventID <= 0 {
		return ErrNoEventID
	}
	ticket := v.guard.begin()

	var payload struct {
		Enrollments []Enrollment `json:"enrollments"`
	}
	url := fmt.Sprintf("%s/events/%d/enrollments", v.baseURL, eventID)
	if err := getJSON(ctx, v.client, url, "", &payload); err != nil {
		return err
	}

	return v.guard.commit(ticket, func() {
		v.board.Reset(eventID, payload.Enrollments)
	})
}

// Apply merges a pushed partial update into the board.
func (v *RaceStatusView) Apply(update StatusUpdate) bool {
	return v.board.Apply(update)
}

// Enrollments returns the current collection in ascending dorsal order.
func (v *RaceStatusView) Enrollments() []Enrollment {
	return v.board.Enrollments()
}

// Filter returns the collection narrowed by a case-insensitive search term.
func (v *RaceStatusView) Filter(term string) []Enrollment {
	return FilterEnrollments(v.board.Enrollments(), term)
}

// Board exposes the underlying reducer.
func (v *RaceStatusView) Board() *Board {
	return v.board
}

// Consume applies status pushes from a manager's event stream until the
// context ends or the stream closes. Other event kinds are ignored here;
// callers interested in connection state should fan the stream out
// themselves.
func (v *RaceStatusView) Consume(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if push, ok := ev.(StatusUpdateEvent); ok {
				v.Apply(push.Update)
			}
		}
	}
}

// ChatView composes the history loader with the append-only chat log for
// one event conversation.
type ChatView struct {
	baseURL string
	client  *http.Client
	token   string
	guard   snapshotGuard
	log     *ChatLog
}

// NewChatView constructs a view against the service's REST base URL. The
// token authenticates the history fetch.
func NewChatView(baseURL string, client *http.Client, token string) *ChatView {
	if client == nil {
		client = http.DefaultClient
	}
	return &ChatView{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		token:   token,
		log:     NewChatLog(),
	}
}

// Load fetches the message history and installs it. Failure leaves any
// previously loaded history untouched.
func (v *ChatView) Load(ctx context.Context, eventID int) error {
	if eventID <= 0 {
		return ErrNoEventID
	}
	if v.token == "" {
		return ErrNoToken
	}
	ticket := v.guard.begin()

	var payload struct {
		Messages []Message `json:"messages"`
	}
	url := fmt.Sprintf("%s/events/%d/messages", v.baseURL, eventID)
	if err := getJSON(ctx, v.client, url, v.token, &payload); err != nil {
		return err
	}

	return v.guard.commit(ticket, func() {
		v.log.Reset(eventID, payload.Messages)
	})
}

// Append adds a pushed message; duplicates by id are dropped.
func (v *ChatView) Append(msg Message) bool {
	return v.log.Append(msg)
}

// Messages returns the conversation in display order.
func (v *ChatView) Messages() []Message {
	return v.log.Messages()
}

// Log exposes the underlying reducer.
func (v *ChatView) Log() *ChatLog {
	return v.log
}

// Consume appends message pushes from a manager's event stream until the
// context ends or the stream closes.
func (v *ChatView) Consume(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if push, ok := ev.(NewMessageEvent); ok {
				v.Append(push.Message)
			}
		}
	}
}

func getJSON(ctx context.Context, client *http.Client, url, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("livesync: snapshot fetch failed: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
