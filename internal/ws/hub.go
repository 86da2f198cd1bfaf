package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"race-service/internal/models"
	"race-service/internal/observability"
)

// Hub maintains active websocket rooms, keyed by event id. Race-status rooms
// and chat rooms are tracked separately because they carry different payloads
// and auth requirements.
type Hub struct {
	raceRooms    map[int]map[*websocket.Conn]bool
	chatRooms    map[int]map[*websocket.Conn]bool
	raceConnInfo map[int]map[*websocket.Conn]ConnInfo
	chatConnInfo map[int]map[*websocket.Conn]ConnInfo
	logger       *logrus.Logger
	mu           sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.New()
	}
	return &Hub{
		raceRooms:    make(map[int]map[*websocket.Conn]bool),
		chatRooms:    make(map[int]map[*websocket.Conn]bool),
		raceConnInfo: make(map[int]map[*websocket.Conn]ConnInfo),
		chatConnInfo: make(map[int]map[*websocket.Conn]ConnInfo),
		logger:       logger,
	}
}

// AddRaceClient registers a websocket connection to an event's race room.
func (h *Hub) AddRaceClient(eventID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.raceRooms[eventID]; !ok {
		h.raceRooms[eventID] = make(map[*websocket.Conn]bool)
	}
	h.raceRooms[eventID][conn] = true
	if _, ok := h.raceConnInfo[eventID]; !ok {
		h.raceConnInfo[eventID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.raceConnInfo[eventID][conn] = info
}

// RemoveRaceClient removes a race websocket connection.
func (h *Hub) RemoveRaceClient(eventID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.raceRooms[eventID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.raceRooms, eventID)
		}
	}
	if infos, ok := h.raceConnInfo[eventID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.raceConnInfo, eventID)
		}
	}
}

// AddChatClient registers a websocket connection to an event's chat room.
func (h *Hub) AddChatClient(eventID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.chatRooms[eventID]; !ok {
		h.chatRooms[eventID] = make(map[*websocket.Conn]bool)
	}
	h.chatRooms[eventID][conn] = true
	if _, ok := h.chatConnInfo[eventID]; !ok {
		h.chatConnInfo[eventID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.chatConnInfo[eventID][conn] = info
}

// RemoveChatClient removes a chat websocket connection.
func (h *Hub) RemoveChatClient(eventID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.chatRooms[eventID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.chatRooms, eventID)
		}
	}
	if infos, ok := h.chatConnInfo[eventID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.chatConnInfo, eventID)
		}
	}
}

// BroadcastStatusUpdate sends a partial enrollment update to all clients
// watching the event's race status.
func (h *Hub) BroadcastStatusUpdate(eventID int, update models.StatusUpdate) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.raceRooms[eventID]))
	for conn := range h.raceRooms[eventID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	event := models.RaceEvent{Type: "status_update", Update: &update}
	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.WithError(err).Warn("websocket write error")
			conn.Close()
			h.RemoveRaceClient(eventID, conn)
			h.publishWSError("race", eventID, conn, err)
		}
	}
}

// BroadcastChatMessage sends a message to all clients in an event's chat.
func (h *Hub) BroadcastChatMessage(eventID int, msg models.Message) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.chatRooms[eventID]))
	for conn := range h.chatRooms[eventID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	event := models.ChatEvent{Type: "new_message", Message: &msg}
	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.WithError(err).Warn("websocket write error")
			conn.Close()
			h.RemoveChatClient(eventID, conn)
			h.publishWSError("chat", eventID, conn, err)
		}
	}
}

func (h *Hub) publishWSError(kind string, eventID int, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(kind, eventID, conn)
	if !ok {
		return
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), wsRoutingKey(kind),
		lifecycleEnvelope(kind, eventID, "ws_error", info, err.Error()), headers)
	observability.IncWSEvent(kind, "ws_error")
}

func (h *Hub) getConnInfo(kind string, eventID int, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if kind == "race" {
		if infos, ok := h.raceConnInfo[eventID]; ok {
			info, exists := infos[conn]
			return info, exists
		}
		return ConnInfo{}, false
	}
	if infos, ok := h.chatConnInfo[eventID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}

func wsRoutingKey(kind string) string {
	if kind == "chat" {
		return "ws_events.chat"
	}
	return "ws_events.race"
}
