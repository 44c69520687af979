package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"trueque-chat-service/internal/models"
	"trueque-chat-service/internal/observability"
)

// client is one live session. The mutex serializes writes to the conn:
// gorilla/websocket allows a single concurrent writer, and broadcasts run on
// whichever request goroutine triggered them.
type client struct {
	conn *websocket.Conn
	info ConnInfo
	mu   sync.Mutex
}

func (c *client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub maintains the live sessions subscribed to each chat channel and fans
// chat events out to them. It implements service.Notifier: delivery is
// at-most-once, best-effort, and a failed write evicts the connection.
type Hub struct {
	rooms map[int]map[*websocket.Conn]*client
	mu    sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[int]map[*websocket.Conn]*client)}
}

// AddClient registers a websocket connection to a chat room.
func (h *Hub) AddClient(chatID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[chatID]; !ok {
		h.rooms[chatID] = make(map[*websocket.Conn]*client)
	}
	h.rooms[chatID][conn] = &client{conn: conn, info: info}
}

// RemoveClient removes a connection from a chat room.
func (h *Hub) RemoveClient(chatID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[chatID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, chatID)
		}
	}
}

// MessageSent delivers a message.sent event to every session in the chat
// except the author's own.
func (h *Hub) MessageSent(chatID int, actorID int, msg models.Message) {
	event := models.ChatEvent{
		Event:   models.EventMessageSent,
		Channel: channelName(chatID),
		ChatID:  chatID,
		Message: &msg,
	}
	h.broadcast(chatID, actorID, event)
}

// MessagesRead delivers a message.read event to every session in the chat
// except the reader's own.
func (h *Hub) MessagesRead(chatID int, readerID int, messageIDs []int) {
	event := models.ChatEvent{
		Event:      models.EventMessageRead,
		Channel:    channelName(chatID),
		ChatID:     chatID,
		ReaderID:   readerID,
		MessageIDs: messageIDs,
	}
	h.broadcast(chatID, readerID, event)
}

func (h *Hub) broadcast(chatID int, actorID int, event models.ChatEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("marshal chat event: %v", err)
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.rooms[chatID]))
	for _, c := range h.rooms[chatID] {
		if c.info.UserID == actorID {
			continue
		}
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.write(payload); err != nil {
			log.Printf("websocket write error: %v", err)
			c.conn.Close()
			h.RemoveClient(chatID, c.conn)
			h.publishWSError(chatID, c.info, err)
		} else {
			observability.IncWSEvent("chat", event.Event)
		}
	}
}

// SessionCount reports the number of live sessions in a chat room.
func (h *Hub) SessionCount(chatID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}

func (h *Hub) publishWSError(chatID int, info ConnInfo, err error) {
	observability.IncWSEvent("chat", "ws_error")
	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.chats", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"channel":     channelName(chatID),
				"event":       "ws_error",
				"conn_id":     info.ConnID,
				"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
				"reason":      err.Error(),
			},
			"identity": map[string]interface{}{
				"user_id": info.UserID,
				"ip":      info.IP,
			},
		},
	}, headers)
}
