package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// ListRoom is the single broadcast group every session joins to follow the
// shared shopping list.
const ListRoom = "shopping-list"

// Client→server events.
const (
	EventJoinList  = "join:list"
	EventLeaveList = "leave:list"
)

// Server→client events.
const (
	EventItemCreated = "item:created"
	EventItemUpdated = "item:updated"
	EventItemDeleted = "item:deleted"
)

// Message is the wire frame in both directions: an event name and an
// optional payload. Inbound join/leave frames carry no data; outbound item
// frames carry the item (or, for deletes, the bare id).
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Hub maintains the set of connected clients and the room membership index,
// and fans messages out to a room. It is constructed once by the server and
// injected wherever notifications are emitted.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub. The client receives nothing until it
// joins a room.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and every room it joined, and
// closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		for room, members := range h.rooms {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
		close(c.send)
	}
	h.mu.Unlock()
}

// Join adds a registered client to a room. Joining twice is a no-op.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
}

// Leave removes a client from a room. Leaving a room it never joined is a
// no-op.
func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast sends a message to every client in the room. Sends are
// fire-and-forget: a client whose buffer is full misses the message.
func (h *Hub) Broadcast(room string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop message to avoid blocking
		}
	}
}

// ItemCreated notifies the list room that an item was added.
func (h *Hub) ItemCreated(item any) {
	h.emit(EventItemCreated, item)
}

// ItemUpdated notifies the list room that an item changed.
func (h *Hub) ItemUpdated(item any) {
	h.emit(EventItemUpdated, item)
}

// ItemDeleted notifies the list room that the item with the given id is gone.
func (h *Hub) ItemDeleted(id int64) {
	h.emit(EventItemDeleted, id)
}

func (h *Hub) emit(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("marshal notification", "event", event, "error", err)
		return
	}
	h.Broadcast(ListRoom, Message{Event: event, Data: data})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomCount returns the number of clients joined to a room.
func (h *Hub) RoomCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
