package listclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	ws "github.com/coder/websocket"

	"github.com/mdietrich/shoplist/internal/model"
	"github.com/mdietrich/shoplist/internal/websocket"
)

// State is the session's connection lifecycle:
// Disconnected → Connecting → Joined → Disconnected.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateJoined
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateJoined:
		return "joined"
	default:
		return "disconnected"
	}
}

// Session is one long-lived connection to the server's realtime endpoint.
// After Connect it has joined the shared list room and Listen applies every
// notification to the cache in delivery order. There is no built-in
// reconnect: when the connection drops, Listen returns and the caller
// re-dials. The caller should also re-seed the cache then, since missed
// events are not replayed.
type Session struct {
	url    string
	cache  *Cache
	logger *slog.Logger
	conn   *ws.Conn
	state  atomic.Int32
}

// NewSession creates a Session that will dial the given ws:// URL and apply
// notifications to cache.
func NewSession(url string, cache *Cache, logger *slog.Logger) *Session {
	return &Session{
		url:    url,
		cache:  cache,
		logger: logger,
	}
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Connect dials the realtime endpoint and joins the list room.
func (s *Session) Connect(ctx context.Context) error {
	s.state.Store(int32(StateConnecting))

	conn, _, err := ws.Dial(ctx, s.url, nil)
	if err != nil {
		s.state.Store(int32(StateDisconnected))
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	s.conn = conn

	if err := s.writeEvent(ctx, websocket.EventJoinList); err != nil {
		conn.Close(ws.StatusInternalError, "join failed")
		s.state.Store(int32(StateDisconnected))
		return fmt.Errorf("join list: %w", err)
	}

	s.state.Store(int32(StateJoined))
	return nil
}

// Listen reads notifications until the connection closes or ctx is
// canceled, applying each to the cache as it arrives. It requires a prior
// successful Connect.
func (s *Session) Listen(ctx context.Context) error {
	if s.conn == nil {
		return errors.New("not connected")
	}
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			s.state.Store(int32(StateDisconnected))
			return fmt.Errorf("read: %w", err)
		}
		s.dispatch(data)
	}
}

// Close leaves the list room and tears down the connection. The leave is
// best-effort: if the connection is already gone the hub's own cleanup
// evicts the session.
func (s *Session) Close(ctx context.Context) error {
	defer s.state.Store(int32(StateDisconnected))

	if s.conn == nil {
		return nil
	}
	if err := s.writeEvent(ctx, websocket.EventLeaveList); err != nil {
		s.logger.Debug("leave on close", "error", err)
	}
	return s.conn.Close(ws.StatusNormalClosure, "")
}

func (s *Session) writeEvent(ctx context.Context, event string) error {
	data, err := json.Marshal(websocket.Message{Event: event})
	if err != nil {
		return err
	}
	return s.conn.Write(ctx, ws.MessageText, data)
}

// dispatch applies one incoming frame to the cache. Malformed or unknown
// frames are logged and dropped; they never tear down the session.
func (s *Session) dispatch(data []byte) {
	var msg websocket.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.logger.Warn("drop malformed frame", "error", err)
		return
	}

	switch msg.Event {
	case websocket.EventItemCreated:
		var item model.ItemDetail
		if err := json.Unmarshal(msg.Data, &item); err != nil {
			s.logger.Warn("drop malformed item", "event", msg.Event, "error", err)
			return
		}
		s.cache.ApplyCreated(item)
	case websocket.EventItemUpdated:
		var item model.ItemDetail
		if err := json.Unmarshal(msg.Data, &item); err != nil {
			s.logger.Warn("drop malformed item", "event", msg.Event, "error", err)
			return
		}
		s.cache.ApplyUpdated(item)
	case websocket.EventItemDeleted:
		var id int64
		if err := json.Unmarshal(msg.Data, &id); err != nil {
			s.logger.Warn("drop malformed id", "event", msg.Event, "error", err)
			return
		}
		s.cache.ApplyDeleted(id)
	default:
		s.logger.Debug("drop unknown event", "event", msg.Event)
	}
}
