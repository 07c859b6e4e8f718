package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		conn: nil,
		send: make(chan []byte, sendBufferSize),
	}
}

func joinedClient(hub *Hub) *Client {
	c := mockClient(hub)
	hub.Register(c)
	hub.Join(c, ListRoom)
	return c
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestJoinLeave(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub)
	hub.Register(c)

	if got := hub.RoomCount(ListRoom); got != 0 {
		t.Fatalf("expected empty room before join, got %d", got)
	}

	hub.Join(c, ListRoom)
	// Joining twice is idempotent
	hub.Join(c, ListRoom)

	if got := hub.RoomCount(ListRoom); got != 1 {
		t.Fatalf("expected 1 member after join, got %d", got)
	}

	hub.Leave(c, ListRoom)
	// Leaving twice is a no-op
	hub.Leave(c, ListRoom)

	if got := hub.RoomCount(ListRoom); got != 0 {
		t.Fatalf("expected 0 members after leave, got %d", got)
	}

	hub.Unregister(c)
}

func TestJoinUnknownClient(t *testing.T) {
	hub := NewHub(slog.Default())

	// Never registered, so it must not be indexed into the room
	c := mockClient(hub)
	hub.Join(c, ListRoom)

	if got := hub.RoomCount(ListRoom); got != 0 {
		t.Fatalf("expected 0 members, got %d", got)
	}
}

func TestUnregisterLeavesRooms(t *testing.T) {
	hub := NewHub(slog.Default())

	c := joinedClient(hub)
	hub.Unregister(c)

	if got := hub.RoomCount(ListRoom); got != 0 {
		t.Fatalf("expected 0 members after unregister, got %d", got)
	}
}

func TestBroadcastReachesRoomOnly(t *testing.T) {
	hub := NewHub(slog.Default())

	joined := joinedClient(hub)
	lurker := mockClient(hub)
	hub.Register(lurker)

	hub.ItemDeleted(42)

	select {
	case data := <-joined.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Event != EventItemDeleted {
			t.Errorf("event = %q, want %q", got.Event, EventItemDeleted)
		}
		var id int64
		if err := json.Unmarshal(got.Data, &id); err != nil {
			t.Fatalf("unmarshal data: %v", err)
		}
		if id != 42 {
			t.Errorf("id = %d, want 42", id)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}

	select {
	case <-lurker.send:
		t.Fatal("client outside the room received a message")
	default:
	}

	hub.Unregister(joined)
	hub.Unregister(lurker)
}

func TestItemCreatedPayload(t *testing.T) {
	hub := NewHub(slog.Default())
	c := joinedClient(hub)

	hub.ItemCreated(map[string]any{"id": 7, "quantity": 3})

	select {
	case data := <-c.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Event != EventItemCreated {
			t.Errorf("event = %q, want %q", got.Event, EventItemCreated)
		}
		var item map[string]any
		if err := json.Unmarshal(got.Data, &item); err != nil {
			t.Fatalf("unmarshal data: %v", err)
		}
		if item["id"] != float64(7) {
			t.Errorf("id = %v, want 7", item["id"])
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}

	hub.Unregister(c)
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	hub.ItemUpdated(map[string]any{"id": 1})
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := joinedClient(hub)

	// Fill the send buffer
	for i := 0; i < sendBufferSize; i++ {
		hub.ItemDeleted(int64(i))
	}

	// This should drop the message, not panic or block
	hub.ItemDeleted(999)

	// Drain to verify buffer was full
	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	// Spawn goroutines that register, join, broadcast, and unregister concurrently
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub)
			hub.Register(c)
			hub.Join(c, ListRoom)
			hub.ItemUpdated(map[string]any{"id": 0})
			// Drain any messages
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
	if got := hub.RoomCount(ListRoom); got != 0 {
		t.Errorf("expected empty room after concurrent test, got %d", got)
	}
}
