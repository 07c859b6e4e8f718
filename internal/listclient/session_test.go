package listclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mdietrich/shoplist/internal/database"
	"github.com/mdietrich/shoplist/internal/server"
)

// startTestServer boots the full router (API + websocket endpoint) on an
// in-memory database with one product and one store prepared.
func startTestServer(t *testing.T) (*httptest.Server, int64, int64) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	srv := server.New(db, logger)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	var categoryID, productID, storeID int64
	res, _ := db.Exec(`INSERT INTO categories (name) VALUES ('Dairy')`)
	categoryID, _ = res.LastInsertId()
	res, _ = db.Exec(`INSERT INTO products (name, category_id) VALUES ('Milk', ?)`, categoryID)
	productID, _ = res.LastInsertId()
	res, _ = db.Exec(`INSERT INTO stores (name, code) VALUES ('Rewe', 'REWE')`)
	storeID, _ = res.LastInsertId()

	return ts, productID, storeID
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func startSession(t *testing.T, ts *httptest.Server) (*Session, *Cache) {
	t.Helper()

	cache := NewCache()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	session := NewSession(wsURL, cache, slog.New(slog.NewTextHandler(testWriter{t}, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if err := session.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if got := session.State(); got != StateJoined {
		t.Fatalf("state = %v, want joined", got)
	}
	go session.Listen(ctx)
	t.Cleanup(func() { session.Close(context.Background()) })

	return session, cache
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestTwoSessionsSeeCreate(t *testing.T) {
	ts, productID, storeID := startTestServer(t)

	_, cacheA := startSession(t, ts)
	_, cacheB := startSession(t, ts)

	resp := postJSON(t, ts.URL+"/api/items", map[string]any{
		"product_id": productID,
		"store_id":   storeID,
		"quantity":   3,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create item: status %d", resp.StatusCode)
	}

	for name, cache := range map[string]*Cache{"A": cacheA, "B": cacheB} {
		waitFor(t, fmt.Sprintf("session %s to see the item", name), func() bool {
			return cache.Len() == 1
		})
		head := cache.Items()[0]
		if head.Quantity != 3 {
			t.Errorf("session %s: quantity = %d, want 3", name, head.Quantity)
		}
		if head.IsBought {
			t.Errorf("session %s: expected is_bought false", name)
		}
		if head.Product.Name != "Milk" || head.Store.Code != "REWE" {
			t.Errorf("session %s: relations not resolved: %+v", name, head)
		}
	}
}

func TestUpdateReplacesStaleCopy(t *testing.T) {
	ts, productID, storeID := startTestServer(t)

	_, cache := startSession(t, ts)

	resp := postJSON(t, ts.URL+"/api/items", map[string]any{
		"product_id": productID,
		"store_id":   storeID,
	})
	resp.Body.Close()

	waitFor(t, "create to arrive", func() bool { return cache.Len() == 1 })
	itemID := cache.Items()[0].ID

	body, _ := json.Marshal(map[string]any{"is_bought": true})
	req, _ := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/api/items/%d", ts.URL, itemID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	putResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT item: %v", err)
	}
	putResp.Body.Close()
	if putResp.StatusCode != http.StatusOK {
		t.Fatalf("PUT item: status %d", putResp.StatusCode)
	}

	waitFor(t, "update to arrive", func() bool {
		got, ok := cache.Get(itemID)
		return ok && got.IsBought
	})
	if cache.Len() != 1 {
		t.Errorf("expected 1 item after update, got %d", cache.Len())
	}
}

func TestDeleteRemovesFromCache(t *testing.T) {
	ts, productID, storeID := startTestServer(t)

	_, cache := startSession(t, ts)

	resp := postJSON(t, ts.URL+"/api/items", map[string]any{
		"product_id": productID,
		"store_id":   storeID,
	})
	resp.Body.Close()

	waitFor(t, "create to arrive", func() bool { return cache.Len() == 1 })
	itemID := cache.Items()[0].ID

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/items/%d", ts.URL, itemID), nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE item: %v", err)
	}
	delResp.Body.Close()

	waitFor(t, "delete to arrive", func() bool { return cache.Len() == 0 })
}

func TestListenBeforeConnect(t *testing.T) {
	session := NewSession("ws://localhost:0/ws", NewCache(), slog.New(slog.NewTextHandler(testWriter{t}, nil)))

	if err := session.Listen(context.Background()); err == nil {
		t.Fatal("expected an error from Listen without a connection")
	}
	if got := session.State(); got != StateDisconnected {
		t.Errorf("state = %v, want disconnected", got)
	}
}

func TestClosedSessionStopsReceiving(t *testing.T) {
	ts, productID, storeID := startTestServer(t)

	session, cache := startSession(t, ts)
	if err := session.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := session.State(); got != StateDisconnected {
		t.Errorf("state = %v, want disconnected", got)
	}

	resp := postJSON(t, ts.URL+"/api/items", map[string]any{
		"product_id": productID,
		"store_id":   storeID,
	})
	resp.Body.Close()

	// Give the broadcast a moment; nothing should land in the cache
	time.Sleep(200 * time.Millisecond)
	if cache.Len() != 0 {
		t.Errorf("closed session still received %d items", cache.Len())
	}
}
