// listwatch follows the shared shopping list from a terminal: it seeds a
// local cache over HTTP, joins the realtime feed, and reprints the list
// whenever it changes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mdietrich/shoplist/internal/listclient"
	"github.com/mdietrich/shoplist/internal/logging"
	"github.com/mdietrich/shoplist/internal/model"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "shoplist server base URL")
	level := flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	logger := logging.Setup(*level)

	wsURL, err := websocketURL(*serverURL)
	if err != nil {
		log.Fatalf("invalid server URL: %v", err)
	}

	cache := listclient.NewCache()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go printLoop(ctx, cache)

	// Dial-and-listen loop. Events missed while disconnected are not
	// replayed, so every (re)connect is preceded by a full re-seed.
	for {
		if err := seed(ctx, *serverURL, cache); err != nil {
			logger.Warn("seed failed", "error", err)
		}

		session := listclient.NewSession(wsURL, cache, logger.With("component", "session"))
		if err := session.Connect(ctx); err != nil {
			logger.Warn("connect failed", "error", err)
		} else {
			err := session.Listen(ctx)
			session.Close(context.Background())
			if ctx.Err() == nil {
				logger.Warn("connection lost", "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func websocketURL(server string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	return u.String(), nil
}

func seed(ctx context.Context, server string, cache *listclient.Cache) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server+"/api/items", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope struct {
		Success bool               `json:"success"`
		Data    []model.ItemDetail `json:"data"`
		Error   string             `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	if !envelope.Success {
		return fmt.Errorf("fetch items: %s", envelope.Error)
	}

	cache.Seed(envelope.Data)
	return nil
}

func printLoop(ctx context.Context, cache *listclient.Cache) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var lastRev int64 = -1
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rev := cache.Revision()
			if rev == lastRev {
				continue
			}
			lastRev = rev
			printList(cache.Items())
		}
	}
}

func printList(items []model.ItemDetail) {
	fmt.Printf("\n=== shopping list (%s) ===\n", time.Now().Format("15:04:05"))
	if len(items) == 0 {
		fmt.Println("  (empty)")
		return
	}
	for _, item := range items {
		mark := " "
		if item.IsBought {
			mark = "x"
		}
		line := fmt.Sprintf("  [%s] %dx %s @ %s", mark, item.Quantity, item.Product.Name, item.Store.Name)
		if item.Product.LatestPrice != nil {
			line += fmt.Sprintf(" (%s)", item.Product.LatestPrice.Price.StringFixed(2))
		}
		if strings.TrimSpace(item.Notes) != "" {
			line += " - " + item.Notes
		}
		fmt.Println(line)
	}
}
