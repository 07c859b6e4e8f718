package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mdietrich/shoplist/internal/handler"
	"github.com/mdietrich/shoplist/internal/middleware"
	"github.com/mdietrich/shoplist/internal/store"
	ws "github.com/mdietrich/shoplist/internal/websocket"
)

// Server is the composition root: it owns the hub, the data stores, and the
// handlers, and builds the route table. The hub is constructed exactly once
// here and shut down with the process, never lazily.
type Server struct {
	db        *sql.DB
	hub       *ws.Hub
	storeH    *handler.StoreHandler
	categoryH *handler.CategoryHandler
	productH  *handler.ProductHandler
	priceH    *handler.PriceHandler
	itemH     *handler.ItemHandler
	logger    *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	listStore := store.NewListStore(db)
	catalogStore := store.NewCatalogStore(db)

	return &Server{
		db:        db,
		hub:       hub,
		storeH:    handler.NewStoreHandler(listStore, logger.With("component", "store")),
		categoryH: handler.NewCategoryHandler(catalogStore, logger.With("component", "category")),
		productH:  handler.NewProductHandler(catalogStore, logger.With("component", "product")),
		priceH:    handler.NewPriceHandler(catalogStore, logger.With("component", "price")),
		itemH:     handler.NewItemHandler(listStore, hub, logger.With("component", "item")),
		logger:    logger,
	}
}

// Hub returns the broadcast hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	// Store API routes
	mux.HandleFunc("GET /api/stores", s.storeH.List)
	mux.HandleFunc("POST /api/stores", s.storeH.Create)
	mux.HandleFunc("DELETE /api/stores/{id}", s.storeH.Delete)

	// Category API routes
	mux.HandleFunc("GET /api/categories", s.categoryH.List)
	mux.HandleFunc("POST /api/categories", s.categoryH.Create)
	mux.HandleFunc("DELETE /api/categories/{id}", s.categoryH.Delete)

	// Product API routes
	mux.HandleFunc("GET /api/products", s.productH.List)
	mux.HandleFunc("POST /api/products", s.productH.Create)

	// Price history API routes
	mux.HandleFunc("GET /api/prices", s.priceH.List)
	mux.HandleFunc("POST /api/prices", s.priceH.Create)

	// Item API routes
	mux.HandleFunc("GET /api/items", s.itemH.List)
	mux.HandleFunc("POST /api/items", s.itemH.Create)
	mux.HandleFunc("GET /api/items/{id}", s.itemH.Get)
	mux.HandleFunc("PUT /api/items/{id}", s.itemH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
