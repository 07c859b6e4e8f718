package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mdietrich/shoplist/internal/model"
	"github.com/mdietrich/shoplist/internal/store"
)

// PriceHandler serves the append-only price history.
type PriceHandler struct {
	catalog *store.CatalogStore
	logger  *slog.Logger
}

func NewPriceHandler(cs *store.CatalogStore, logger *slog.Logger) *PriceHandler {
	return &PriceHandler{catalog: cs, logger: logger}
}

func (h *PriceHandler) List(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query().Get("product_id")
	if v == "" {
		respondError(w, http.StatusBadRequest, "product_id is required")
		return
	}
	productID, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product_id")
		return
	}

	prices, err := h.catalog.ListPrices(productID)
	if err != nil {
		h.logger.Error("list prices", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch price history")
		return
	}
	if prices == nil {
		prices = []model.PricePoint{}
	}
	respondData(w, http.StatusOK, prices)
}

func (h *PriceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64           `json:"product_id"`
		Price     decimal.Decimal `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.ProductID == 0 || req.Price.IsZero() {
		respondError(w, http.StatusBadRequest, "product_id and price are required")
		return
	}
	if !req.Price.IsPositive() {
		respondError(w, http.StatusBadRequest, "price must be greater than zero")
		return
	}

	pp, err := h.catalog.AddPrice(req.ProductID, req.Price)
	if err != nil {
		h.logger.Error("add price", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to add price")
		return
	}

	respondMessage(w, http.StatusOK, pp, "Price added to history")
}
