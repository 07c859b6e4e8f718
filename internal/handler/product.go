package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mdietrich/shoplist/internal/model"
	"github.com/mdietrich/shoplist/internal/store"
)

type ProductHandler struct {
	catalog *store.CatalogStore
	logger  *slog.Logger
}

func NewProductHandler(cs *store.CatalogStore, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: cs, logger: logger}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var categoryID *int64
	if v := r.URL.Query().Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		categoryID = &id
	}

	products, err := h.catalog.ListProducts(categoryID)
	if err != nil {
		h.logger.Error("list products", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	respondData(w, http.StatusOK, products)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string           `json:"name"`
		CategoryID int64            `json:"category_id"`
		Price      *decimal.Decimal `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.CategoryID == 0 {
		respondError(w, http.StatusBadRequest, "name and category_id are required")
		return
	}
	if req.Price != nil && !req.Price.IsPositive() {
		respondError(w, http.StatusBadRequest, "price must be greater than zero")
		return
	}

	product, err := h.catalog.CreateProduct(req.Name, req.CategoryID)
	if err != nil {
		h.logger.Error("create product", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	if req.Price != nil {
		if _, err := h.catalog.AddPrice(product.ID, *req.Price); err != nil {
			h.logger.Error("record initial price", "product_id", product.ID, "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to create product")
			return
		}
		// Refetch so the response carries the price that was just recorded
		if refreshed, err := h.catalog.GetProductByID(product.ID); err == nil && refreshed != nil {
			product = refreshed
		}
	}

	respondMessage(w, http.StatusOK, product, "Product created successfully")
}
