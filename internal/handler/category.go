package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mdietrich/shoplist/internal/model"
	"github.com/mdietrich/shoplist/internal/store"
)

type CategoryHandler struct {
	catalog *store.CatalogStore
	logger  *slog.Logger
}

func NewCategoryHandler(cs *store.CatalogStore, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{catalog: cs, logger: logger}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories()
	if err != nil {
		h.logger.Error("list categories", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	respondData(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}

	category, err := h.catalog.CreateCategory(req.Name)
	if errors.Is(err, store.ErrDuplicate) {
		respondError(w, http.StatusBadRequest, "Category with this name already exists")
		return
	}
	if err != nil {
		h.logger.Error("create category", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	respondData(w, http.StatusOK, category)
}

// Delete removes a category and, through the cascades, its products and
// their items and price history.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.catalog.GetCategoryByID(id)
	if err != nil {
		h.logger.Error("get category", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch category")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "Category not found")
		return
	}

	if err := h.catalog.DeleteCategory(id); err != nil {
		h.logger.Error("delete category", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}

	respondMessage(w, http.StatusOK, nil, "Category deleted successfully")
}
