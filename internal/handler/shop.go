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

// StoreHandler serves the stores items are bought at.
type StoreHandler struct {
	listStore *store.ListStore
	logger    *slog.Logger
}

func NewStoreHandler(ls *store.ListStore, logger *slog.Logger) *StoreHandler {
	return &StoreHandler{listStore: ls, logger: logger}
}

func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	stores, err := h.listStore.ListStores()
	if err != nil {
		h.logger.Error("list stores", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch stores")
		return
	}
	if stores == nil {
		stores = []model.Store{}
	}
	respondData(w, http.StatusOK, stores)
}

func (h *StoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if req.Name == "" || req.Code == "" {
		respondError(w, http.StatusBadRequest, "name and code are required")
		return
	}

	st, err := h.listStore.CreateStore(req.Name, req.Code)
	if errors.Is(err, store.ErrDuplicate) {
		respondError(w, http.StatusBadRequest, "Store with this name or code already exists")
		return
	}
	if err != nil {
		h.logger.Error("create store", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create store")
		return
	}

	respondData(w, http.StatusOK, st)
}

func (h *StoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.listStore.GetStoreByID(id)
	if err != nil {
		h.logger.Error("get store", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch store")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "Store not found")
		return
	}

	if err := h.listStore.DeleteStore(id); err != nil {
		h.logger.Error("delete store", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete store")
		return
	}

	respondMessage(w, http.StatusOK, nil, "Store deleted successfully")
}
