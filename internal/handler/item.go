package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mdietrich/shoplist/internal/model"
	"github.com/mdietrich/shoplist/internal/store"
	"github.com/mdietrich/shoplist/internal/websocket"
)

// ItemHandler serves the shopping-list entries and pushes each successful
// mutation into the broadcast hub.
type ItemHandler struct {
	listStore *store.ListStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewItemHandler(ls *store.ListStore, hub *websocket.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{listStore: ls, hub: hub, logger: logger}
}

// Broadcasting is best-effort: it happens after the write commits and its
// outcome never changes the response.
func (h *ItemHandler) emitCreated(item *model.ItemDetail) {
	if h.hub != nil {
		h.hub.ItemCreated(item)
	}
}

func (h *ItemHandler) emitUpdated(item *model.ItemDetail) {
	if h.hub != nil {
		h.hub.ItemUpdated(item)
	}
}

func (h *ItemHandler) emitDeleted(id int64) {
	if h.hub != nil {
		h.hub.ItemDeleted(id)
	}
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter store.ItemFilter
	if v := r.URL.Query().Get("store_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid store_id")
			return
		}
		filter.StoreID = &id
	}
	if v := r.URL.Query().Get("is_bought"); v != "" {
		bought := v == "true"
		filter.IsBought = &bought
	}

	items, err := h.listStore.ListItems(filter)
	if err != nil {
		h.logger.Error("list items", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch items")
		return
	}
	if items == nil {
		items = []model.ItemDetail{}
	}
	respondData(w, http.StatusOK, items)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.listStore.GetItemByID(id)
	if err != nil {
		h.logger.Error("get item", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch item")
		return
	}
	if item == nil {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}
	respondData(w, http.StatusOK, item)
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64  `json:"product_id"`
		StoreID   int64  `json:"store_id"`
		Quantity  *int   `json:"quantity"`
		Notes     string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.ProductID == 0 || req.StoreID == 0 {
		respondError(w, http.StatusBadRequest, "product_id and store_id are required")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 {
		respondError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	// Dangling product/store ids are left to the database's foreign-key
	// check and surface as an unexpected failure.
	item, err := h.listStore.CreateItem(req.ProductID, req.StoreID, quantity, req.Notes)
	if err != nil {
		h.logger.Error("create item", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create item")
		return
	}

	h.emitCreated(item)

	respondMessage(w, http.StatusOK, item, "Item added to shopping list")
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.listStore.GetItemByID(id)
	if err != nil {
		h.logger.Error("get item", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch item")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}

	// Partial update: only fields present in the body change.
	var req struct {
		ProductID *int64  `json:"product_id"`
		StoreID   *int64  `json:"store_id"`
		Quantity  *int    `json:"quantity"`
		Notes     *string `json:"notes"`
		IsBought  *bool   `json:"is_bought"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	productID := existing.ProductID
	if req.ProductID != nil {
		productID = *req.ProductID
	}
	storeID := existing.StoreID
	if req.StoreID != nil {
		storeID = *req.StoreID
	}
	quantity := existing.Quantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 {
		respondError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}
	notes := existing.Notes
	if req.Notes != nil {
		notes = *req.Notes
	}
	isBought := existing.IsBought
	if req.IsBought != nil {
		isBought = *req.IsBought
	}

	item, err := h.listStore.UpdateItem(id, productID, storeID, quantity, notes, isBought)
	if err != nil {
		h.logger.Error("update item", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to update item")
		return
	}

	h.emitUpdated(item)

	respondMessage(w, http.StatusOK, item, "Item updated successfully")
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.listStore.GetItemByID(id)
	if err != nil {
		h.logger.Error("get item", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch item")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}

	if err := h.listStore.DeleteItem(id); err != nil {
		h.logger.Error("delete item", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete item")
		return
	}

	h.emitDeleted(id)

	respondMessage(w, http.StatusOK, nil, "Item deleted successfully")
}
