package listclient

import (
	"sync"

	"github.com/mdietrich/shoplist/internal/model"
)

// Cache is a client-side in-memory mirror of the shared shopping list,
// seeded by full fetches and kept current by applying notifications. The
// same reducers serve both the local-mutation path and the broadcast path,
// so a notification echoing a client's own mutation must be harmless to
// re-apply.
type Cache struct {
	mu         sync.RWMutex
	rev        int64
	items      []model.ItemDetail
	stores     []model.Store
	categories []model.Category
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{}
}

// Seed replaces the item collection with the result of a full fetch.
func (c *Cache) Seed(items []model.ItemDetail) {
	c.mu.Lock()
	c.items = append([]model.ItemDetail(nil), items...)
	c.rev++
	c.mu.Unlock()
}

// SeedStores replaces the auxiliary store list.
func (c *Cache) SeedStores(stores []model.Store) {
	c.mu.Lock()
	c.stores = append([]model.Store(nil), stores...)
	c.mu.Unlock()
}

// SeedCategories replaces the auxiliary category list.
func (c *Cache) SeedCategories(categories []model.Category) {
	c.mu.Lock()
	c.categories = append([]model.Category(nil), categories...)
	c.mu.Unlock()
}

// ApplyCreated prepends a new item. An item whose id is already present is
// ignored, so redelivery of a create notification cannot duplicate a row.
func (c *Cache) ApplyCreated(item model.ItemDetail) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.items {
		if existing.ID == item.ID {
			return
		}
	}
	c.items = append([]model.ItemDetail{item}, c.items...)
	c.rev++
}

// ApplyUpdated replaces the item with a matching id. There is no merge: the
// last delivered notification wins wholesale. An unknown id is silently
// ignored; the item belongs to list state this client has not seen yet.
func (c *Cache) ApplyUpdated(item model.ItemDetail) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.items {
		if existing.ID == item.ID {
			c.items[i] = item
			c.rev++
			return
		}
	}
}

// ApplyDeleted removes the item with a matching id, if present.
func (c *Cache) ApplyDeleted(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.items {
		if existing.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.rev++
			return
		}
	}
}

// Revision increments whenever the item collection actually changes, so a
// consumer can poll cheaply instead of diffing.
func (c *Cache) Revision() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rev
}

// Items returns a copy of the current item collection, newest first.
func (c *Cache) Items() []model.ItemDetail {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.ItemDetail(nil), c.items...)
}

// Get returns the cached item with the given id.
func (c *Cache) Get(id int64) (model.ItemDetail, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.ID == id {
			return item, true
		}
	}
	return model.ItemDetail{}, false
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stores returns a copy of the cached store list.
func (c *Cache) Stores() []model.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Store(nil), c.stores...)
}

// Categories returns a copy of the cached category list.
func (c *Cache) Categories() []model.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Category(nil), c.categories...)
}
