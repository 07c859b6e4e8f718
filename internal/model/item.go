package model

import "time"

// Item is one shopping-list entry: a product to buy at a specific store.
type Item struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	StoreID   int64     `json:"store_id"`
	Quantity  int       `json:"quantity"`
	Notes     string    `json:"notes"`
	IsBought  bool      `json:"is_bought"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemDetail is an Item with its relations resolved: the product (including
// category and latest price) and the store. This is the shape the API
// returns and the realtime layer broadcasts.
type ItemDetail struct {
	Item
	Product Product `json:"product"`
	Store   Store   `json:"store"`
}
