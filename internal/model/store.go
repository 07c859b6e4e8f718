package model

import "time"

// Store is a physical shop items are bought at. Name and code are unique;
// code is a short uppercase tag ("REWE", "ALDI").
type Store struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	ItemCount int64     `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
}
