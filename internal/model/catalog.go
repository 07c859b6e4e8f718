package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	ProductCount int64     `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type Product struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	CategoryID  int64       `json:"category_id"`
	CreatedAt   time.Time   `json:"created_at"`
	Category    *Category   `json:"category,omitempty"`
	LatestPrice *PricePoint `json:"latest_price,omitempty"`
}

// PricePoint is one observed price for a product. Rows are append-only;
// the newest one is the product's current price.
type PricePoint struct {
	ID         int64           `json:"id"`
	ProductID  int64           `json:"product_id"`
	Price      decimal.Decimal `json:"price"`
	RecordedAt time.Time       `json:"recorded_at"`
}
