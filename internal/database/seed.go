package database

import (
	"database/sql"
	"fmt"
)

var seedStores = []struct{ name, code string }{
	{"Rewe", "REWE"},
	{"Aldi", "ALDI"},
	{"Lidl", "LIDL"},
	{"Penny", "PENNY"},
	{"DM", "DM"},
	{"Karadag", "KARADAG"},
}

var seedCategories = []string{
	"Dairy",
	"Meat",
	"Vegetables",
	"Fruits",
	"Household",
	"Beverages",
	"Bakery",
}

// Seed inserts the default stores and categories. It is idempotent: rows
// that already exist are left untouched.
func Seed(db *sql.DB) error {
	for _, s := range seedStores {
		if _, err := db.Exec(
			`INSERT INTO stores (name, code) VALUES (?, ?) ON CONFLICT DO NOTHING`,
			s.name, s.code,
		); err != nil {
			return fmt.Errorf("seed store %s: %w", s.code, err)
		}
	}
	for _, name := range seedCategories {
		if _, err := db.Exec(
			`INSERT INTO categories (name) VALUES (?) ON CONFLICT DO NOTHING`,
			name,
		); err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
	}
	return nil
}
