package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mdietrich/shoplist/internal/model"
)

// ListStore holds the shopping list proper: the stores items are bought at
// and the items themselves.
type ListStore struct {
	db *sql.DB
}

func NewListStore(db *sql.DB) *ListStore {
	return &ListStore{db: db}
}

// --- Store methods ---

func scanStore(scanner interface{ Scan(...any) error }) (*model.Store, error) {
	var s model.Store
	err := scanner.Scan(&s.ID, &s.Name, &s.Code, &s.ItemCount, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const storeCols = `s.id, s.name, s.code,
	(SELECT COUNT(*) FROM items WHERE store_id = s.id) AS item_count,
	s.created_at`

func (s *ListStore) ListStores() ([]model.Store, error) {
	rows, err := s.db.Query(`SELECT ` + storeCols + ` FROM stores s ORDER BY s.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var stores []model.Store
	for rows.Next() {
		st, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, *st)
	}
	return stores, rows.Err()
}

func (s *ListStore) GetStoreByID(id int64) (*model.Store, error) {
	row := s.db.QueryRow(`SELECT `+storeCols+` FROM stores s WHERE s.id = ?`, id)
	st, err := scanStore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}
	return st, nil
}

func (s *ListStore) CreateStore(name, code string) (*model.Store, error) {
	result, err := s.db.Exec(`INSERT INTO stores (name, code) VALUES (?, ?)`, name, code)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert store: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetStoreByID(id)
}

// DeleteStore removes a store; its items go with it via the cascade.
func (s *ListStore) DeleteStore(id int64) error {
	_, err := s.db.Exec(`DELETE FROM stores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	return nil
}

// --- Item methods ---

func scanItemDetail(scanner interface{ Scan(...any) error }) (*model.ItemDetail, error) {
	var (
		d        model.ItemDetail
		bought   int
		category model.Category
		priceID  sql.NullInt64
		price    decimal.NullDecimal
		recorded sql.NullTime
	)

	err := scanner.Scan(
		&d.ID, &d.ProductID, &d.StoreID, &d.Quantity, &d.Notes, &bought,
		&d.CreatedAt, &d.UpdatedAt,
		&d.Product.Name, &d.Product.CategoryID, &d.Product.CreatedAt,
		&category.Name, &category.CreatedAt,
		&d.Store.Name, &d.Store.Code, &d.Store.CreatedAt,
		&priceID, &price, &recorded,
	)
	if err != nil {
		return nil, err
	}

	d.IsBought = bought != 0
	d.Product.ID = d.ProductID
	d.Store.ID = d.StoreID
	category.ID = d.Product.CategoryID
	d.Product.Category = &category
	if priceID.Valid {
		d.Product.LatestPrice = &model.PricePoint{
			ID:         priceID.Int64,
			ProductID:  d.ProductID,
			Price:      price.Decimal,
			RecordedAt: recorded.Time,
		}
	}
	return &d, nil
}

const itemDetailQuery = `
SELECT i.id, i.product_id, i.store_id, i.quantity, i.notes, i.is_bought,
       i.created_at, i.updated_at,
       p.name, p.category_id, p.created_at,
       c.name, c.created_at,
       s.name, s.code, s.created_at,
       ph.id, ph.price, ph.recorded_at
FROM items i
JOIN products p ON p.id = i.product_id
JOIN categories c ON c.id = p.category_id
JOIN stores s ON s.id = i.store_id
LEFT JOIN price_history ph ON ph.id = (
    SELECT id FROM price_history
    WHERE product_id = i.product_id
    ORDER BY recorded_at DESC, id DESC
    LIMIT 1
)`

// ItemFilter narrows ListItems. Nil fields mean "any".
type ItemFilter struct {
	StoreID  *int64
	IsBought *bool
}

func (s *ListStore) ListItems(filter ItemFilter) ([]model.ItemDetail, error) {
	var conds []string
	var args []any
	if filter.StoreID != nil {
		conds = append(conds, "i.store_id = ?")
		args = append(args, *filter.StoreID)
	}
	if filter.IsBought != nil {
		bought := 0
		if *filter.IsBought {
			bought = 1
		}
		conds = append(conds, "i.is_bought = ?")
		args = append(args, bought)
	}

	query := itemDetailQuery
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY i.created_at DESC, i.id DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.ItemDetail
	for rows.Next() {
		d, err := scanItemDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *d)
	}
	return items, rows.Err()
}

func (s *ListStore) GetItemByID(id int64) (*model.ItemDetail, error) {
	row := s.db.QueryRow(itemDetailQuery+` WHERE i.id = ?`, id)
	d, err := scanItemDetail(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return d, nil
}

func (s *ListStore) CreateItem(productID, storeID int64, quantity int, notes string) (*model.ItemDetail, error) {
	result, err := s.db.Exec(
		`INSERT INTO items (product_id, store_id, quantity, notes) VALUES (?, ?, ?, ?)`,
		productID, storeID, quantity, notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *ListStore) UpdateItem(id, productID, storeID int64, quantity int, notes string, isBought bool) (*model.ItemDetail, error) {
	bought := 0
	if isBought {
		bought = 1
	}
	_, err := s.db.Exec(
		`UPDATE items
		 SET product_id = ?, store_id = ?, quantity = ?, notes = ?, is_bought = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		productID, storeID, quantity, notes, bought, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *ListStore) DeleteItem(id int64) error {
	_, err := s.db.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
