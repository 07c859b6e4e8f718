package store

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mdietrich/shoplist/internal/model"
)

// CatalogStore holds what can be bought: categories, products, and each
// product's price history.
type CatalogStore struct {
	db *sql.DB
}

func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// --- Category methods ---

func scanCategory(scanner interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.ProductCount, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const categoryCols = `c.id, c.name,
	(SELECT COUNT(*) FROM products WHERE category_id = c.id) AS product_count,
	c.created_at`

func (s *CatalogStore) ListCategories() ([]model.Category, error) {
	rows, err := s.db.Query(`SELECT ` + categoryCols + ` FROM categories c ORDER BY c.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (s *CatalogStore) GetCategoryByID(id int64) (*model.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryCols+` FROM categories c WHERE c.id = ?`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *CatalogStore) CreateCategory(name string) (*model.Category, error) {
	result, err := s.db.Exec(`INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetCategoryByID(id)
}

// DeleteCategory removes a category; its products, their items, and their
// price history go with it via the cascades.
func (s *CatalogStore) DeleteCategory(id int64) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// --- Product methods ---

func scanProduct(scanner interface{ Scan(...any) error }) (*model.Product, error) {
	var (
		p        model.Product
		category model.Category
		priceID  sql.NullInt64
		price    decimal.NullDecimal
		recorded sql.NullTime
	)

	err := scanner.Scan(
		&p.ID, &p.Name, &p.CategoryID, &p.CreatedAt,
		&category.Name, &category.CreatedAt,
		&priceID, &price, &recorded,
	)
	if err != nil {
		return nil, err
	}

	category.ID = p.CategoryID
	p.Category = &category
	if priceID.Valid {
		p.LatestPrice = &model.PricePoint{
			ID:         priceID.Int64,
			ProductID:  p.ID,
			Price:      price.Decimal,
			RecordedAt: recorded.Time,
		}
	}
	return &p, nil
}

const productQuery = `
SELECT p.id, p.name, p.category_id, p.created_at,
       c.name, c.created_at,
       ph.id, ph.price, ph.recorded_at
FROM products p
JOIN categories c ON c.id = p.category_id
LEFT JOIN price_history ph ON ph.id = (
    SELECT id FROM price_history
    WHERE product_id = p.id
    ORDER BY recorded_at DESC, id DESC
    LIMIT 1
)`

// ListProducts returns products with category and latest price, optionally
// narrowed to one category. A nil categoryID means all products.
func (s *CatalogStore) ListProducts(categoryID *int64) ([]model.Product, error) {
	query := productQuery
	var args []any
	if categoryID != nil {
		query += " WHERE p.category_id = ?"
		args = append(args, *categoryID)
	}
	query += " ORDER BY p.name ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *CatalogStore) GetProductByID(id int64) (*model.Product, error) {
	row := s.db.QueryRow(productQuery+` WHERE p.id = ?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *CatalogStore) CreateProduct(name string, categoryID int64) (*model.Product, error) {
	result, err := s.db.Exec(
		`INSERT INTO products (name, category_id) VALUES (?, ?)`,
		name, categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetProductByID(id)
}

// --- Price history methods ---

func scanPricePoint(scanner interface{ Scan(...any) error }) (*model.PricePoint, error) {
	var pp model.PricePoint
	err := scanner.Scan(&pp.ID, &pp.ProductID, &pp.Price, &pp.RecordedAt)
	if err != nil {
		return nil, err
	}
	return &pp, nil
}

const priceCols = `id, product_id, price, recorded_at`

// AddPrice appends a price observation for a product. Rows are never
// updated or deleted individually.
func (s *CatalogStore) AddPrice(productID int64, price decimal.Decimal) (*model.PricePoint, error) {
	result, err := s.db.Exec(
		`INSERT INTO price_history (product_id, price) VALUES (?, ?)`,
		productID, price,
	)
	if err != nil {
		return nil, fmt.Errorf("insert price: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+priceCols+` FROM price_history WHERE id = ?`, id)
	pp, err := scanPricePoint(row)
	if err != nil {
		return nil, fmt.Errorf("get price: %w", err)
	}
	return pp, nil
}

// ListPrices returns a product's price history, newest first.
func (s *CatalogStore) ListPrices(productID int64) ([]model.PricePoint, error) {
	rows, err := s.db.Query(
		`SELECT `+priceCols+` FROM price_history WHERE product_id = ? ORDER BY recorded_at DESC, id DESC`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	defer rows.Close()

	var prices []model.PricePoint
	for rows.Next() {
		pp, err := scanPricePoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		prices = append(prices, *pp)
	}
	return prices, rows.Err()
}
