package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/models"
)

// ProductRepository handles data access for mirrored products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetAllPaged returns products ordered by name with pagination and the
// total count. Page begins at 1.
func (r *ProductRepository) GetAllPaged(page, limit int) ([]models.Product, int, error) {
	limit, offset := normalizePage(page, limit)

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(1) FROM products`); err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := r.db.Select(&products,
		`SELECT ref_key, name, sku FROM products ORDER BY name, ref_key LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetByRefKey returns one product or nil when it does not exist.
func (r *ProductRepository) GetByRefKey(refKey string) (*models.Product, error) {
	var product models.Product
	err := r.db.Get(&product,
		`SELECT ref_key, name, sku FROM products WHERE ref_key = $1`, refKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetAmounts returns the quantity on hand per characteristic for a
// product, summed over its movement rows.
func (r *ProductRepository) GetAmounts(refKey string) ([]models.ProductAmount, error) {
	amounts := []models.ProductAmount{}
	err := r.db.Select(&amounts, `
		SELECT c.ref_key AS characteristic,
		       c.name AS characteristic_name,
		       SUM(m.amount)::bigint AS amount
		FROM product_movements m
		JOIN characteristics c ON c.ref_key = m.characteristic_ref
		WHERE m.product_ref = $1
		GROUP BY c.ref_key, c.name
		ORDER BY c.name`, refKey)
	if err != nil {
		return nil, err
	}
	return amounts, nil
}

// GetPrices returns the latest price per characteristic for a product
// (most recent price-change row by period), paired with the quantity on
// hand.
func (r *ProductRepository) GetPrices(refKey string) ([]models.ProductPrice, error) {
	prices := []models.ProductPrice{}
	err := r.db.Select(&prices, `
		SELECT DISTINCT ON (pc.characteristic_ref)
		       c.ref_key AS characteristic,
		       c.name AS characteristic_name,
		       pc.price,
		       COALESCE(a.amount, 0)::bigint AS amount
		FROM price_changes pc
		JOIN characteristics c ON c.ref_key = pc.characteristic_ref
		LEFT JOIN (
		    SELECT characteristic_ref, SUM(amount) AS amount
		    FROM product_movements
		    WHERE product_ref = $1
		    GROUP BY characteristic_ref
		) a ON a.characteristic_ref = pc.characteristic_ref
		WHERE pc.product_ref = $1
		ORDER BY pc.characteristic_ref, pc.period DESC`, refKey)
	if err != nil {
		return nil, err
	}
	return prices, nil
}

// normalizePage applies the shared paging defaults and returns the
// effective limit and offset.
func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	return limit, (page - 1) * limit
}
