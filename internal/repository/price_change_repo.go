package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/models"
)

// PriceChangeRepository handles data access for mirrored price changes.
type PriceChangeRepository struct {
	db *sqlx.DB
}

// NewPriceChangeRepository creates a new PriceChangeRepository.
func NewPriceChangeRepository(db *sqlx.DB) *PriceChangeRepository {
	return &PriceChangeRepository{db: db}
}

// GetAllPaged returns price changes, newest first, with pagination and
// the total count.
func (r *PriceChangeRepository) GetAllPaged(page, limit int) ([]models.PriceChange, int, error) {
	limit, offset := normalizePage(page, limit)

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(1) FROM price_changes`); err != nil {
		return nil, 0, err
	}

	var changes []models.PriceChange
	err := r.db.Select(&changes, `
		SELECT id, product_ref, characteristic_ref, price_type_ref, period, price
		FROM price_changes ORDER BY period DESC, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return changes, total, nil
}
