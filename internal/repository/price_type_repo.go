package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/models"
)

// PriceTypeRepository handles data access for mirrored price types.
type PriceTypeRepository struct {
	db *sqlx.DB
}

// NewPriceTypeRepository creates a new PriceTypeRepository.
func NewPriceTypeRepository(db *sqlx.DB) *PriceTypeRepository {
	return &PriceTypeRepository{db: db}
}

// GetAllPaged returns price types with pagination and the total count.
func (r *PriceTypeRepository) GetAllPaged(page, limit int) ([]models.PriceType, int, error) {
	limit, offset := normalizePage(page, limit)

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(1) FROM price_types`); err != nil {
		return nil, 0, err
	}

	var priceTypes []models.PriceType
	err := r.db.Select(&priceTypes, `
		SELECT ref_key, name FROM price_types
		ORDER BY name, ref_key LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return priceTypes, total, nil
}
