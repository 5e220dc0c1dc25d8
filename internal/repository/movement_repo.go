package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/models"
)

// MovementRepository handles data access for mirrored stock movements.
type MovementRepository struct {
	db *sqlx.DB
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(db *sqlx.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// GetAllPaged returns stock movements, newest first, with pagination and
// the total count.
func (r *MovementRepository) GetAllPaged(page, limit int) ([]models.ProductMovement, int, error) {
	limit, offset := normalizePage(page, limit)

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(1) FROM product_movements`); err != nil {
		return nil, 0, err
	}

	var movements []models.ProductMovement
	err := r.db.Select(&movements, `
		SELECT id, product_ref, characteristic_ref, period, amount
		FROM product_movements ORDER BY period DESC, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}
