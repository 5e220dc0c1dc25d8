package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/models"
)

// CharacteristicRepository handles data access for mirrored characteristics.
type CharacteristicRepository struct {
	db *sqlx.DB
}

// NewCharacteristicRepository creates a new CharacteristicRepository.
func NewCharacteristicRepository(db *sqlx.DB) *CharacteristicRepository {
	return &CharacteristicRepository{db: db}
}

// GetAllPaged returns characteristics with pagination and the total count.
func (r *CharacteristicRepository) GetAllPaged(page, limit int) ([]models.Characteristic, int, error) {
	limit, offset := normalizePage(page, limit)

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(1) FROM characteristics`); err != nil {
		return nil, 0, err
	}

	var characteristics []models.Characteristic
	err := r.db.Select(&characteristics, `
		SELECT ref_key, name FROM characteristics
		ORDER BY name, ref_key LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return characteristics, total, nil
}
