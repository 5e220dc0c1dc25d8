package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/models"
)

// BarcodeRepository handles data access for mirrored barcodes.
type BarcodeRepository struct {
	db *sqlx.DB
}

// NewBarcodeRepository creates a new BarcodeRepository.
func NewBarcodeRepository(db *sqlx.DB) *BarcodeRepository {
	return &BarcodeRepository{db: db}
}

// GetAllPaged returns barcodes with pagination and the total count.
func (r *BarcodeRepository) GetAllPaged(page, limit int) ([]models.Barcode, int, error) {
	limit, offset := normalizePage(page, limit)

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(1) FROM barcodes`); err != nil {
		return nil, 0, err
	}

	var barcodes []models.Barcode
	err := r.db.Select(&barcodes, `
		SELECT id, product_ref, characteristic_ref, barcode
		FROM barcodes ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return barcodes, total, nil
}
