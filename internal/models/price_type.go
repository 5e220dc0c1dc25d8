package models

// PriceType mirrors one 1C price kind (retail, wholesale, ...).
type PriceType struct {
	RefKey string `db:"ref_key" json:"refKey"`
	Name   string `db:"name" json:"name"`
}
