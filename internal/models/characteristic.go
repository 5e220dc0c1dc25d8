package models

// Characteristic mirrors one 1C nomenclature characteristic (a product
// variant such as a size or color).
type Characteristic struct {
	RefKey string `db:"ref_key" json:"refKey"`
	Name   string `db:"name" json:"name"`
}
