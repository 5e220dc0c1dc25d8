package models

import "time"

// PriceChange is one price register row from 1C. The price type reference
// is payload only and never part of the natural key.
type PriceChange struct {
	ID                int64     `db:"id" json:"id"`
	ProductRef        string    `db:"product_ref" json:"productRef"`
	CharacteristicRef string    `db:"characteristic_ref" json:"characteristicRef"`
	PriceTypeRef      string    `db:"price_type_ref" json:"priceTypeRef"`
	Period            time.Time `db:"period" json:"period"`
	Price             float64   `db:"price" json:"price"`
}
