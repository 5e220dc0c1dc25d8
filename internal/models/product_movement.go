package models

import "time"

// ProductMovement is one stock register row from 1C. Outbound movements
// carry a negative amount. The full value set is the natural key, which
// makes the register idempotent under re-sync.
type ProductMovement struct {
	ID                int64     `db:"id" json:"id"`
	ProductRef        string    `db:"product_ref" json:"productRef"`
	CharacteristicRef string    `db:"characteristic_ref" json:"characteristicRef"`
	Period            time.Time `db:"period" json:"period"`
	Amount            int       `db:"amount" json:"amount"`
}
