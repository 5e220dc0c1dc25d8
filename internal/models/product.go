package models

// Product mirrors one 1C nomenclature item. The primary key is the
// Ref_Key UUID issued by 1C; local storage never generates it.
type Product struct {
	RefKey string `db:"ref_key" json:"refKey"`
	Name   string `db:"name" json:"name"`
	SKU    string `db:"sku" json:"sku"`
}

// ProductAmount is the derived quantity on hand for one characteristic
// of a product, computed as the sum over its movement rows.
type ProductAmount struct {
	Characteristic     string `db:"characteristic" json:"characteristic"`
	CharacteristicName string `db:"characteristic_name" json:"characteristicName"`
	Amount             int64  `db:"amount" json:"amount"`
}

// ProductPrice is the derived current price for one characteristic of a
// product: the most recent price-change row by period, paired with the
// quantity on hand.
type ProductPrice struct {
	Characteristic     string  `db:"characteristic" json:"characteristic"`
	CharacteristicName string  `db:"characteristic_name" json:"characteristicName"`
	Price              float64 `db:"price" json:"price"`
	Amount             int64   `db:"amount" json:"amount"`
}
