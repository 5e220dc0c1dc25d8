package models

// Barcode links a scanned code to a product/characteristic pair. The row
// identifier is internal; the (product, characteristic) pair is the
// natural key, so a changed barcode value lands on the existing row.
type Barcode struct {
	ID                int64  `db:"id" json:"id"`
	ProductRef        string `db:"product_ref" json:"productRef"`
	CharacteristicRef string `db:"characteristic_ref" json:"characteristicRef"`
	Barcode           string `db:"barcode" json:"barcode"`
}
