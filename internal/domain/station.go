package domain

// Station is one entry of the railway station catalogue.
type Station struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Code string `db:"code" json:"code"`
}
