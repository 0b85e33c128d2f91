package domain

import "time"

// Account is a user's prepaid wallet: balance in minor currency units
// plus the boarded flag the fare gate toggles on each scan.
type Account struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Balance   int64     `db:"balance" json:"balance"`
	Boarded   bool      `db:"boarded" json:"boarded"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
