package domain

// Card binds a physical RFID token to an account. Immutable once created.
type Card struct {
	ID         int64  `db:"id" json:"id"`
	UserID     int64  `db:"user_id" json:"user_id"`
	CardNumber string `db:"card_number" json:"card_number"`
}

// CardNumberDigits is the fixed width of issued card numbers.
const CardNumberDigits = 10
