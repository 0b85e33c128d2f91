package domain

import "time"

// Transaction types written to the append-only log.
const (
	TxTransferSent     = "transfer_sent"
	TxTransferReceived = "transfer_received"
	TxFareDebit        = "fare_debit"
)

// Transaction is one immutable ledger entry. Amount is signed (debits
// negative), BalanceAfter is the account balance immediately after the
// entry committed.
type Transaction struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	Type          string    `db:"type" json:"type"`
	Amount        int64     `db:"amount" json:"amount"`
	BalanceAfter  int64     `db:"balance_after" json:"balance_after"`
	RelatedUserID *int64    `db:"related_user_id" json:"related_user_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
