package domain

import "errors"

var (
	// ErrAccountNotFound indicates the acting account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrRecipientNotFound indicates the transfer target could not be resolved.
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrInsufficientFunds indicates the sender balance cannot cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidAmount indicates a non-positive transfer amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrSelfTransfer indicates sender and recipient are the same account.
	ErrSelfTransfer = errors.New("cannot transfer to own account")
	// ErrCardAllocationFailed indicates card number generation exhausted its attempt ceiling.
	ErrCardAllocationFailed = errors.New("card allocation failed")
)
