package service

import (
	"context"
	"errors"

	"velociti_backend/internal/domain"
	"velociti_backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerService owns all balance mutation. Every write pairs with one
// appended transaction row inside the same pgx transaction, and
// concurrent writers against one account serialize on the row lock
// taken by SELECT ... FOR UPDATE.
type LedgerService struct {
	db              *pgxpool.Pool
	transactionRepo *repository.TransactionRepository
}

func NewLedgerService(db *pgxpool.Pool) *LedgerService {
	return &LedgerService{
		db:              db,
		transactionRepo: repository.NewTransactionRepository(db),
	}
}

func (s *LedgerService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := s.db.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrAccountNotFound
		}
		return 0, err
	}
	return balance, nil
}

// Debit removes amount from the balance and appends a ledger entry of the
// given type. Fails with ErrInsufficientFunds before any write.
func (s *LedgerService) Debit(ctx context.Context, userID, amount int64, txType string, related *int64) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var balance int64
	err = tx.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrAccountNotFound
		}
		return 0, err
	}

	if balance < amount {
		return 0, domain.ErrInsufficientFunds
	}

	err = tx.QueryRow(ctx, `UPDATE users SET balance = balance - $1 WHERE id = $2 RETURNING balance`, amount, userID).Scan(&newBalance)
	if err != nil {
		return 0, err
	}

	entry := &domain.Transaction{
		UserID:        userID,
		Type:          txType,
		Amount:        -amount,
		BalanceAfter:  newBalance,
		RelatedUserID: related,
	}
	if err = s.transactionRepo.CreateWithTx(ctx, tx, entry); err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}

	return newBalance, nil
}

// Credit adds amount to the balance and appends a ledger entry.
func (s *LedgerService) Credit(ctx context.Context, userID, amount int64, txType string, related *int64) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `UPDATE users SET balance = balance + $1 WHERE id = $2 RETURNING balance`, amount, userID).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrAccountNotFound
		}
		return 0, err
	}

	entry := &domain.Transaction{
		UserID:        userID,
		Type:          txType,
		Amount:        amount,
		BalanceAfter:  newBalance,
		RelatedUserID: related,
	}
	if err = s.transactionRepo.CreateWithTx(ctx, tx, entry); err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}

	return newBalance, nil
}

// History returns the user's recent ledger entries.
func (s *LedgerService) History(ctx context.Context, userID int64, limit int) ([]*domain.Transaction, error) {
	return s.transactionRepo.GetByUserID(ctx, userID, limit)
}
