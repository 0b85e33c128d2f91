package service

import (
	"context"
	"errors"
	"fmt"

	"velociti_backend/internal/domain"
	"velociti_backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecipientRef identifies a transfer target either by card number or by
// account email. Exactly one field is set.
type RecipientRef struct {
	CardNumber string
	Email      string
}

func ByCard(number string) RecipientRef { return RecipientRef{CardNumber: number} }
func ByEmail(email string) RecipientRef { return RecipientRef{Email: email} }

func (r RecipientRef) valid() bool {
	return (r.CardNumber != "") != (r.Email != "")
}

// TransferService executes peer-to-peer balance transfers.
type TransferService struct {
	db              *pgxpool.Pool
	cardRepo        *repository.CardRepository
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
}

func NewTransferService(db *pgxpool.Pool) *TransferService {
	return &TransferService{
		db:              db,
		cardRepo:        repository.NewCardRepository(db),
		accountRepo:     repository.NewAccountRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
	}
}

// Transfer moves amount from sender to the resolved recipient in one
// atomic unit: both balance writes and both ledger entries commit
// together or not at all. Rows are locked in id order so two opposing
// transfers cannot deadlock.
func (s *TransferService) Transfer(ctx context.Context, senderID int64, recipient RecipientRef, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if !recipient.valid() {
		return domain.ErrRecipientNotFound
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	recipientID, err := s.resolveRecipient(ctx, tx, recipient)
	if err != nil {
		return err
	}

	if recipientID == senderID {
		return domain.ErrSelfTransfer
	}

	// Lock both rows in id order to avoid deadlocks between opposing
	// transfers.
	firstID, secondID := senderID, recipientID
	if firstID > secondID {
		firstID, secondID = secondID, firstID
	}

	balances := map[int64]int64{}
	for _, id := range []int64{firstID, secondID} {
		var balance int64
		if err := tx.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&balance); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				if id == senderID {
					return domain.ErrAccountNotFound
				}
				return domain.ErrRecipientNotFound
			}
			return err
		}
		balances[id] = balance
	}

	if balances[senderID] < amount {
		return domain.ErrInsufficientFunds
	}

	var senderBalance, recipientBalance int64
	if err := tx.QueryRow(ctx,
		`UPDATE users SET balance = balance - $1 WHERE id = $2 RETURNING balance`,
		amount, senderID,
	).Scan(&senderBalance); err != nil {
		return fmt.Errorf("debit sender: %w", err)
	}
	if err := tx.QueryRow(ctx,
		`UPDATE users SET balance = balance + $1 WHERE id = $2 RETURNING balance`,
		amount, recipientID,
	).Scan(&recipientBalance); err != nil {
		return fmt.Errorf("credit recipient: %w", err)
	}

	sent := &domain.Transaction{
		UserID:        senderID,
		Type:          domain.TxTransferSent,
		Amount:        -amount,
		BalanceAfter:  senderBalance,
		RelatedUserID: &recipientID,
	}
	if err := s.transactionRepo.CreateWithTx(ctx, tx, sent); err != nil {
		return fmt.Errorf("record sender entry: %w", err)
	}

	received := &domain.Transaction{
		UserID:        recipientID,
		Type:          domain.TxTransferReceived,
		Amount:        amount,
		BalanceAfter:  recipientBalance,
		RelatedUserID: &senderID,
	}
	if err := s.transactionRepo.CreateWithTx(ctx, tx, received); err != nil {
		return fmt.Errorf("record recipient entry: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *TransferService) resolveRecipient(ctx context.Context, tx pgx.Tx, ref RecipientRef) (int64, error) {
	if ref.CardNumber != "" {
		return s.cardRepo.UserIDByCardTx(ctx, tx, ref.CardNumber)
	}
	return s.accountRepo.IDByEmailTx(ctx, tx, ref.Email)
}
