package repository

import (
	"context"
	"errors"

	"velociti_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CardRepository struct {
	db *pgxpool.Pool
}

func NewCardRepository(db *pgxpool.Pool) *CardRepository {
	return &CardRepository{db: db}
}

// GetByUserID returns the user's card, or nil when none is allocated yet.
func (r *CardRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Card, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, user_id, card_number FROM cards WHERE user_id = $1`, userID)

	var c domain.Card
	if err := row.Scan(&c.ID, &c.UserID, &c.CardNumber); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CardRepository) GetByCardNumber(ctx context.Context, cardNumber string) (*domain.Card, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, user_id, card_number FROM cards WHERE card_number = $1`, cardNumber)

	var c domain.Card
	if err := row.Scan(&c.ID, &c.UserID, &c.CardNumber); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// TryCreate inserts a card if its number is still free. Returns false
// without error when another allocation already took the number.
func (r *CardRepository) TryCreate(ctx context.Context, userID int64, cardNumber string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO cards (user_id, card_number)
		 VALUES ($1, $2)
		 ON CONFLICT (card_number) DO NOTHING`,
		userID, cardNumber,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UserIDByCardTx resolves a card number to its owner inside an open transaction.
func (r *CardRepository) UserIDByCardTx(ctx context.Context, tx pgx.Tx, cardNumber string) (int64, error) {
	var userID int64
	err := tx.QueryRow(ctx, `SELECT user_id FROM cards WHERE card_number = $1`, cardNumber).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrRecipientNotFound
		}
		return 0, err
	}
	return userID, nil
}
