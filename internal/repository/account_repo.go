package repository

import (
	"context"
	"errors"

	"velociti_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, COALESCE(name, ''), balance, boarded, created_at
		 FROM users
		 WHERE id = $1`,
		id,
	)

	var a domain.Account
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.Balance, &a.Boarded, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, COALESCE(name, ''), balance, boarded, created_at
		 FROM users
		 WHERE email = $1`,
		email,
	)

	var a domain.Account
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.Balance, &a.Boarded, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create inserts a new account. Used by seeds and tests; signup itself
// lives outside this service.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO users (email, name, balance, boarded)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		a.Email, a.Name, a.Balance, a.Boarded,
	).Scan(&a.ID, &a.CreatedAt)
}

// IDByEmailTx resolves an account id inside an open transaction.
func (r *AccountRepository) IDByEmailTx(ctx context.Context, tx pgx.Tx, email string) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrRecipientNotFound
		}
		return 0, err
	}
	return id, nil
}
