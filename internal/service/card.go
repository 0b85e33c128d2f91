package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"velociti_backend/internal/domain"
	"velociti_backend/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultCardAllocAttempts = 20

// CardService allocates and looks up the RFID card bound to an account.
type CardService struct {
	cardRepo    *repository.CardRepository
	maxAttempts int
}

func NewCardService(db *pgxpool.Pool, maxAttempts int) *CardService {
	if maxAttempts <= 0 {
		maxAttempts = defaultCardAllocAttempts
	}
	return &CardService{
		cardRepo:    repository.NewCardRepository(db),
		maxAttempts: maxAttempts,
	}
}

// EnsureCard returns the user's card number, allocating one on first
// wallet access. Number collisions retry with a fresh candidate up to
// the attempt ceiling; a concurrent allocation for the same account is
// resolved by returning whichever card won the insert.
func (s *CardService) EnsureCard(ctx context.Context, userID int64) (string, error) {
	card, err := s.cardRepo.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if card != nil {
		return card.CardNumber, nil
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		candidate := generateCardNumber()

		ok, err := s.cardRepo.TryCreate(ctx, userID, candidate)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				// unique(user_id) fired: another request allocated this
				// account's card first
				existing, lookupErr := s.cardRepo.GetByUserID(ctx, userID)
				if lookupErr != nil {
					return "", lookupErr
				}
				if existing != nil {
					return existing.CardNumber, nil
				}
			}
			return "", fmt.Errorf("allocate card: %w", err)
		}
		if ok {
			return candidate, nil
		}
		// card number taken, try a fresh candidate
	}

	return "", domain.ErrCardAllocationFailed
}

// generateCardNumber draws a uniformly random fixed-width numeric token,
// 1000000000..9999999999.
func generateCardNumber() string {
	n := rand.Int64N(9_000_000_000) + 1_000_000_000
	return fmt.Sprintf("%d", n)
}
