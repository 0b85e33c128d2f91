package handlers

import (
	"velociti_backend/internal/repository"
	"velociti_backend/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HandlerConfig holds the tunables the wallet handlers need.
type HandlerConfig struct {
	CardAllocAttempts int
}

type Handler struct {
	DB          *pgxpool.Pool
	Ledger      *service.LedgerService
	Transfers   *service.TransferService
	Cards       *service.CardService
	StationRepo *repository.StationRepository
}

func NewHandler(db *pgxpool.Pool, cfg HandlerConfig) *Handler {
	return &Handler{
		DB:          db,
		Ledger:      service.NewLedgerService(db),
		Transfers:   service.NewTransferService(db),
		Cards:       service.NewCardService(db, cfg.CardAllocAttempts),
		StationRepo: repository.NewStationRepository(db),
	}
}

// getUserID extracts the authenticated user id the JWT middleware stored.
func getUserID(c interface{ Get(any) (any, bool) }) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
