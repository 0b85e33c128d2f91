package service

import (
	"context"
	"errors"
	"fmt"

	"velociti_backend/internal/domain"
	"velociti_backend/internal/logger"
	"velociti_backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Trip describes one gate transition: which station the scan maps to and
// what it costs. Fare is zero on entry.
type Trip struct {
	StationID   string
	StationName string
	Fare        int64
}

// TripLookup resolves station and fare for a scan direction. A real
// deployment would derive these from reader topology; the fixed lookup
// mirrors the deployed sensor network.
type TripLookup interface {
	EntryTrip(readerID string) Trip
	ExitTrip(readerID string) Trip
}

// FixedTripLookup returns the same entry/exit trip regardless of reader.
type FixedTripLookup struct {
	Entry Trip
	Exit  Trip
}

func (l FixedTripLookup) EntryTrip(string) Trip { return l.Entry }
func (l FixedTripLookup) ExitTrip(string) Trip  { return l.Exit }

// EventSink receives the push payloads a committed gate transition
// produces. Delivery is best-effort: a false return means no live
// connection, which never rolls back the ledger write.
type EventSink interface {
	DeliverNotification(userID int64, n domain.Notification) bool
	DeliverRfidEvent(userID int64, e domain.RfidEvent) bool
}

// scanOutcome is the pure result of applying one scan to gate state.
type scanOutcome struct {
	Boarded    bool
	Trip       Trip
	Fare       int64
	NewBalance int64
	EventType  string
	Message    string
}

// planScan applies the two-state fare machine: a scan while off-train
// boards for free, a scan while on-train exits and charges the fare,
// clamping the balance at zero.
func planScan(boarded bool, balance int64, entry, exit Trip) scanOutcome {
	if boarded {
		newBalance := balance - exit.Fare
		if newBalance < 0 {
			newBalance = 0
		}
		return scanOutcome{
			Boarded:    false,
			Trip:       exit,
			Fare:       exit.Fare,
			NewBalance: newBalance,
			EventType:  domain.RfidExit,
			Message:    fmt.Sprintf("Exited at %s. Fare: Rs. %d. Remaining balance: Rs. %d", exit.StationName, exit.Fare, newBalance),
		}
	}

	return scanOutcome{
		Boarded:    true,
		Trip:       entry,
		Fare:       0,
		NewBalance: balance,
		EventType:  domain.RfidEntry,
		Message:    fmt.Sprintf("Boarded train at %s", entry.StationName),
	}
}

// FareService drives the tap-in/tap-out state machine for scan events.
type FareService struct {
	db              *pgxpool.Pool
	transactionRepo *repository.TransactionRepository
	trips           TripLookup
	sink            EventSink
}

func NewFareService(db *pgxpool.Pool, trips TripLookup, sink EventSink) *FareService {
	return &FareService{
		db:              db,
		transactionRepo: repository.NewTransactionRepository(db),
		trips:           trips,
		sink:            sink,
	}
}

// HandleScan processes one scan for the resolved account. The boarded
// flag, the balance and the fare ledger entry commit in one transaction;
// push delivery happens after commit and its failure is non-fatal.
func (s *FareService) HandleScan(ctx context.Context, userID int64, scan domain.ScanEvent) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		balance int64
		boarded bool
	)
	err = tx.QueryRow(ctx, `SELECT balance, boarded FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance, &boarded)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAccountNotFound
		}
		return err
	}

	outcome := planScan(boarded, balance, s.trips.EntryTrip(scan.ReaderID), s.trips.ExitTrip(scan.ReaderID))

	_, err = tx.Exec(ctx, `UPDATE users SET balance = $1, boarded = $2 WHERE id = $3`,
		outcome.NewBalance, outcome.Boarded, userID)
	if err != nil {
		return err
	}

	if outcome.Fare > 0 {
		entry := &domain.Transaction{
			UserID:       userID,
			Type:         domain.TxFareDebit,
			Amount:       -outcome.Fare,
			BalanceAfter: outcome.NewBalance,
		}
		if err := s.transactionRepo.CreateWithTx(ctx, tx, entry); err != nil {
			return fmt.Errorf("record fare entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.notify(userID, scan, outcome)
	return nil
}

func (s *FareService) notify(userID int64, scan domain.ScanEvent, outcome scanOutcome) {
	if s.sink == nil {
		return
	}

	n := domain.NewNotification("VeloCiti Travel Update", outcome.Message, "travel", map[string]any{
		"uid":       scan.UID,
		"reader_id": scan.ReaderID,
		"station":   outcome.Trip.StationName,
		"fare":      outcome.Fare,
		"balance":   outcome.NewBalance,
	})
	if !s.sink.DeliverNotification(userID, n) {
		logger.Debug("travel notification dropped, no live connection", "user_id", userID)
	}

	e := domain.RfidEvent{
		UserID:      userID,
		StationID:   outcome.Trip.StationID,
		StationName: outcome.Trip.StationName,
		Timestamp:   n.Timestamp,
		EventType:   outcome.EventType,
		AdditionalData: map[string]any{
			"fare":    outcome.Fare,
			"balance": outcome.NewBalance,
		},
	}
	if !s.sink.DeliverRfidEvent(userID, e) {
		logger.Debug("rfid event dropped, no live connection", "user_id", userID)
	}
}
