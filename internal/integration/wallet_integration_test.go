package integration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"velociti_backend/internal/domain"
	"velociti_backend/internal/repository"
	"velociti_backend/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func connectTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)
	applyMigrations(t, db)
	return db
}

func createAccount(t *testing.T, db *pgxpool.Pool, balance int64) *domain.Account {
	t.Helper()
	repo := repository.NewAccountRepository(db)
	a := &domain.Account{
		Email:   fmt.Sprintf("rider-%d@example.com", time.Now().UnixNano()),
		Name:    "Test Rider",
		Balance: balance,
	}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return a
}

func TestTransfer_ConservesFunds(t *testing.T) {
	db := connectTestDB(t)
	ctx := context.Background()

	sender := createAccount(t, db, 1000)
	recipient := createAccount(t, db, 500)

	cards := service.NewCardService(db, 0)
	recipientCard, err := cards.EnsureCard(ctx, recipient.ID)
	if err != nil {
		t.Fatalf("ensure card: %v", err)
	}

	transfers := service.NewTransferService(db)
	if err := transfers.Transfer(ctx, sender.ID, service.ByCard(recipientCard), 300); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	ledger := service.NewLedgerService(db)
	senderBalance, _ := ledger.GetBalance(ctx, sender.ID)
	recipientBalance, _ := ledger.GetBalance(ctx, recipient.ID)

	if senderBalance != 700 {
		t.Fatalf("sender balance = %d; want 700", senderBalance)
	}
	if recipientBalance != 800 {
		t.Fatalf("recipient balance = %d; want 800", recipientBalance)
	}

	sentTxs, err := ledger.History(ctx, sender.ID, 10)
	if err != nil {
		t.Fatalf("sender history: %v", err)
	}
	if len(sentTxs) != 1 || sentTxs[0].Type != domain.TxTransferSent {
		t.Fatalf("sender history = %+v; want one transfer_sent entry", sentTxs)
	}
	if sentTxs[0].BalanceAfter != 700 || sentTxs[0].Amount != -300 {
		t.Fatalf("sender entry amount=%d balance_after=%d; want -300/700", sentTxs[0].Amount, sentTxs[0].BalanceAfter)
	}
	if sentTxs[0].RelatedUserID == nil || *sentTxs[0].RelatedUserID != recipient.ID {
		t.Fatal("sender entry does not reference the recipient")
	}

	recvTxs, err := ledger.History(ctx, recipient.ID, 10)
	if err != nil {
		t.Fatalf("recipient history: %v", err)
	}
	if len(recvTxs) != 1 || recvTxs[0].Type != domain.TxTransferReceived {
		t.Fatalf("recipient history = %+v; want one transfer_received entry", recvTxs)
	}
	if recvTxs[0].BalanceAfter != 800 || recvTxs[0].Amount != 300 {
		t.Fatalf("recipient entry amount=%d balance_after=%d; want 300/800", recvTxs[0].Amount, recvTxs[0].BalanceAfter)
	}
	if recvTxs[0].RelatedUserID == nil || *recvTxs[0].RelatedUserID != sender.ID {
		t.Fatal("recipient entry does not reference the sender")
	}
}

func TestTransfer_InsufficientFundsIsNoOp(t *testing.T) {
	db := connectTestDB(t)
	ctx := context.Background()

	sender := createAccount(t, db, 100)
	recipient := createAccount(t, db, 0)

	transfers := service.NewTransferService(db)
	err := transfers.Transfer(ctx, sender.ID, service.ByEmail(recipient.Email), 300)
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("err = %v; want ErrInsufficientFunds", err)
	}

	ledger := service.NewLedgerService(db)
	if b, _ := ledger.GetBalance(ctx, sender.ID); b != 100 {
		t.Fatalf("sender balance changed to %d on failed transfer", b)
	}
	if b, _ := ledger.GetBalance(ctx, recipient.ID); b != 0 {
		t.Fatalf("recipient balance changed to %d on failed transfer", b)
	}
	if txs, _ := ledger.History(ctx, sender.ID, 10); len(txs) != 0 {
		t.Fatalf("failed transfer appended %d ledger entries", len(txs))
	}
}

func TestTransfer_RejectsSelfAndUnknown(t *testing.T) {
	db := connectTestDB(t)
	ctx := context.Background()

	sender := createAccount(t, db, 1000)
	transfers := service.NewTransferService(db)

	if err := transfers.Transfer(ctx, sender.ID, service.ByEmail(sender.Email), 100); !errors.Is(err, domain.ErrSelfTransfer) {
		t.Fatalf("self transfer err = %v; want ErrSelfTransfer", err)
	}
	if err := transfers.Transfer(ctx, sender.ID, service.ByCard("0000000000"), 100); !errors.Is(err, domain.ErrRecipientNotFound) {
		t.Fatalf("unknown card err = %v; want ErrRecipientNotFound", err)
	}
	if err := transfers.Transfer(ctx, sender.ID, service.ByEmail(sender.Email), 0); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("zero amount err = %v; want ErrInvalidAmount", err)
	}

	ledger := service.NewLedgerService(db)
	if b, _ := ledger.GetBalance(ctx, sender.ID); b != 1000 {
		t.Fatalf("balance changed to %d after rejected transfers", b)
	}
}

func TestLedger_DebitCredit(t *testing.T) {
	db := connectTestDB(t)
	ctx := context.Background()

	rider := createAccount(t, db, 500)
	ledger := service.NewLedgerService(db)

	balance, err := ledger.Debit(ctx, rider.ID, 200, domain.TxFareDebit, nil)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if balance != 300 {
		t.Fatalf("balance after debit = %d; want 300", balance)
	}

	if _, err := ledger.Debit(ctx, rider.ID, 1000, domain.TxFareDebit, nil); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("overdraft err = %v; want ErrInsufficientFunds", err)
	}
	if b, _ := ledger.GetBalance(ctx, rider.ID); b != 300 {
		t.Fatalf("balance changed to %d on failed debit", b)
	}

	balance, err = ledger.Credit(ctx, rider.ID, 50, domain.TxTransferReceived, nil)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if balance != 350 {
		t.Fatalf("balance after credit = %d; want 350", balance)
	}

	// each successful mutation appended exactly one entry
	txs, _ := ledger.History(ctx, rider.ID, 10)
	if len(txs) != 2 {
		t.Fatalf("history has %d entries; want 2", len(txs))
	}
	if txs[0].BalanceAfter != 350 || txs[1].BalanceAfter != 300 {
		t.Fatalf("balance_after sequence = [%d %d]; want [350 300]", txs[0].BalanceAfter, txs[1].BalanceAfter)
	}
}

func TestEnsureCard_Idempotent(t *testing.T) {
	db := connectTestDB(t)
	ctx := context.Background()

	a := createAccount(t, db, 0)
	b := createAccount(t, db, 0)
	cards := service.NewCardService(db, 0)

	first, err := cards.EnsureCard(ctx, a.ID)
	if err != nil {
		t.Fatalf("ensure card: %v", err)
	}
	second, err := cards.EnsureCard(ctx, a.ID)
	if err != nil {
		t.Fatalf("ensure card again: %v", err)
	}
	if first != second {
		t.Fatalf("EnsureCard returned %s then %s for the same account", first, second)
	}

	other, err := cards.EnsureCard(ctx, b.ID)
	if err != nil {
		t.Fatalf("ensure card for second account: %v", err)
	}
	if other == first {
		t.Fatalf("two accounts share card number %s", first)
	}
}

// captureSink records emitted push payloads without a live connection.
type captureSink struct {
	notifications []domain.Notification
	rfidEvents    []domain.RfidEvent
}

func (s *captureSink) DeliverNotification(_ int64, n domain.Notification) bool {
	s.notifications = append(s.notifications, n)
	return true
}

func (s *captureSink) DeliverRfidEvent(_ int64, e domain.RfidEvent) bool {
	s.rfidEvents = append(s.rfidEvents, e)
	return true
}

func newFareService(db *pgxpool.Pool, sink service.EventSink) *service.FareService {
	trips := service.FixedTripLookup{
		Entry: service.Trip{StationID: "STN-001", StationName: "Angulana"},
		Exit:  service.Trip{StationID: "STN-014", StationName: "Galle", Fare: 150},
	}
	return service.NewFareService(db, trips, sink)
}

func TestFareGate_BoardThenExit(t *testing.T) {
	db := connectTestDB(t)
	ctx := context.Background()

	rider := createAccount(t, db, 200)
	sink := &captureSink{}
	fares := newFareService(db, sink)
	scan := domain.ScanEvent{UID: "04A1B2C3", ReaderID: "READER-01"}

	// first scan boards for free
	if err := fares.HandleScan(ctx, rider.ID, scan); err != nil {
		t.Fatalf("boarding scan: %v", err)
	}

	ledger := service.NewLedgerService(db)
	if b, _ := ledger.GetBalance(ctx, rider.ID); b != 200 {
		t.Fatalf("balance after boarding = %d; want 200", b)
	}
	accounts := repository.NewAccountRepository(db)
	if a, _ := accounts.GetByID(ctx, rider.ID); !a.Boarded {
		t.Fatal("account not marked boarded after entry scan")
	}
	if txs, _ := ledger.History(ctx, rider.ID, 10); len(txs) != 0 {
		t.Fatalf("boarding appended %d ledger entries; want 0", len(txs))
	}
	if len(sink.notifications) != 1 || len(sink.rfidEvents) != 1 {
		t.Fatalf("boarding emitted %d notifications / %d rfid events; want 1/1", len(sink.notifications), len(sink.rfidEvents))
	}
	if sink.rfidEvents[0].EventType != domain.RfidEntry {
		t.Fatalf("event type = %s; want %s", sink.rfidEvents[0].EventType, domain.RfidEntry)
	}

	// second scan exits and charges the fare
	if err := fares.HandleScan(ctx, rider.ID, scan); err != nil {
		t.Fatalf("exit scan: %v", err)
	}

	if b, _ := ledger.GetBalance(ctx, rider.ID); b != 50 {
		t.Fatalf("balance after exit = %d; want 50", b)
	}
	if a, _ := accounts.GetByID(ctx, rider.ID); a.Boarded {
		t.Fatal("account still boarded after exit scan")
	}

	txs, _ := ledger.History(ctx, rider.ID, 10)
	if len(txs) != 1 {
		t.Fatalf("exit appended %d ledger entries; want 1", len(txs))
	}
	if txs[0].Type != domain.TxFareDebit || txs[0].Amount != -150 || txs[0].BalanceAfter != 50 {
		t.Fatalf("fare entry = %+v; want fare_debit -150 balance_after 50", txs[0])
	}
	if sink.rfidEvents[1].EventType != domain.RfidExit {
		t.Fatalf("event type = %s; want %s", sink.rfidEvents[1].EventType, domain.RfidExit)
	}
}

func TestFareGate_ClampsBalanceAtZero(t *testing.T) {
	db := connectTestDB(t)
	ctx := context.Background()

	rider := createAccount(t, db, 100)
	sink := &captureSink{}
	fares := newFareService(db, sink)
	scan := domain.ScanEvent{UID: "04A1B2C3", ReaderID: "READER-01"}

	if err := fares.HandleScan(ctx, rider.ID, scan); err != nil {
		t.Fatalf("boarding scan: %v", err)
	}
	if err := fares.HandleScan(ctx, rider.ID, scan); err != nil {
		t.Fatalf("exit scan: %v", err)
	}

	ledger := service.NewLedgerService(db)
	if b, _ := ledger.GetBalance(ctx, rider.ID); b != 0 {
		t.Fatalf("balance after underfunded exit = %d; want 0", b)
	}

	txs, _ := ledger.History(ctx, rider.ID, 10)
	if len(txs) != 1 || txs[0].BalanceAfter != 0 {
		t.Fatalf("fare entry = %+v; want balance_after 0", txs)
	}
}

func TestFareGate_UnknownAccount(t *testing.T) {
	db := connectTestDB(t)

	sink := &captureSink{}
	fares := newFareService(db, sink)

	err := fares.HandleScan(context.Background(), -1, domain.ScanEvent{UID: "x", ReaderID: "y"})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("err = %v; want ErrAccountNotFound", err)
	}
	if len(sink.notifications) != 0 {
		t.Fatal("failed scan emitted a notification")
	}
}
