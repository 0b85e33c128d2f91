package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"velociti_backend/internal/db"
	"velociti_backend/internal/domain"
	"velociti_backend/internal/repository"
	"velociti_backend/internal/service"
)

// Seeds an account with a card and an opening balance, then prints a
// bearer token for it.
func main() {
	email := flag.String("email", "rider@example.com", "account email")
	name := flag.String("name", "Test Rider", "account name")
	balance := flag.Int64("balance", 1000, "opening balance")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	ctx := context.Background()
	accounts := repository.NewAccountRepository(pool)

	acct, err := accounts.GetByEmail(ctx, *email)
	if err != nil {
		acct = &domain.Account{Email: *email, Name: *name, Balance: *balance}
		if err := accounts.Create(ctx, acct); err != nil {
			log.Fatalf("create account: %v", err)
		}
	}

	cards := service.NewCardService(pool, 0)
	cardNumber, err := cards.EnsureCard(ctx, acct.ID)
	if err != nil {
		log.Fatalf("allocate card: %v", err)
	}

	service.InitJWT()
	token, err := service.GenerateJWT(acct.ID, acct.Email)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}

	fmt.Printf("account id:  %d\n", acct.ID)
	fmt.Printf("card number: %s\n", cardNumber)
	fmt.Printf("balance:     %d\n", acct.Balance)
	fmt.Printf("token:       %s\n", token)
}
