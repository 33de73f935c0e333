package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/lendbook/lendbook/config"
	"github.com/lendbook/lendbook/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@lendbook.dev"
	password := "password123"
	name := "Demo User"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name, avatar_url, is_verified)
		VALUES ($1, $2, $3, '', true)
		ON CONFLICT (email) DO UPDATE SET name=EXCLUDED.name
		RETURNING id
	`, email, hash, name).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)

	now := time.Now()
	loans := []struct {
		borrower string
		amount   string
		currency string
		loanType string
		status   string
		due      time.Time
	}{
		{"Ali Hassan", "250.00", "USD", "sent", "pending", now.AddDate(0, 0, 3)},
		{"Sara Ahmed", "1200000", "IQD", "sent", "pending", now.AddDate(0, 0, 1)},
		{"Omar Khalid", "0.00150000", "BTC", "received", "pending", now.AddDate(0, 1, 0)},
		{"Layla Ibrahim", "90.00", "EUR", "sent", "paid", now.AddDate(0, 0, -10)},
		{"Yusuf Karim", "40.00", "USD", "received", "pending", now.AddDate(0, 0, -2)},
	}
	for _, l := range loans {
		if _, err := db.Exec(`
			INSERT INTO loans (user_id, borrower_name, amount, currency, loan_type, status, start_date, due_date, paid_date, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CASE WHEN $6 = 'paid' THEN now() ELSE NULL END, '')
		`, id, l.borrower, l.amount, l.currency, l.loanType, l.status, now.AddDate(0, -1, 0), l.due); err != nil {
			log.Fatalf("failed to seed loan for %s: %v", l.borrower, err)
		}
	}
	fmt.Printf("seeded %d loans\n", len(loans))
}
