package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ehotel/hotel-backend/internal/config"
	"github.com/ehotel/hotel-backend/internal/database"
	"github.com/joho/godotenv"
)

// Child tables first so the listing reads in dependency order
var tables = []string{
	"complaints",
	"bookings",
	"rooms",
	"audit_logs",
	"login_attempts",
	"users",
}

func main() {
	var (
		dbURLFlag string
		keepUsers bool
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.BoolVar(&keepUsers, "keep-users", false, "Keep user accounts and only clear hotel data")
	flag.Parse()

	// Optional .env in the working directory keeps secrets off the command line
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     5,
		MaxIdleConnections: 2,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	targets := tables
	if keepUsers {
		targets = tables[:len(tables)-1]
	}

	ctx := context.Background()
	fmt.Println("Connected to database. Truncating tables...")

	query := "TRUNCATE TABLE "
	for i, t := range targets {
		if i > 0 {
			query += ", "
		}
		query += t
	}
	query += " RESTART IDENTITY CASCADE"

	if _, err := db.ExecContext(ctx, query); err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	fmt.Println("Data cleared. Post-clear row counts:")
	for _, t := range tables {
		var count int
		if err := db.GetContext(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM %s", t)); err != nil {
			fmt.Printf("  %s: error: %v\n", t, err)
			continue
		}
		fmt.Printf("  %s: %d\n", t, count)
	}
}
