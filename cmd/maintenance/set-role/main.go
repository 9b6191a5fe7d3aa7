package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ehotel/hotel-backend/internal/config"
	"github.com/ehotel/hotel-backend/internal/database"
	"github.com/ehotel/hotel-backend/internal/models"
	"github.com/joho/godotenv"
)

// set-role promotes or demotes an account, e.g. to create the first STAFF user:
//
//	go run ./cmd/maintenance/set-role -user desk@example.com -role STAFF
func main() {
	var (
		dbURLFlag string
		user      string
		roleFlag  string
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.StringVar(&user, "user", "", "User id or email")
	flag.StringVar(&roleFlag, "role", string(models.RoleStaff), "STAFF, CUSTOMER or GUEST")
	flag.Parse()

	_ = godotenv.Load()

	role := models.UserRole(strings.ToUpper(strings.TrimSpace(roleFlag)))
	if !role.IsValid() {
		log.Fatalf("invalid role %q (must be STAFF, CUSTOMER or GUEST)", roleFlag)
	}
	if strings.TrimSpace(user) == "" {
		log.Fatal("-user is required")
	}

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	updated, err := database.NewUserRepository(db).SetRole(ctx, strings.TrimSpace(user), role)
	if errors.Is(err, database.ErrNotFound) {
		log.Fatalf("no user with id or email %q", user)
	}
	if err != nil {
		log.Fatalf("failed to update role: %v", err)
	}

	fmt.Printf("User %s (%s) is now %s\n", updated.ID, updated.Email, updated.Role)
}
