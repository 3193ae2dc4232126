package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/savor-pos/api/internal/config"
	"github.com/savor-pos/api/internal/database"
	"github.com/savor-pos/api/internal/enum"
	"github.com/savor-pos/api/internal/service"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a development database: schema, one branch, an admin user, a hall
// with a few tables, and a small menu.
func main() {
	schemaPath := flag.String("schema", "internal/database/schema.sql", "path to schema file")
	adminEmail := flag.String("admin-email", "admin@savor.local", "admin user email")
	adminPassword := flag.String("admin-password", "admin123", "admin user password")
	flag.Parse()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: connect database: %v", err)
	}
	defer pool.Close()

	schema, err := os.ReadFile(*schemaPath)
	if err != nil {
		log.Fatalf("FATAL: read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("FATAL: apply schema: %v", err)
	}
	log.Println("INFO: schema applied")

	q := database.New(pool)

	branch, err := q.CreateBranch(ctx, database.CreateBranchParams{
		Name:    "Main Branch",
		Address: service.TextOrNil("12 Canal Road"),
		Phone:   service.TextOrNil("+92-300-0000000"),
	})
	if err != nil {
		log.Fatalf("FATAL: create branch: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(*adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("FATAL: hash password: %v", err)
	}
	admin, err := q.CreateUser(ctx, database.CreateUserParams{
		BranchID:       branch.ID,
		Email:          *adminEmail,
		HashedPassword: string(hashed),
		FullName:       "Administrator",
		Role:           enum.UserRoleAdmin,
	})
	if err != nil {
		log.Fatalf("FATAL: create admin: %v", err)
	}

	hall, err := q.CreateHall(ctx, database.CreateHallParams{BranchID: branch.ID, Name: "Main Hall"})
	if err != nil {
		log.Fatalf("FATAL: create hall: %v", err)
	}
	for i := 1; i <= 8; i++ {
		name := fmt.Sprintf("T%d", i)
		if _, err := q.CreateTable(ctx, database.CreateTableParams{
			HallID:   hall.ID,
			BranchID: branch.ID,
			Name:     name,
		}); err != nil {
			log.Fatalf("FATAL: create table %s: %v", name, err)
		}
	}

	menu := []struct {
		name     string
		category string
		price    string
	}{
		{"Chicken Biryani", "Mains", "650.00"},
		{"Beef Karahi", "Mains", "1450.00"},
		{"Chapli Kebab", "Mains", "400.00"},
		{"Garlic Naan", "Breads", "80.00"},
		{"Raita", "Sides", "100.00"},
		{"Fresh Lime", "Drinks", "150.00"},
		{"Kheer", "Desserts", "250.00"},
	}
	for _, d := range menu {
		price, err := decimal.NewFromString(d.price)
		if err != nil {
			log.Fatalf("FATAL: parse price %s: %v", d.price, err)
		}
		if _, err := q.CreateDish(ctx, database.CreateDishParams{
			BranchID: branch.ID,
			Name:     d.name,
			Category: service.TextOrNil(d.category),
			Price:    service.DecimalToNumeric(price),
		}); err != nil {
			log.Fatalf("FATAL: create dish %s: %v", d.name, err)
		}
	}

	log.Printf("INFO: seeded branch %s, admin %s", branch.ID, admin.Email)
}
