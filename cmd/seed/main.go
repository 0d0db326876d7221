package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"usermgmt/internal/config"
	"usermgmt/internal/db"
	"usermgmt/internal/model"
	"usermgmt/internal/repository"
)

// SeedUserData represents one entry in the seed file. Passwords are plain
// text in the file and hashed before storage.
type SeedUserData struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	Verified    bool   `json:"verified"`
}

func main() {
	seedFile := flag.String("file", "seed/users.json", "path to seed users JSON file")
	flag.Parse()

	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	users, err := loadSeedUsers(*seedFile)
	if err != nil {
		log.Fatalf("Failed to load seed users: %v", err)
	}
	log.Printf("Loaded %d users from %s", len(users), *seedFile)

	userRepo := repository.NewUserRepository(gormDB)
	ctx := context.Background()

	created, updated, err := seedUsers(ctx, userRepo, users)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Existing users updated: %d", updated)
}

// loadSeedUsers reads and parses the seed file.
func loadSeedUsers(path string) ([]SeedUserData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var users []SeedUserData
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return users, nil
}

// seedUsers upserts users by email, hashing passwords for new records.
func seedUsers(ctx context.Context, repo repository.UserRepository, users []SeedUserData) (created int, updated int, err error) {
	for _, item := range users {
		if item.Email == "" || item.Password == "" {
			log.Printf("Skipping seed entry with missing email or password")
			continue
		}

		existing, err := repo.FindByEmail(ctx, item.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, updated, fmt.Errorf("lookup %s: %w", item.Email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(item.Password), bcrypt.DefaultCost)
		if err != nil {
			return created, updated, fmt.Errorf("hash password for %s: %w", item.Email, err)
		}

		if existing == nil {
			user := &model.User{
				FirstName:       item.FirstName,
				LastName:        item.LastName,
				Email:           item.Email,
				PhoneNumber:     item.PhoneNumber,
				PasswordHash:    string(hash),
				IsEmailVerified: item.Verified,
			}
			if err := repo.Create(ctx, user); err != nil {
				return created, updated, fmt.Errorf("create %s: %w", item.Email, err)
			}
			created++
			continue
		}

		existing.FirstName = item.FirstName
		existing.LastName = item.LastName
		existing.PhoneNumber = item.PhoneNumber
		existing.PasswordHash = string(hash)
		existing.IsEmailVerified = item.Verified
		if err := repo.Update(ctx, existing); err != nil {
			return created, updated, fmt.Errorf("update %s: %w", item.Email, err)
		}
		updated++
	}
	return created, updated, nil
}
