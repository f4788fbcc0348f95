package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"stayhub/internal/auth"
	"stayhub/internal/config"
	"stayhub/internal/database"
	"stayhub/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type ListingsFile struct {
	Listings []models.Listing `yaml:"listings"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		listingsPath  = flag.String("listings", "", "path to a yaml file with a top-level listings key")
		dbPath        = flag.String("db", "./data/stayhub.db", "path to sqlite db")
		adminEmail    = flag.String("admin-email", "", "create an admin account with this email")
		adminPassword = flag.String("admin-password", "", "password for -admin-email")
	)
	flag.Parse()

	if *listingsPath == "" && *adminEmail == "" {
		return errors.New("nothing to do: pass -listings and/or -admin-email")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *listingsPath != "" {
		if err := importListings(ctx, db, *listingsPath, &logger); err != nil {
			return err
		}
	}
	if *adminEmail != "" {
		if err := createAdmin(ctx, db, *adminEmail, *adminPassword, &logger); err != nil {
			return err
		}
	}
	return nil
}

// importListings updates listings whose id already exists and inserts the rest.
func importListings(ctx context.Context, db *database.DB, path string, logger *zerolog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read listings: %w", err)
	}
	var file ListingsFile
	if err = yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse listings: %w", err)
	}
	if len(file.Listings) == 0 {
		return errors.New("no listings in yaml")
	}
	if err = config.ValidateListings(file.Listings); err != nil {
		return err
	}

	var fresh []models.Listing
	updated := 0
	for _, l := range file.Listings {
		existing, err := db.GetListing(ctx, l.ID)
		if errors.Is(err, database.ErrNotFound) {
			fresh = append(fresh, l)
			continue
		}
		if err != nil {
			return fmt.Errorf("get listing %d: %w", l.ID, err)
		}
		if l.ImageName == "" {
			l.ImageName = existing.ImageName
		}
		if err = db.UpdateListing(ctx, &l); err != nil {
			return fmt.Errorf("update listing %d: %w", l.ID, err)
		}
		updated++
	}
	if err = db.SeedListings(ctx, fresh); err != nil {
		return err
	}

	logger.Info().Int("created", len(fresh)).Int("updated", updated).Msg("listings imported")
	return nil
}

func createAdmin(ctx context.Context, db *database.DB, email, password string, logger *zerolog.Logger) error {
	if len(password) < 8 {
		return errors.New("admin password must be at least 8 characters")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Enabled:      true,
	}
	if err := db.CreateUser(ctx, admin); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			logger.Warn().Str("email", email).Msg("account already exists, nothing created")
			return nil
		}
		return fmt.Errorf("create admin: %w", err)
	}

	logger.Info().Int64("user_id", admin.ID).Str("email", admin.Email).Msg("admin account created")
	return nil
}
