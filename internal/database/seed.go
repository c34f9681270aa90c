package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// SeedOptions controls the initial admin account and site URL written by Seed.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	SiteURL       string
}

func (o SeedOptions) withDefaults() SeedOptions {
	if o.AdminEmail == "" {
		o.AdminEmail = "admin@quillpress.local"
	}
	if o.AdminPassword == "" {
		o.AdminPassword = "admin"
	}
	if o.SiteURL == "" {
		o.SiteURL = "http://localhost:8080"
	}
	return o
}

// Seed populates an empty database with a default admin user and makes sure
// the site settings row exists. Safe to call on every start.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	opts = opts.withDefaults()

	if _, err := db.ExecContext(ctx, `
		INSERT INTO site_settings (id, site_url, admin_email)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO NOTHING`, opts.SiteURL, opts.AdminEmail,
	); err != nil {
		return fmt.Errorf("seed site settings: %w", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO users (email, username, password_hash, first_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
	`, opts.AdminEmail, "admin", string(hash), "Admin", "admin")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user", "email", opts.AdminEmail)
	return nil
}
