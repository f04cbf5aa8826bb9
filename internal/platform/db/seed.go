package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"hrrecords/internal/domain/auth"
	"hrrecords/internal/platform/config"
	"hrrecords/internal/platform/querier"
)

// Seed creates the first administrator so a fresh install can sign in.
// An existing user with the same username is left untouched.
func Seed(ctx context.Context, q querier.Querier, cfg config.Config) error {
	username := strings.TrimSpace(cfg.SeedAdminUsername)
	if username == "" || strings.TrimSpace(cfg.SeedAdminPassword) == "" {
		log.Info().Msg("seed skipped: no admin credentials configured")
		return nil
	}
	if len(cfg.SeedAdminPassword) < auth.MinPasswordLength {
		return auth.ErrPasswordTooShort
	}

	var id string
	err := q.QueryRow(ctx, "SELECT id FROM users WHERE username = $1", username).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	displayName := strings.TrimSpace(cfg.SeedAdminName)
	if displayName == "" {
		displayName = username
	}
	if _, err := q.Exec(ctx, `
    INSERT INTO users (username, display_name, password_hash, role)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (username) DO NOTHING
  `, username, displayName, hash, auth.RoleAdmin); err != nil {
		return err
	}
	log.Info().Str("username", username).Msg("seeded admin user")
	return nil
}
