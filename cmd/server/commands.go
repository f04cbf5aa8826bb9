package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"hrrecords/internal/app/server"
	"hrrecords/internal/domain/auth"
	"hrrecords/internal/platform/config"
	cryptoutil "hrrecords/internal/platform/crypto"
	"hrrecords/internal/platform/db"
	"hrrecords/internal/platform/jobs"
	"hrrecords/internal/platform/logging"
)

func loadConfig() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	logger := logging.New(cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, logger, err
	}
	return cfg, logger, nil
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			app, err := server.New(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("server not wired: %w", err)
			}
			defer app.Close()
			return app.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides APP_ADDR")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and the admin seed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := db.Connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := db.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			if cfg.RunSeed {
				return db.Seed(cmd.Context(), pool, cfg)
			}
			return nil
		},
	}
}

func newCreateUserCmd() *cobra.Command {
	var username, password, displayName, role string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
			if err != nil {
				return err
			}
			pool, err := db.Connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.SessionTTL, crypto, logger)
			user, err := svc.CreateUser(cmd.Context(), username, password, displayName, role)
			if err != nil {
				return err
			}
			logger.Info().Str("user_id", user.ID).Str("username", user.Username).Str("role", user.Role).Msg("user created")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "sign-in name")
	cmd.Flags().StringVar(&password, "password", "", "password, at least 6 characters")
	cmd.Flags().StringVar(&displayName, "name", "", "display name shown in the header")
	cmd.Flags().StringVar(&role, "role", auth.RoleHR, "admin, hr or viewer")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newHousekeepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "housekeep",
		Short: "Purge expired sessions and stale idempotency keys once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := db.Connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			removed, err := jobs.New(pool, 0, cfg.IdempotencyTTL, nil, logger).RunNow(cmd.Context())
			if err != nil {
				return err
			}
			for job, n := range removed {
				logger.Info().Str("job_type", job).Int64("removed", n).Msg("housekeeping done")
			}
			return nil
		},
	}
}
