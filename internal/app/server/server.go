package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"hrrecords/internal/domain/audit"
	"hrrecords/internal/domain/auth"
	"hrrecords/internal/domain/employee"
	"hrrecords/internal/platform/cache"
	"hrrecords/internal/platform/config"
	cryptoutil "hrrecords/internal/platform/crypto"
	"hrrecords/internal/platform/db"
	"hrrecords/internal/platform/jobs"
	"hrrecords/internal/platform/metrics"
	"hrrecords/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
	Jobs   *jobs.Service
	Log    zerolog.Logger
}

// New connects to Postgres, applies migrations and the admin seed when
// enabled, and wires every service into the router.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	services, err := NewServices(cfg, pool, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &App{
		Config: cfg,
		DB:     pool,
		Router: NewRouter(cfg, logger, services),
		Jobs:   jobs.New(pool, cfg.HousekeepingInterval, cfg.IdempotencyTTL, services.Metrics, logger),
		Log:    logger,
	}, nil
}

// Services is everything the router dispatches to.
type Services struct {
	Auth        *auth.Service
	Employees   *employee.Service
	Audit       *audit.Service
	Idempotency *middleware.IdempotencyStore
	Exporter    employee.Exporter
	Metrics     *metrics.Collector
	Pinger      Pinger
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func NewServices(cfg config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (Services, error) {
	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		return Services{}, err
	}
	listCache, err := cache.New[string, []employee.Employee](cfg.ListCacheSize)
	if err != nil {
		return Services{}, err
	}
	collector := metrics.New()
	auditService := audit.New(pool)

	return Services{
		Auth:        auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.SessionTTL, crypto, logger),
		Employees:   employee.NewService(employee.NewStore(pool, crypto), listCache, auditService, collector, logger),
		Audit:       auditService,
		Idempotency: middleware.NewIdempotencyStore(pool, cfg.IdempotencyTTL),
		Exporter:    employee.Exporter{FontPath: cfg.PDFFontPath},
		Metrics:     collector,
		Pinger:      pool,
	}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
// Housekeeping jobs run alongside the server for the same lifetime.
func (a *App) Run(ctx context.Context) error {
	if a.Jobs != nil {
		a.Jobs.Start(ctx)
	}
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info().Str("addr", a.Config.Addr).Msg("hr records server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	a.Log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}
