package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"hrrecords/internal/domain/auth"
	"hrrecords/internal/platform/config"
	"hrrecords/internal/transport/http/api"
	audithandler "hrrecords/internal/transport/http/handlers/audit"
	authhandler "hrrecords/internal/transport/http/handlers/auth"
	employeehandler "hrrecords/internal/transport/http/handlers/employees"
	"hrrecords/internal/transport/http/middleware"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, svc Services) http.Handler {
	perms := auth.StaticPermissions{}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Language(cfg.DefaultLanguage))
	router.Use(middleware.Logger(logger, svc.Metrics))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, svc.Auth))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Pinger == nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := svc.Pinger.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && svc.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, svc.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authhandler.NewHandler(svc.Auth, logger, cfg.DefaultLanguage).RegisterRoutes(r)
		employeehandler.NewHandler(svc.Employees, svc.Exporter, svc.Idempotency, perms, logger, cfg.DefaultLanguage).RegisterRoutes(r)
		audithandler.NewHandler(svc.Audit, perms, logger, cfg.DefaultLanguage).RegisterRoutes(r)
	})

	return router
}
