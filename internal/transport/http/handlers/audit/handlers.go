package audithandler

import (
	"context"
	"encoding/csv"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"hrrecords/internal/domain/audit"
	"hrrecords/internal/domain/auth"
	"hrrecords/internal/platform/i18n"
	"hrrecords/internal/transport/http/api"
	"hrrecords/internal/transport/http/middleware"
	"hrrecords/internal/transport/http/shared"
)

const exportLimit = 10000

// EventLister is the read side of audit.Service.
type EventLister interface {
	Count(ctx context.Context, filter audit.Filter) (int, error)
	List(ctx context.Context, filter audit.Filter, includeDetails bool, limit, offset int) ([]audit.Event, error)
}

type Handler struct {
	Events   EventLister
	Perms    middleware.PermissionStore
	Log      zerolog.Logger
	Language string
}

func NewHandler(events EventLister, perms middleware.PermissionStore, logger zerolog.Logger, defaultLanguage string) *Handler {
	return &Handler{Events: events, Perms: perms, Log: logger, Language: defaultLanguage}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermAuditRead, h.Perms))
		r.Get("/events", h.handleListEvents)
		r.Get("/events/export", h.handleExportEvents)
	})
}

func filterFrom(r *http.Request) audit.Filter {
	q := r.URL.Query()
	return audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entityType"),
		EntityID:   q.Get("entityId"),
		ActorUser:  q.Get("actorUserId"),
	}
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePage(r, 100, 500)
	includeDetails := r.URL.Query().Get("includeDetails") == "true"
	filter := filterFrom(r)

	total, err := h.Events.Count(r.Context(), filter)
	if err != nil {
		h.Log.Warn().Err(err).Str("request_id", requestID).Msg("audit count failed")
		total = -1
	}

	events, err := h.Events.List(r.Context(), filter, includeDetails, page.Limit, page.Offset)
	if err != nil {
		h.Log.Error().Err(err).Str("request_id", requestID).Msg("audit list failed")
		lang := middleware.GetLanguage(r, h.Language)
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", i18n.T(lang, i18n.MsgFetchFailed), requestID)
		return
	}

	page.WriteHeaders(w, total)
	api.Success(w, events, requestID)
}

func (h *Handler) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	events, err := h.Events.List(r.Context(), filterFrom(r), false, exportLimit, 0)
	if err != nil {
		h.Log.Error().Err(err).Str("request_id", requestID).Msg("audit export failed")
		lang := middleware.GetLanguage(r, h.Language)
		api.Fail(w, http.StatusInternalServerError, "audit_export_failed", i18n.T(lang, i18n.MsgFetchFailed), requestID)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-events.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "actor_user_id", "action", "entity_type", "entity_id", "request_id", "ip", "created_at"}); err != nil {
		h.Log.Warn().Err(err).Msg("audit export header failed")
	}
	for _, evt := range events {
		row := []string{evt.ID, evt.ActorID, evt.Action, evt.EntityType, evt.EntityID, evt.RequestID, evt.IP, evt.CreatedAt.UTC().Format(time.RFC3339)}
		if err := writer.Write(row); err != nil {
			h.Log.Warn().Err(err).Msg("audit export row failed")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.Log.Warn().Err(err).Msg("audit export flush failed")
	}
}
