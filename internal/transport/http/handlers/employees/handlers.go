package employeehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"hrrecords/internal/domain/auth"
	"hrrecords/internal/domain/employee"
	"hrrecords/internal/domain/form"
	"hrrecords/internal/platform/i18n"
	"hrrecords/internal/transport/http/api"
	"hrrecords/internal/transport/http/middleware"
	"hrrecords/internal/transport/http/shared"
)

const createEndpoint = "employees.create"

// Records is the employee repository as the handlers see it.
type Records interface {
	form.Submitter
	Read(ctx context.Context, id string) (employee.Employee, error)
	List(ctx context.Context) ([]employee.Employee, error)
	Delete(ctx context.Context, actor employee.Actor, id string) error
}

type IdempotencyStore interface {
	Reserve(ctx context.Context, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, userID, endpoint, key, requestHash string, response json.RawMessage) error
	Release(ctx context.Context, userID, endpoint, key, requestHash string) error
}

type Handler struct {
	Records     Records
	Forms       *form.Controller
	Exporter    employee.Exporter
	Idempotency IdempotencyStore
	Perms       middleware.PermissionStore
	Log         zerolog.Logger
	Language    string
}

func NewHandler(records Records, exporter employee.Exporter, idempotency IdempotencyStore, perms middleware.PermissionStore, logger zerolog.Logger, defaultLanguage string) *Handler {
	return &Handler{
		Records:     records,
		Forms:       form.NewController(records),
		Exporter:    exporter,
		Idempotency: idempotency,
		Perms:       perms,
		Log:         logger,
		Language:    defaultLanguage,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)
	write := middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)

	r.Route("/employees", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.With(write).Post("/validate", h.handleValidate)
		r.With(read).Get("/{id}", h.handleGet)
		r.With(write).Put("/{id}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermEmployeesDelete, h.Perms)).Delete("/{id}", h.handleDelete)
		r.With(middleware.RequirePermission(auth.PermEmployeesExport, h.Perms)).Get("/{id}/pdf", h.handlePDF)
	})
	r.Route("/forms/employees", func(r chi.Router) {
		r.Use(write)
		r.Post("/", h.handleFormCreate)
		r.Post("/{id}", h.handleFormUpdate)
	})
	r.With(middleware.RequireAuth).Get("/options", h.handleOptions)
}

func actorFrom(r *http.Request) employee.Actor {
	user, _ := middleware.GetUser(r.Context())
	return employee.Actor{
		UserID:    user.UserID,
		Name:      user.DisplayName,
		RequestID: middleware.GetRequestID(r.Context()),
		IP:        middleware.ClientIP(r),
	}
}

// handleList returns the stored employees, or with ?view=table the
// localized table the listing page renders.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	lang := middleware.GetLanguage(r, h.Language)

	employees, err := h.Records.List(r.Context())
	if err != nil {
		h.fail(w, err, lang, requestID, i18n.MsgFetchFailed)
		return
	}
	if r.URL.Query().Get("view") == "table" {
		api.Success(w, map[string]any{
			"columns": employee.Columns(lang),
			"rows":    employee.BuildRows(employees, lang),
			"dir":     i18n.Dir(lang),
		}, requestID)
		return
	}
	api.Success(w, employees, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	lang := middleware.GetLanguage(r, h.Language)

	emp, err := h.Records.Read(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, lang, requestID, i18n.MsgFetchFailed)
		return
	}
	if r.URL.Query().Get("view") == "form" {
		api.Success(w, employee.ToFormInput(emp), requestID)
		return
	}
	api.Success(w, emp, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	lang := middleware.GetLanguage(r, h.Language)
	actor := actorFrom(r)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		shared.FailDecode(w, err, lang, requestID)
		return
	}
	var in employee.FormInput
	if err := shared.DecodeJSON(requestWithBody(r, body), &in); err != nil {
		shared.FailDecode(w, err, lang, requestID)
		return
	}

	key := middleware.IdempotencyKey(r.Header.Get("Idempotency-Key"))
	requestHash := middleware.RequestHash(body)
	reserved := false
	if key != "" && h.Idempotency != nil {
		stored, found, err := h.Idempotency.Reserve(r.Context(), actor.UserID, createEndpoint, key, requestHash)
		switch {
		case errors.Is(err, middleware.ErrIdempotencyConflict):
			api.Fail(w, http.StatusConflict, "idempotency_conflict", i18n.T(lang, i18n.MsgIdempotencyConflict), requestID)
			return
		case errors.Is(err, middleware.ErrIdempotencyInFlight):
			api.Fail(w, http.StatusConflict, "idempotency_in_flight", i18n.T(lang, i18n.MsgIdempotencyInFlight), requestID)
			return
		case err != nil:
			h.Log.Warn().Err(err).Str("request_id", requestID).Msg("idempotency reserve failed")
		case found:
			api.Created(w, stored, requestID)
			return
		default:
			reserved = true
		}
	}

	emp, err := h.Records.Create(r.Context(), actor, in, lang)
	if err != nil {
		if reserved {
			if err := h.Idempotency.Release(context.WithoutCancel(r.Context()), actor.UserID, createEndpoint, key, requestHash); err != nil {
				h.Log.Warn().Err(err).Str("request_id", requestID).Msg("idempotency release failed")
			}
		}
		h.fail(w, err, lang, requestID, i18n.MsgCreateFailed)
		return
	}

	if key != "" && h.Idempotency != nil {
		if raw, err := json.Marshal(emp); err == nil {
			if err := h.Idempotency.Save(r.Context(), actor.UserID, createEndpoint, key, requestHash, raw); err != nil {
				h.Log.Warn().Err(err).Str("request_id", requestID).Msg("idempotency save failed")
			}
		}
	}
	api.Created(w, emp, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	lang := middleware.GetLanguage(r, h.Language)

	var in employee.FormInput
	if err := shared.DecodeJSON(r, &in); err != nil {
		shared.FailDecode(w, err, lang, requestID)
		return
	}
	emp, err := h.Records.Update(r.Context(), actorFrom(r), chi.URLParam(r, "id"), in, lang)
	if err != nil {
		h.fail(w, err, lang, requestID, i18n.MsgUpdateFailed)
		return
	}
	api.Success(w, emp, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	lang := middleware.GetLanguage(r, h.Language)

	if err := h.Records.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err, lang, requestID, i18n.MsgDeleteFailed)
		return
	}
	api.Success(w, map[string]string{"message": i18n.T(lang, i18n.MsgEmployeeDeleted)}, requestID)
}

// fail maps repository failures onto the envelope. Storage details never
// reach the client; the service already logged them.
func (h *Handler) fail(w http.ResponseWriter, err error, lang, requestID, failedMsg string) {
	var verr *employee.ValidationError
	switch {
	case errors.As(err, &verr):
		shared.FailValidation(w, http.StatusUnprocessableEntity, verr, lang, requestID)
	case errors.Is(err, employee.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", i18n.T(lang, i18n.MsgEmployeeNotFound), requestID)
	case errors.Is(err, context.Canceled):
		h.Log.Debug().Str("request_id", requestID).Msg("client went away")
	default:
		api.Fail(w, http.StatusInternalServerError, "persistence_error", i18n.T(lang, failedMsg), requestID)
	}
}

func requestWithBody(r *http.Request, body []byte) *http.Request {
	clone := r.Clone(r.Context())
	clone.Body = io.NopCloser(bytes.NewReader(body))
	return clone
}
