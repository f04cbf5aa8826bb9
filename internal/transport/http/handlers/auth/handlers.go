package authhandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"hrrecords/internal/domain/auth"
	"hrrecords/internal/platform/i18n"
	"hrrecords/internal/transport/http/api"
	"hrrecords/internal/transport/http/middleware"
	"hrrecords/internal/transport/http/shared"
)

// Authenticator is the part of auth.Service the handlers call.
type Authenticator interface {
	Login(ctx context.Context, username, password, mfaCode string) (auth.Session, error)
	Logout(ctx context.Context, user auth.UserContext) error
	Me(ctx context.Context, userID string) (auth.User, error)
	SetupMFA(ctx context.Context, user auth.UserContext) (auth.MFASetup, error)
	EnableMFA(ctx context.Context, user auth.UserContext, code string) error
	DisableMFA(ctx context.Context, user auth.UserContext, code string) error
}

type Handler struct {
	Auth     Authenticator
	Log      zerolog.Logger
	Language string
}

func NewHandler(authenticator Authenticator, logger zerolog.Logger, defaultLanguage string) *Handler {
	return &Handler{Auth: authenticator, Log: logger, Language: defaultLanguage}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/auth/logout", h.HandleLogout)
		r.Get("/auth/me", h.HandleMe)
		r.Post("/auth/mfa/setup", h.HandleMFASetup)
		r.Post("/auth/mfa/enable", h.HandleMFAEnable)
		r.Post("/auth/mfa/disable", h.HandleMFADisable)
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	lang := middleware.GetLanguage(r, h.Language)

	var payload loginRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.FailDecode(w, err, lang, requestID)
		return
	}

	session, err := h.Auth.Login(r.Context(), payload.Username, payload.Password, payload.MFACode)
	if err != nil {
		h.fail(w, err, lang, requestID)
		return
	}
	api.Success(w, session, requestID)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if err := h.Auth.Logout(r.Context(), user); err != nil {
		h.Log.Warn().Err(err).Str("user_id", user.UserID).Msg("logout session revoke failed")
	}
	api.Success(w, map[string]string{"status": "logged_out"}, middleware.GetRequestID(r.Context()))
}

// HandleMe returns the signed-in user; the UI shows its display name.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	me, err := h.Auth.Me(r.Context(), user.UserID)
	if err != nil {
		h.fail(w, err, middleware.GetLanguage(r, h.Language), requestID)
		return
	}
	api.Success(w, me, requestID)
}

func (h *Handler) HandleMFASetup(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	setup, err := h.Auth.SetupMFA(r.Context(), user)
	if err != nil {
		h.fail(w, err, middleware.GetLanguage(r, h.Language), requestID)
		return
	}
	api.Success(w, setup, requestID)
}

func (h *Handler) HandleMFAEnable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, true)
}

func (h *Handler) HandleMFADisable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, false)
}

func (h *Handler) toggleMFA(w http.ResponseWriter, r *http.Request, enable bool) {
	requestID := middleware.GetRequestID(r.Context())
	lang := middleware.GetLanguage(r, h.Language)
	user, _ := middleware.GetUser(r.Context())

	var payload mfaCodeRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.FailDecode(w, err, lang, requestID)
		return
	}

	var err error
	status := "enabled"
	if enable {
		err = h.Auth.EnableMFA(r.Context(), user, payload.Code)
	} else {
		status = "disabled"
		err = h.Auth.DisableMFA(r.Context(), user, payload.Code)
	}
	if err != nil {
		h.fail(w, err, lang, requestID)
		return
	}
	api.Success(w, map[string]string{"status": status}, requestID)
}

func (h *Handler) fail(w http.ResponseWriter, err error, lang, requestID string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", i18n.T(lang, i18n.MsgInvalidCredentials), requestID)
	case errors.Is(err, auth.ErrMFARequired):
		api.Fail(w, http.StatusUnauthorized, "mfa_required", i18n.T(lang, i18n.MsgMFARequired), requestID)
	case errors.Is(err, auth.ErrMFAInvalid):
		api.Fail(w, http.StatusBadRequest, "mfa_invalid", i18n.T(lang, i18n.MsgMFAInvalid), requestID)
	case errors.Is(err, auth.ErrMFAUnavailable), errors.Is(err, auth.ErrMFANotSetUp):
		api.Fail(w, http.StatusBadRequest, "mfa_unavailable", i18n.T(lang, i18n.MsgMFAUnavailable), requestID)
	case errors.Is(err, auth.ErrUserNotFound):
		api.Fail(w, http.StatusUnauthorized, "unauthorized", i18n.T(lang, i18n.MsgUnauthorized), requestID)
	default:
		h.Log.Error().Err(err).Str("request_id", requestID).Msg("auth request failed")
		api.Fail(w, http.StatusInternalServerError, "internal_error", i18n.T(lang, i18n.MsgInternal), requestID)
	}
}
