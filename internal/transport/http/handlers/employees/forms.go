package employeehandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrrecords/internal/domain/employee"
	"hrrecords/internal/domain/form"
	"hrrecords/internal/platform/i18n"
	"hrrecords/internal/transport/http/api"
	"hrrecords/internal/transport/http/middleware"
	"hrrecords/internal/transport/http/shared"
)

// handleValidate runs the schema without saving, so a form can show field
// errors before it submits.
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	lang := middleware.GetLanguage(r, h.Language)

	var in employee.FormInput
	if err := shared.DecodeJSON(r, &in); err != nil {
		shared.FailDecode(w, err, lang, requestID)
		return
	}
	state := h.Forms.Check(in, lang)
	if state.Status == form.StatusFailed {
		writeState(w, http.StatusUnprocessableEntity, state, requestID)
		return
	}
	api.Success(w, state, requestID)
}

func (h *Handler) handleFormCreate(w http.ResponseWriter, r *http.Request) {
	h.submitForm(w, r, form.ModeCreate, "")
}

func (h *Handler) handleFormUpdate(w http.ResponseWriter, r *http.Request) {
	h.submitForm(w, r, form.ModeEdit, chi.URLParam(r, "id"))
}

func (h *Handler) submitForm(w http.ResponseWriter, r *http.Request, mode form.Mode, id string) {
	requestID := middleware.GetRequestID(r.Context())
	lang := middleware.GetLanguage(r, h.Language)

	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.FailDecode(w, err, lang, requestID)
			return
		}
		api.Fail(w, http.StatusBadRequest, "malformed_body", i18n.T(lang, i18n.MsgMalformedBody), requestID)
		return
	}

	in := form.ParseValues(r.PostForm)
	state := h.Forms.Submit(r.Context(), actorFrom(r), mode, id, in, lang)
	switch {
	case state.Status == form.StatusSucceeded && mode == form.ModeCreate:
		writeState(w, http.StatusCreated, state, requestID)
	case state.Status == form.StatusSucceeded:
		writeState(w, http.StatusOK, state, requestID)
	case state.Code == i18n.MsgInvalidData:
		writeState(w, http.StatusUnprocessableEntity, state, requestID)
	case state.Code == i18n.MsgEmployeeNotFound:
		writeState(w, http.StatusNotFound, state, requestID)
	default:
		writeState(w, http.StatusInternalServerError, state, requestID)
	}
}

// writeState answers with the form state itself so the page can render
// the toast, the field errors and the redirect.
func writeState(w http.ResponseWriter, status int, state form.State, requestID string) {
	api.WriteJSON(w, status, api.Envelope{
		Success:   state.Status != form.StatusFailed,
		Data:      state,
		RequestID: requestID,
	})
}

type optionGroups struct {
	MaritalStatus     []i18n.Option      `json:"maritalStatus"`
	HiringType        []i18n.Option      `json:"hiringType"`
	Administration    []i18n.Option      `json:"administration"`
	RelationshipType  []i18n.Option      `json:"relationshipType"`
	Dir               string             `json:"dir"`
	DefaultFormValues employee.FormInput `json:"defaults"`
}

func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r, h.Language)
	api.Success(w, optionGroups{
		MaritalStatus:     i18n.Options(i18n.GroupMaritalStatus, lang),
		HiringType:        i18n.Options(i18n.GroupHiringType, lang),
		Administration:    i18n.Options(i18n.GroupAdministration, lang),
		RelationshipType:  i18n.Options(i18n.GroupRelationshipType, lang),
		Dir:               i18n.Dir(lang),
		DefaultFormValues: form.DefaultInput(),
	}, middleware.GetRequestID(r.Context()))
}
