package employeehandler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hrrecords/internal/platform/i18n"
	"hrrecords/internal/transport/http/api"
	"hrrecords/internal/transport/http/middleware"
)

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	lang := middleware.GetLanguage(r, h.Language)

	emp, err := h.Records.Read(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, lang, requestID, i18n.MsgFetchFailed)
		return
	}

	var buf bytes.Buffer
	if err := h.Exporter.WritePDF(&buf, emp, lang); err != nil {
		h.Log.Error().Err(err).Str("employee_id", emp.ID).Str("request_id", requestID).Msg("employee pdf failed")
		api.Fail(w, http.StatusInternalServerError, "export_failed", i18n.T(lang, i18n.MsgInternal), requestID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=employee-"+emp.ID+".pdf")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.Log.Warn().Err(err).Str("request_id", requestID).Msg("write pdf failed")
	}
}
