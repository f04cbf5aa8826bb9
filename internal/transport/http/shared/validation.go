package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"hrrecords/internal/domain/employee"
	"hrrecords/internal/platform/i18n"
	"hrrecords/internal/transport/http/api"
)

var ErrEmptyBody = errors.New("request body is empty")

// DecodeJSON reads one JSON document into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	return nil
}

// FailDecode answers a body that could not be decoded: 413 when it tripped
// BodyLimit, 400 otherwise.
func FailDecode(w http.ResponseWriter, err error, lang, requestID string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", i18n.T(lang, i18n.MsgPayloadTooLarge), requestID)
		return
	}
	api.Fail(w, http.StatusBadRequest, "malformed_body", i18n.T(lang, i18n.MsgMalformedBody), requestID)
}

// FailValidation answers with the field -> message map the form renders
// next to each input, plus the ordered issue list.
func FailValidation(w http.ResponseWriter, status int, verr *employee.ValidationError, lang, requestID string) {
	api.FailWithDetails(
		w,
		status,
		"validation_error",
		i18n.T(lang, i18n.MsgInvalidData),
		map[string]any{"fields": verr.Fields(), "issues": verr.Issues},
		requestID,
	)
}
