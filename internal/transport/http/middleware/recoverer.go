package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"hrrecords/internal/platform/i18n"
	"hrrecords/internal/transport/http/api"
)

func Recoverer(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error().
					Interface("panic", rec).
					Str("request_id", GetRequestID(r.Context())).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("request panicked")
				lang := GetLanguage(r, i18n.Arabic)
				api.Fail(w, http.StatusInternalServerError, "internal_error", i18n.T(lang, i18n.MsgInternal), GetRequestID(r.Context()))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
