package middleware

import (
	"net/http"

	"hrrecords/internal/platform/i18n"
	"hrrecords/internal/platform/requestctx"
)

// Language resolves the display language from ?lang= or Accept-Language and
// stores it on the request context.
func Language(fallback string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := i18n.FromRequest(r, fallback)
			w.Header().Set("Content-Language", lang)
			w.Header().Add("Vary", "Accept-Language")
			next.ServeHTTP(w, r.WithContext(requestctx.WithLanguage(r.Context(), lang)))
		})
	}
}

func GetLanguage(r *http.Request, fallback string) string {
	return requestctx.GetLanguage(r.Context(), fallback)
}
