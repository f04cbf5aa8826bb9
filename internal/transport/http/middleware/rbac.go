package middleware

import (
	"context"
	"net/http"

	"hrrecords/internal/platform/i18n"
	"hrrecords/internal/transport/http/api"
)

type PermissionStore interface {
	HasPermission(ctx context.Context, role, permission string) (bool, error)
}

func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := GetLanguage(r, i18n.Arabic)
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", i18n.T(lang, i18n.MsgUnauthorized), GetRequestID(r.Context()))
				return
			}

			allowed, err := store.HasPermission(r.Context(), user.RoleName, permission)
			if err != nil {
				api.Fail(w, http.StatusInternalServerError, "permission_error", i18n.T(lang, i18n.MsgInternal), GetRequestID(r.Context()))
				return
			}
			if !allowed {
				api.Fail(w, http.StatusForbidden, "forbidden", i18n.T(lang, i18n.MsgForbidden), GetRequestID(r.Context()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth only checks that a user is signed in.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			lang := GetLanguage(r, i18n.Arabic)
			api.Fail(w, http.StatusUnauthorized, "unauthorized", i18n.T(lang, i18n.MsgUnauthorized), GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
