package audithandler

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrrecords/internal/domain/audit"
	"hrrecords/internal/domain/auth"
	"hrrecords/internal/transport/http/middleware"
)

type fakeEvents struct {
	events     []audit.Event
	err        error
	lastFilter audit.Filter
	lastLimit  int
}

func (f *fakeEvents) Count(_ context.Context, _ audit.Filter) (int, error) {
	return len(f.events), nil
}

func (f *fakeEvents) List(_ context.Context, filter audit.Filter, _ bool, limit, _ int) ([]audit.Event, error) {
	f.lastFilter = filter
	f.lastLimit = limit
	return f.events, f.err
}

func router(events EventLister, role string) http.Handler {
	h := NewHandler(events, auth.StaticPermissions{}, zerolog.Nop(), "ar")
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if role != "" {
				req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: "u1", RoleName: role}))
			}
			next.ServeHTTP(w, req)
		})
	})
	h.RegisterRoutes(r)
	return r
}

func TestListEventsRequiresAuditPermission(t *testing.T) {
	rec := httptest.NewRecorder()
	router(&fakeEvents{}, auth.RoleHR).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListEventsPassesFilter(t *testing.T) {
	events := &fakeEvents{events: []audit.Event{{ID: "e1", Action: "employee.create", EntityType: "employee"}}}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/audit/events?action=employee.create&entityId=abc&limit=10", nil)
	router(events, auth.RoleAdmin).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))
	assert.Equal(t, "employee.create", events.lastFilter.Action)
	assert.Equal(t, "abc", events.lastFilter.EntityID)
	assert.Equal(t, 10, events.lastLimit)
}

func TestListEventsHidesStorageError(t *testing.T) {
	rec := httptest.NewRecorder()
	router(&fakeEvents{err: errors.New("relation audit_events does not exist")}, auth.RoleAdmin).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "audit_events does not exist")
}

func TestExportEventsWritesCSV(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	events := &fakeEvents{events: []audit.Event{{ID: "e1", ActorID: "u1", Action: "employee.delete", EntityType: "employee", EntityID: "x", CreatedAt: created}}}
	rec := httptest.NewRecorder()
	router(events, auth.RoleAdmin).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "employee.delete", rows[1][2])
	assert.Equal(t, "2024-05-01T09:30:00Z", rows[1][7])
	assert.Equal(t, exportLimit, events.lastLimit)
}
