package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"hrrecords/internal/platform/i18n"
	"hrrecords/internal/transport/http/api"
)

// maxSniffBytes bounds how much of a sign-in body is read to find the
// username.
const maxSniffBytes = 64 << 10

type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*limiter)

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(l *limiter) {
		if fn != nil {
			l.key = fn
		}
	}
}

func withClock(now func() time.Time) RateLimitOption {
	return func(l *limiter) { l.now = now }
}

// RateLimit allows limit requests per window per caller. Signed-in callers
// are keyed by user id, everyone else by client IP.
func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	l := newLimiter(limit, window, actorOrIPKey, opts...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.allow(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// SensitiveMutationRateLimit adds tighter budgets on top of RateLimit:
// sign-in and MFA calls get a quarter of baseLimit per IP and per username,
// employee writes get half of it per actor.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	authLimit := max(baseLimit/4, 1)
	byIP := newLimiter(authLimit, window, clientIPKey, opts...)
	byUsername := newLimiter(authLimit, window, AuthFieldOrIPKey("username"), opts...)
	byActor := newLimiter(max(baseLimit/2, 1), window, actorOrIPKey, opts...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch sensitiveRateScope(r) {
			case sensitiveScopeAuth:
				if !byIP.allow(w, r) || !byUsername.allow(w, r) {
					return
				}
			case sensitiveScopeActor:
				if !byActor.allow(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthFieldOrIPKey keys sign-in attempts by a JSON body field such as the
// username, so one account cannot be brute forced from many addresses.
func AuthFieldOrIPKey(field string) RateLimitKeyFunc {
	field = strings.TrimSpace(field)
	if field == "" {
		field = "username"
	}
	return func(r *http.Request) string {
		if value := sniffJSONField(r, field); value != "" {
			return field + ":" + strings.ToLower(value)
		}
		return clientIPKey(r)
	}
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return clientIPKey(r)
}

// ClientIP is the caller address recorded on audit events.
func ClientIP(r *http.Request) string {
	return clientIPKey(r)
}

// clientIPKey prefers the first X-Forwarded-For hop when it parses as an
// address, then X-Real-IP, then the socket peer.
func clientIPKey(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); first != "" {
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}
	if ip, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return ip.String()
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
		return host
	}
	return remote
}

type bucket struct {
	hits  int
	reset time.Time
}

type limiter struct {
	limit  int
	window time.Duration
	key    RateLimitKeyFunc
	now    func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	nextSweep time.Time
}

func newLimiter(limit int, window time.Duration, key RateLimitKeyFunc, opts ...RateLimitOption) *limiter {
	l := &limiter{
		limit:   limit,
		window:  window,
		key:     key,
		now:     time.Now,
		buckets: map[string]*bucket{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// take counts one hit for key and reports the hits so far and when the
// window resets. Expired buckets are dropped at most once per window.
func (l *limiter) take(key string) (int, time.Time) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) {
		for k, b := range l.buckets {
			if now.After(b.reset) {
				delete(l.buckets, k)
			}
		}
		l.nextSweep = now.Add(l.window)
	}

	b, ok := l.buckets[key]
	if !ok || now.After(b.reset) {
		b = &bucket{reset: now.Add(l.window)}
		l.buckets[key] = b
	}
	b.hits++
	return b.hits, b.reset
}

func (l *limiter) allow(w http.ResponseWriter, r *http.Request) bool {
	if l.limit <= 0 {
		return true
	}
	key := l.key(r)
	if key == "" {
		key = clientIPKey(r)
	}
	hits, reset := l.take(key)
	resetIn := secondsUntil(reset, l.now())

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(l.limit-hits, 0)))
	h.Set("X-RateLimit-Reset", strconv.Itoa(resetIn))
	if hits <= l.limit {
		return true
	}

	h.Set("Retry-After", strconv.Itoa(max(resetIn, 1)))
	log.Warn().
		Str("key", key).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("limit", l.limit).
		Dur("window", l.window).
		Msg("rate limit exceeded")
	lang := GetLanguage(r, i18n.Arabic)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", i18n.T(lang, i18n.MsgRateLimited), GetRequestID(r.Context()))
	return false
}

// secondsUntil rounds up so a partly elapsed second still counts.
func secondsUntil(t, now time.Time) int {
	d := t.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// sniffJSONField reads a top-level string field from a JSON body and
// restores the body for the handler.
func sniffJSONField(r *http.Request, field string) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxSniffBytes))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), r.Body))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var fields map[string]json.RawMessage
	if json.Unmarshal(raw, &fields) != nil {
		return ""
	}
	var value string
	if json.Unmarshal(fields[field], &value) != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

type sensitiveScope string

const (
	sensitiveScopeNone  sensitiveScope = ""
	sensitiveScopeAuth  sensitiveScope = "auth"
	sensitiveScopeActor sensitiveScope = "actor"
)

var authRoutes = map[string]bool{
	"/auth/login":       true,
	"/auth/mfa/setup":   true,
	"/auth/mfa/enable":  true,
	"/auth/mfa/disable": true,
}

func sensitiveRateScope(r *http.Request) sensitiveScope {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return sensitiveScopeNone
	}

	path := "/" + strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/v1"), "/")
	switch {
	case authRoutes[path]:
		return sensitiveScopeAuth
	case path == "/employees/validate":
		return sensitiveScopeNone
	case path == "/employees", strings.HasPrefix(path, "/employees/"):
		return sensitiveScopeActor
	}
	return sensitiveScopeNone
}
