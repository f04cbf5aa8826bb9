package requestctx

import "context"

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	languageKey  ctxKey = "language"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, languageKey, lang)
}

// GetLanguage returns the negotiated display language, or fallback when the
// request carried none.
func GetLanguage(ctx context.Context, fallback string) string {
	if value, ok := ctx.Value(languageKey).(string); ok && value != "" {
		return value
	}
	return fallback
}
