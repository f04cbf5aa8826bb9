package auth

import (
	"context"
	"time"
)

type StoreAPI interface {
	FindActiveUser(ctx context.Context, username string) (Credentials, error)
	GetUser(ctx context.Context, userID string) (User, error)
	CreateUser(ctx context.Context, username, displayName, passwordHash, role string) (User, error)
	CreateSession(ctx context.Context, userID, tokenHash string, expires time.Time) error
	SessionValid(ctx context.Context, userID, tokenHash string) (bool, error)
	RevokeSession(ctx context.Context, userID, tokenHash string) error
	UpdateLastLogin(ctx context.Context, userID string) error
	UpdateMFASecret(ctx context.Context, userID string, secretEnc []byte) error
	GetMFASecret(ctx context.Context, userID string) ([]byte, error)
	SetMFAEnabled(ctx context.Context, userID string, enabled bool) error
}
