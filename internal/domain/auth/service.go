package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog"

	cryptoutil "hrrecords/internal/platform/crypto"
)

const mfaIssuer = "HR Records"

type Service struct {
	Store  StoreAPI
	Secret string
	TTL    time.Duration
	Crypto *cryptoutil.Service
	Log    zerolog.Logger
	Now    func() time.Time
}

func NewService(store StoreAPI, secret string, ttl time.Duration, crypto *cryptoutil.Service, logger zerolog.Logger) *Service {
	return &Service{Store: store, Secret: secret, TTL: ttl, Crypto: crypto, Log: logger, Now: time.Now}
}

// Login checks the username and password (and the TOTP code when the user
// enabled MFA) and opens a session.
func (s *Service) Login(ctx context.Context, username, password, mfaCode string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < MinPasswordLength {
		return Session{}, ErrInvalidCredentials
	}
	creds, err := s.Store.FindActiveUser(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := CheckPassword(creds.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	if creds.MFAEnabled {
		if mfaCode == "" {
			return Session{}, ErrMFARequired
		}
		secret, err := s.mfaSecret(creds.MFASecretEnc)
		if err != nil || secret == "" || !totp.Validate(mfaCode, secret) {
			return Session{}, ErrMFAInvalid
		}
	}

	sessionID, err := NewSessionID()
	if err != nil {
		return Session{}, err
	}
	expires := s.Now().Add(s.TTL)
	if err := s.Store.CreateSession(ctx, creds.ID, HashToken(sessionID), expires); err != nil {
		return Session{}, err
	}
	token, err := GenerateToken(s.Secret, Claims{
		UserID:      creds.ID,
		Username:    creds.Username,
		DisplayName: creds.DisplayName,
		RoleName:    creds.Role,
		SessionID:   sessionID,
	}, s.TTL)
	if err != nil {
		return Session{}, err
	}
	if err := s.Store.UpdateLastLogin(ctx, creds.ID); err != nil {
		s.Log.Warn().Err(err).Str("user_id", creds.ID).Msg("update last_login failed")
	}
	return Session{Token: token, ExpiresAt: expires, User: creds.User}, nil
}

func (s *Service) Logout(ctx context.Context, user UserContext) error {
	if user.SessionID == "" {
		return nil
	}
	return s.Store.RevokeSession(ctx, user.UserID, HashToken(user.SessionID))
}

// SessionActive reports whether the session behind a token is still open.
func (s *Service) SessionActive(ctx context.Context, userID, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	return s.Store.SessionValid(ctx, userID, HashToken(sessionID))
}

func (s *Service) Me(ctx context.Context, userID string) (User, error) {
	return s.Store.GetUser(ctx, userID)
}

func (s *Service) CreateUser(ctx context.Context, username, password, displayName, role string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, ErrUsernameRequired
	}
	if len(password) < MinPasswordLength {
		return User{}, ErrPasswordTooShort
	}
	if !ValidRole(role) {
		return User{}, ErrUnknownRole
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = username
	}
	hash, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}
	return s.Store.CreateUser(ctx, username, strings.TrimSpace(displayName), hash, role)
}

func (s *Service) SetupMFA(ctx context.Context, user UserContext) (MFASetup, error) {
	if !s.Crypto.Configured() {
		return MFASetup{}, ErrMFAUnavailable
	}
	account := user.Username
	if account == "" {
		account = user.UserID
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      mfaIssuer,
		AccountName: account,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return MFASetup{}, err
	}
	encrypted, err := s.Crypto.EncryptString(key.Secret())
	if err != nil {
		return MFASetup{}, err
	}
	if err := s.Store.UpdateMFASecret(ctx, user.UserID, encrypted); err != nil {
		return MFASetup{}, err
	}
	return MFASetup{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

func (s *Service) EnableMFA(ctx context.Context, user UserContext, code string) error {
	return s.toggleMFA(ctx, user, code, true)
}

func (s *Service) DisableMFA(ctx context.Context, user UserContext, code string) error {
	return s.toggleMFA(ctx, user, code, false)
}

func (s *Service) toggleMFA(ctx context.Context, user UserContext, code string, enabled bool) error {
	if !s.Crypto.Configured() {
		return ErrMFAUnavailable
	}
	secretEnc, err := s.Store.GetMFASecret(ctx, user.UserID)
	if err != nil || len(secretEnc) == 0 {
		return ErrMFANotSetUp
	}
	secret, err := s.mfaSecret(secretEnc)
	if err != nil {
		return ErrMFAInvalid
	}
	if !totp.Validate(code, secret) {
		return ErrMFAInvalid
	}
	return s.Store.SetMFAEnabled(ctx, user.UserID, enabled)
}

func (s *Service) mfaSecret(secretEnc []byte) (string, error) {
	if !s.Crypto.Configured() {
		return string(secretEnc), nil
	}
	return s.Crypto.DecryptString(secretEnc)
}
