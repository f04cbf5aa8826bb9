package auth

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoutil "hrrecords/internal/platform/crypto"
)

type memoryUsers struct {
	users    map[string]Credentials
	sessions map[string]bool
	logins   int
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[string]Credentials{}, sessions: map[string]bool{}}
}

func (m *memoryUsers) FindActiveUser(_ context.Context, username string) (Credentials, error) {
	for _, u := range m.users {
		if u.Username == username && u.Status == UserStatusActive {
			return u, nil
		}
	}
	return Credentials{}, ErrUserNotFound
}

func (m *memoryUsers) GetUser(_ context.Context, userID string) (User, error) {
	u, ok := m.users[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u.User, nil
}

func (m *memoryUsers) CreateUser(_ context.Context, username, displayName, passwordHash, role string) (User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return User{}, ErrUsernameTaken
		}
	}
	id := "user-" + username
	u := Credentials{
		User:         User{ID: id, Username: username, DisplayName: displayName, Role: role, Status: UserStatusActive},
		PasswordHash: passwordHash,
	}
	m.users[id] = u
	return u.User, nil
}

func (m *memoryUsers) CreateSession(_ context.Context, userID, tokenHash string, _ time.Time) error {
	m.sessions[userID+"/"+tokenHash] = true
	return nil
}

func (m *memoryUsers) SessionValid(_ context.Context, userID, tokenHash string) (bool, error) {
	return m.sessions[userID+"/"+tokenHash], nil
}

func (m *memoryUsers) RevokeSession(_ context.Context, userID, tokenHash string) error {
	delete(m.sessions, userID+"/"+tokenHash)
	return nil
}

func (m *memoryUsers) UpdateLastLogin(context.Context, string) error {
	m.logins++
	return nil
}

func (m *memoryUsers) UpdateMFASecret(_ context.Context, userID string, secretEnc []byte) error {
	u := m.users[userID]
	u.MFASecretEnc = secretEnc
	u.MFAEnabled = false
	m.users[userID] = u
	return nil
}

func (m *memoryUsers) GetMFASecret(_ context.Context, userID string) ([]byte, error) {
	return m.users[userID].MFASecretEnc, nil
}

func (m *memoryUsers) SetMFAEnabled(_ context.Context, userID string, enabled bool) error {
	u := m.users[userID]
	u.MFAEnabled = enabled
	m.users[userID] = u
	return nil
}

func newAuthService(t *testing.T, store StoreAPI) *Service {
	t.Helper()
	crypto, err := cryptoutil.New("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	return NewService(store, "test-secret", time.Hour, crypto, zerolog.Nop())
}

func TestCreateUserRules(t *testing.T) {
	svc := newAuthService(t, newMemoryUsers())
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "hr", "12345", "HR", RoleHR)
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	_, err = svc.CreateUser(ctx, " ", "123456", "HR", RoleHR)
	assert.ErrorIs(t, err, ErrUsernameRequired)
	_, err = svc.CreateUser(ctx, "hr", "123456", "HR", "owner")
	assert.ErrorIs(t, err, ErrUnknownRole)

	user, err := svc.CreateUser(ctx, "hr", "123456", "", RoleHR)
	require.NoError(t, err)
	assert.Equal(t, "hr", user.DisplayName)

	_, err = svc.CreateUser(ctx, "hr", "123456", "", RoleHR)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginLogout(t *testing.T) {
	store := newMemoryUsers()
	svc := newAuthService(t, store)
	ctx := context.Background()
	_, err := svc.CreateUser(ctx, "hr.admin", "s3cret!", "مدير الموارد البشرية", RoleHR)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "hr.admin", "wrong-password", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "hr.admin", "short", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "s3cret!", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, err := svc.Login(ctx, "hr.admin", "s3cret!", "")
	require.NoError(t, err)
	assert.Equal(t, "مدير الموارد البشرية", session.User.DisplayName)
	assert.Equal(t, 1, store.logins)

	claims, err := ParseToken("test-secret", session.Token)
	require.NoError(t, err)
	active, err := svc.SessionActive(ctx, claims.UserID, claims.SessionID)
	require.NoError(t, err)
	assert.True(t, active)

	user := UserContext{UserID: claims.UserID, SessionID: claims.SessionID}
	require.NoError(t, svc.Logout(ctx, user))
	active, err = svc.SessionActive(ctx, claims.UserID, claims.SessionID)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestMFAFlow(t *testing.T) {
	store := newMemoryUsers()
	svc := newAuthService(t, store)
	ctx := context.Background()
	created, err := svc.CreateUser(ctx, "hr.admin", "s3cret!", "HR", RoleHR)
	require.NoError(t, err)
	user := UserContext{UserID: created.ID, Username: created.Username}

	assert.ErrorIs(t, svc.EnableMFA(ctx, user, "000000"), ErrMFANotSetUp)

	setup, err := svc.SetupMFA(ctx, user)
	require.NoError(t, err)
	assert.Contains(t, setup.OTPAuthURL, "otpauth://totp/")

	assert.ErrorIs(t, svc.EnableMFA(ctx, user, "not-a-code"), ErrMFAInvalid)
	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.EnableMFA(ctx, user, code))

	_, err = svc.Login(ctx, "hr.admin", "s3cret!", "")
	assert.ErrorIs(t, err, ErrMFARequired)
	_, err = svc.Login(ctx, "hr.admin", "s3cret!", "123")
	assert.ErrorIs(t, err, ErrMFAInvalid)
	_, err = svc.Login(ctx, "hr.admin", "s3cret!", code)
	require.NoError(t, err)
}

func TestMFAUnavailableWithoutKey(t *testing.T) {
	svc := NewService(newMemoryUsers(), "s", time.Hour, nil, zerolog.Nop())
	_, err := svc.SetupMFA(context.Background(), UserContext{UserID: "u1"})
	assert.ErrorIs(t, err, ErrMFAUnavailable)
}
