package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

type memoryUsers struct {
	byEmail map[string]*models.User
	lookErr error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: map[string]*models.User{}}
}

func (m *memoryUsers) CreateUser(_ context.Context, displayName, email, hash string) (*models.User, error) {
	if _, ok := m.byEmail[email]; ok {
		return nil, storage.ErrConflict
	}
	u := models.NewUser(email, displayName, hash)
	m.byEmail[email] = u
	return u, nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if m.lookErr != nil {
		return nil, m.lookErr
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return u, nil
}

func newTestAuthenticator(users Users) *PasswordAuthenticator {
	a := NewPasswordAuthenticator(users)
	a.cost = bcrypt.MinCost
	return a
}

func TestPasswordAuthenticator(t *testing.T) {
	users := newMemoryUsers()
	a := newTestAuthenticator(users)
	ctx := context.Background()

	user, err := a.Register(ctx, "alice@example.com", "Alice", "correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid", email: "alice@example.com", password: "correct horse"},
		{name: "wrong password", email: "alice@example.com", password: "battery staple", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "bob@example.com", password: "correct horse", wantErr: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Authenticate(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)
		})
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := a.Register(ctx, "alice@example.com", "Other", "another password")
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := a.Register(ctx, "carol@example.com", "Carol", "short")
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("passwordless user cannot log in", func(t *testing.T) {
		_, err := users.CreateUser(ctx, "Dave", "dave@example.com", "")
		require.NoError(t, err)
		_, err = a.Authenticate(ctx, "dave@example.com", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("storage failure is not a credential error", func(t *testing.T) {
		users.lookErr = errors.New("database locked")
		defer func() { users.lookErr = nil }()
		_, err := a.Authenticate(ctx, "alice@example.com", "correct horse")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := models.NewUser("alice@example.com", "Alice", "")

	token, err := m.Generate(user)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)

	t.Run("expired", func(t *testing.T) {
		later := NewJWTManager("test-secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTManager("other-secret", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: user.ID}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Validate(none)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
