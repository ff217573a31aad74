package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/triplan/internal/models"
	"github.com/mmynk/triplan/internal/storage"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*models.User)}
}

func (m *memUsers) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.Email] = user
	return nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func newTestAuthenticator() *PasswordAuthenticator {
	a := NewPasswordAuthenticator(newMemUsers())
	a.cost = bcrypt.MinCost
	return a
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes email and defaults display name", func(t *testing.T) {
		a := newTestAuthenticator()
		user, err := a.Register(ctx, "  Alice@Example.com ", "", "password123")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "alice", user.DisplayName)
		assert.NotEqual(t, "password123", user.PasswordHash)
	})

	t.Run("rejects duplicates case-insensitively", func(t *testing.T) {
		a := newTestAuthenticator()
		_, err := a.Register(ctx, "bob@example.com", "Bob", "password123")
		require.NoError(t, err)
		_, err = a.Register(ctx, "BOB@example.com", "Bob", "password123")
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"short password", "carol@example.com", "short", ErrWeakPassword},
		{"not an address", "carol", "password123", ErrInvalidEmail},
		{"display name form", "Carol <carol@example.com>", "password123", ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestAuthenticator().Register(ctx, tt.email, "", tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	a := newTestAuthenticator()
	registered, err := a.Register(ctx, "dave@example.com", "Dave", "password123")
	require.NoError(t, err)

	user, err := a.Authenticate(ctx, "DAVE@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = a.Authenticate(ctx, "dave@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Authenticate(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestJWTManager(t *testing.T) {
	user := &models.User{ID: "u-1", Email: "erin@example.com"}
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate(user)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, models.UserRef{ID: "u-1", Email: "erin@example.com"}, claims.Ref())

	t.Run("expired", func(t *testing.T) {
		m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { m.now = time.Now }()
		_, err := m.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTManager("other-secret", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := m.Validate("")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u-1"})
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Validate(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
