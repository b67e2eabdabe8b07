package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

func newAuth(t *testing.T) (*AuthService, repository.UserRepository) {
	t.Helper()
	users := repository.NewMemory().Users()
	s := NewAuthService(users, zerolog.Nop())
	s.cost = bcrypt.MinCost
	s.now = func() time.Time { return time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) }
	return s, users
}

func TestSignupCreatesUser(t *testing.T) {
	s, users := newAuth(t)
	ctx := context.Background()

	u, err := s.Signup(ctx, "Jane Doe", "JaneDoe", "Jane@Example.com", "secret1")
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "janedoe", u.Username)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, "Jane Doe", u.DisplayName)
	assert.Zero(t, u.FollowersCount)
	assert.Zero(t, u.FollowingCount)
	assert.Zero(t, u.ArticlesCount)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	stored, err := users.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)
}

func TestSignupDuplicateEmail(t *testing.T) {
	s, _ := newAuth(t)
	ctx := context.Background()

	_, err := s.Signup(ctx, "Jane", "jane", "jane@example.com", "secret1")
	require.NoError(t, err)

	_, err = s.Signup(ctx, "Other Jane", "jane2", "JANE@example.com", "secret2")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSignupValidation(t *testing.T) {
	s, _ := newAuth(t)

	_, err := s.Signup(context.Background(), " ", "jane", "not-an-email", "123")
	require.ErrorIs(t, err, ErrValidation)

	se := err.(*ServiceError)
	assert.Contains(t, se.Fields, "displayName")
	assert.Contains(t, se.Fields, "email")
	assert.Contains(t, se.Fields, "password")
	assert.NotContains(t, se.Fields, "username")
}

func TestLoginChecksPassword(t *testing.T) {
	s, _ := newAuth(t)
	ctx := context.Background()
	created, err := s.Signup(ctx, "Jane", "jane", "jane@example.com", "secret1")
	require.NoError(t, err)

	u, err := s.Login(ctx, "jane@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = s.Login(ctx, "jane@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmailIsDeterministic(t *testing.T) {
	s, users := newAuth(t)
	ctx := context.Background()

	first, err := s.Login(ctx, "Reader.One@example.com", "anything")
	require.NoError(t, err)
	assert.Equal(t, "reader.one", first.Username)
	assert.Equal(t, "Reader.One", first.DisplayName)

	second, err := s.Login(ctx, "reader.one@example.com", "else")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, DemoUser("reader.one@example.com", time.Time{}).ID, first.ID)

	_, err = users.GetByID(ctx, first.ID)
	assert.NoError(t, err)
}

func TestLoginUserWithoutHashAcceptsAnyPassword(t *testing.T) {
	s, users := newAuth(t)
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &models.User{ID: "1", Email: "alexandra@example.com", DisplayName: "Alexandra Smith"}))

	u, err := s.Login(ctx, "alexandra@example.com", "whatever")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
}

func TestLoginRequiresCredentials(t *testing.T) {
	s, _ := newAuth(t)
	_, err := s.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrValidation)
}
