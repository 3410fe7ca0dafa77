package service

import (
	"context"
	"testing"

	dom "github.com/josenava/meal-calendar/internal/domain"
	"github.com/josenava/meal-calendar/internal/repo"
	"github.com/josenava/meal-calendar/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	s := NewUserService(repo.NewSQLiteUserRepo(testutil.SQLite(t)))
	s.cost = bcrypt.MinCost
	return s
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestUserService(t)

	u, err := s.Register(ctx, " alice ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "secret", u.PasswordHash)

	got, err := s.ValidateCredentials(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.ValidateCredentials(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.ValidateCredentials(ctx, "bob", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, dom.ErrUsernameTaken)

	_, err = s.Register(ctx, "  ", "x")
	assert.ErrorIs(t, err, dom.ErrInvalidInput)

	me, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	_, err = s.Get(ctx, u.ID+100)
	assert.ErrorIs(t, err, dom.ErrNotFound)
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("admin")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("admin")))
}
