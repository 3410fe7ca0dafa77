package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Create(ctx, "a", 7, time.Minute))
	id, err := s.GetUserID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	now = now.Add(time.Minute)
	_, err = s.GetUserID(ctx, "a")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, s.Create(ctx, "b", 8, time.Hour))
	require.NoError(t, s.Delete(ctx, "b"))
	_, err = s.GetUserID(ctx, "b")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreCreateSweepsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Create(ctx, "short", 1, time.Minute))
	require.NoError(t, s.Create(ctx, "long", 2, time.Hour))

	// "short" is never looked up again, so only Create can drop it.
	now = now.Add(2 * time.Minute)
	require.NoError(t, s.Create(ctx, "new", 3, time.Hour))

	assert.Len(t, s.sessions, 2)
	assert.NotContains(t, s.sessions, "short")
	id, err := s.GetUserID(ctx, "long")
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestTokensIssueVerifyRevoke(t *testing.T) {
	ctx := context.Background()
	tokens := NewTokens("test-secret", time.Hour, NewMemoryStore())

	tok, err := tokens.Issue(ctx, 42)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.ID)

	userID, err := tokens.Verify(ctx, tok.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	require.NoError(t, tokens.Revoke(ctx, tok.Value))
	_, err = tokens.Verify(ctx, tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensRejectForeignAndExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tokens := NewTokens("test-secret", time.Hour, store)

	other := NewTokens("other-secret", time.Hour, store)
	foreign, err := other.Issue(ctx, 1)
	require.NoError(t, err)
	_, err = tokens.Verify(ctx, foreign.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tok, err := tokens.Issue(ctx, 1)
	require.NoError(t, err)
	tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tokens.Verify(ctx, tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1", ID: tok.ID})
	raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Verify(ctx, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequireToken(t *testing.T) {
	ctx := context.Background()
	tokens := NewTokens("test-secret", time.Hour, NewMemoryStore())
	tok, err := tokens.Issue(ctx, 5)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", RequireToken(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserIDFromContext(c)})
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + tok.Value, http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + tok.Value, http.StatusOK},
		{"lowercase scheme", "bearer " + tok.Value, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"user_id":5}`, w.Body.String())
			}
		})
	}
}
