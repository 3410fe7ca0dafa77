package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers bad signatures, expired tokens and revoked sessions.
var ErrInvalidToken = errors.New("invalid token")

// Token is an issued access token.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Tokens issues HS256 access tokens and tracks them in a SessionStore so
// they can be revoked before they expire.
type Tokens struct {
	secret   []byte
	ttl      time.Duration
	sessions SessionStore
	now      func() time.Time
}

func NewTokens(secret string, ttl time.Duration, sessions SessionStore) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, sessions: sessions, now: time.Now}
}

// Issue signs a token for userID and registers its jti.
func (t *Tokens) Issue(ctx context.Context, userID int64) (Token, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	if err := t.sessions.Create(ctx, claims.ID, userID, t.ttl); err != nil {
		return Token{}, fmt.Errorf("register token: %w", err)
	}
	return Token{Value: value, ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (t *Tokens) parse(value string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrInvalidToken)
	}
	return claims, nil
}

// Verify returns the user id of a valid, unrevoked token.
func (t *Tokens) Verify(ctx context.Context, value string) (int64, error) {
	claims, err := t.parse(value)
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	registered, err := t.sessions.GetUserID(ctx, claims.ID)
	if errors.Is(err, ErrSessionNotFound) {
		return 0, fmt.Errorf("%w: revoked", ErrInvalidToken)
	}
	if err != nil {
		return 0, err
	}
	if registered != userID {
		return 0, fmt.Errorf("%w: subject mismatch", ErrInvalidToken)
	}
	return userID, nil
}

// Revoke drops the session of a token. Invalid tokens are ignored.
func (t *Tokens) Revoke(ctx context.Context, value string) error {
	claims, err := t.parse(value)
	if err != nil {
		return nil
	}
	return t.sessions.Delete(ctx, claims.ID)
}
