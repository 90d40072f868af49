package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"whisperbox/internal/models"
)

func newTestAuthService(secret string, ttl time.Duration) *authService {
	s := NewAuthService(secret, ttl).(*authService)
	s.cost = bcrypt.MinCost
	return s
}

func TestAuthService_HashAndCompare(t *testing.T) {
	s := newTestAuthService("secret", time.Hour)

	hash, err := s.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, s.ComparePassword(hash, "correct horse"))
	assert.False(t, s.ComparePassword(hash, "battery staple"))
	assert.False(t, s.ComparePassword("", "correct horse"))
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	s := newTestAuthService("secret", time.Hour)
	user := &models.User{ID: 42, Username: "alice"}

	token, expiresAt, err := s.IssueToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := s.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestAuthService_ParseToken_Rejects(t *testing.T) {
	s := newTestAuthService("secret", time.Hour)
	user := &models.User{ID: 1, Username: "bob"}

	t.Run("wrong secret", func(t *testing.T) {
		other := newTestAuthService("other", time.Hour)
		token, _, err := other.IssueToken(user)
		require.NoError(t, err)
		_, err = s.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := newTestAuthService("secret", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, _, err := past.IssueToken(user)
		require.NoError(t, err)
		_, err = s.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := &models.Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.ParseToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
