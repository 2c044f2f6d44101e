package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	req := require.New(t)
	m := NewJWTManager("secret", time.Minute)

	signed, expiresAt, err := m.GenerateToken("session-1")
	req.NoError(err)
	req.NotEmpty(signed)
	req.WithinDuration(time.Now().Add(time.Minute), expiresAt, 2*time.Second)

	claims, err := m.VerifyToken(signed)
	req.NoError(err)
	req.Equal("session-1", claims.SessionID)
	req.Equal("session-1", claims.Subject)
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	req := require.New(t)
	signed, _, err := NewJWTManager("a", time.Minute).GenerateToken("s")
	req.NoError(err)

	_, err = NewJWTManager("b", time.Minute).VerifyToken(signed)
	req.Error(err)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	req := require.New(t)
	m := NewJWTManager("secret", -time.Minute)
	signed, _, err := m.GenerateToken("s")
	req.NoError(err)

	_, err = m.VerifyToken(signed)
	req.ErrorIs(err, jwt.ErrTokenExpired)
}

func TestJWTManager_RejectsMissingSession(t *testing.T) {
	req := require.New(t)
	m := NewJWTManager("secret", time.Minute)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("secret"))
	req.NoError(err)

	_, err = m.VerifyToken(signed)
	req.Error(err)
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	_, err := NewJWTManager("secret", time.Minute).VerifyToken("not-a-token")
	require.Error(t, err)
}

func TestGenerateRandomString(t *testing.T) {
	req := require.New(t)
	a := GenerateRandomString(16)
	b := GenerateRandomString(16)
	req.Len(a, 32)
	req.NotEqual(a, b)
}
