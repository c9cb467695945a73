package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("super-secret", time.Hour)

	token, err := svc.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", subject)
}

func TestTokenService_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewTokenService("right-secret", time.Hour).Issue("user-123")
	require.NoError(t, err)

	_, err = NewTokenService("wrong-secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_TamperedToken(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("super-secret", time.Hour)
	token, err := svc.Issue("user-123")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = svc.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_ExpiredToken(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("super-secret", time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	signed, err := expired.SignedString([]byte("super-secret"))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Garbage(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("super-secret", time.Hour)
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token=%q", tok)
	}
}

func TestTokenService_MissingSecret(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("  ", time.Hour)
	_, err := svc.Issue("user-123")
	assert.ErrorIs(t, err, ErrSecretMissing)
}

func TestFromAuthorizationHeader(t *testing.T) {
	t.Parallel()

	tok, err := FromAuthorizationHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	for _, header := range []string{"", "abc.def.ghi", "bearer abc", "Basic abc", "Bearer ", "Bearer    "} {
		_, err := FromAuthorizationHeader(header)
		assert.ErrorIs(t, err, ErrInvalidToken, "header=%q", header)
	}
}
