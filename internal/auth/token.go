package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers bad signatures, malformed tokens and expired
	// tokens alike. Callers must not be able to tell which check failed.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrSecretMissing indicates the service was built without a signing key.
	ErrSecretMissing = errors.New("token signing secret is not configured")
)

// DefaultTokenTTL is the fixed lifetime of issued tokens.
const DefaultTokenTTL = 24 * time.Hour

// TokenService issues and verifies HS256 signed bearer tokens carrying a
// user id as the subject claim. The secret is held for the process lifetime;
// it is never re-read from the environment per call.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: []byte(strings.TrimSpace(secret)),
		ttl:    ttl,
	}
}

// Issue signs a token asserting userID until now+ttl.
func (s *TokenService) Issue(userID string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSecretMissing
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the subject user id.
// Every failure mode maps to ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSecretMissing
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// FromAuthorizationHeader extracts the bearer token from an Authorization
// header value. Missing header and malformed scheme are reported with the
// same error as a failed verification.
func FromAuthorizationHeader(header string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", ErrInvalidToken
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}
