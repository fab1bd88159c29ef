package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and verifies the HMAC-signed bearer tokens that
// carry a user id as their subject.
type TokenManager struct {
	issuer     string
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewTokenManager(issuer string, signingKey []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{
		issuer:     issuer,
		signingKey: signingKey,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Issue signs a token for userID and returns it with its expiry.
func (m *TokenManager) Issue(userID int64) (string, time.Time, error) {
	tokenUUID, err := uuid.NewRandom()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate id: %w", err)
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        tokenUUID.String(),
		Issuer:    m.issuer,
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature, issuer and expiry of token and returns the
// user id it was issued for. Every failure wraps ErrInvalidToken, expired
// tokens additionally wrap jwt.ErrTokenExpired.
func (m *TokenManager) Verify(token string) (int64, error) {
	t, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.signingKey, nil
		},
		jwt.WithIssuer(m.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := t.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, fmt.Errorf("%w: unexpected claims type", ErrInvalidToken)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("%w: malformed subject %q", ErrInvalidToken, claims.Subject)
	}
	return userID, nil
}
