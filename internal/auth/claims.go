package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Subject is the identity carried by every token the API issues.
const Subject = "api-client"

// DefaultTokenTTL is used when GenerateToken is given a non-positive TTL.
const DefaultTokenTTL = 24 * time.Hour

// ErrTokenInvalid is returned for any token that fails verification:
// malformed, wrongly signed, expired or carrying the wrong subject.
var ErrTokenInvalid = errors.New("auth: invalid token")

// Claims are the JWT claims of an API token.
type Claims struct {
	jwt.RegisteredClaims
}

// Token is a signed access token and its lifetime.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
	TTL         time.Duration
}

// GenerateToken signs a new access token for the API client identity.
func GenerateToken(secret string, ttl time.Duration) (*Token, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	return &Token{AccessToken: signed, ExpiresAt: expiresAt, TTL: ttl}, nil
}

// ParseToken validates a token's signature, algorithm, expiry and subject.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(Subject),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
