package utils

import (
	"errors"
	"fmt"
	"time"

	appErrors "spacelink-gateway/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by gateway bearer tokens. Subject holds the account id.
type Claims struct {
	Username     string `json:"username"`
	Organization string `json:"org"`
	Role         string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs an HS256 token valid from issuedAt for ttl.
func GenerateAccessToken(claims Claims, secret string, issuedAt time.Time, ttl time.Duration) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("jwt secret is not configured")
	}

	expiresAt := issuedAt.Add(ttl)
	claims.IssuedAt = jwt.NewNumericDate(issuedAt)
	claims.NotBefore = jwt.NewNumericDate(issuedAt)
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// ValidateToken verifies signature and expiry. Expired tokens return
// ErrTokenExpired, anything else that fails returns ErrTokenInvalid.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", appErrors.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, appErrors.ErrTokenInvalid
	}

	return claims, nil
}
