package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is returned by CheckTokenExpiry for a JWT whose exp claim
// lies in the past.
var ErrTokenExpired = errors.New("token expired")

// ParseBearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Fields(authorizationHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

// TokenExpiresAt reads the exp claim of a JWT without verifying its
// signature. The remote backend verifies the token; the client only needs to
// know whether presenting it is pointless.
//
// ok is false when the token is not a JWT or carries no exp claim.
func TokenExpiresAt(tokenString string) (exp time.Time, ok bool) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}

	expiresAt, err := token.Claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return time.Time{}, false
	}
	return expiresAt.Time, true
}

// CheckTokenExpiry returns ErrTokenExpired when tokenString is a JWT that
// expired before now. Opaque tokens always pass.
func CheckTokenExpiry(tokenString string, now time.Time) error {
	exp, ok := TokenExpiresAt(tokenString)
	if !ok {
		return nil
	}
	if !now.Before(exp) {
		return fmt.Errorf("%w at %s", ErrTokenExpired, exp.UTC().Format(time.RFC3339))
	}
	return nil
}
