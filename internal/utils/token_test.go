package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func TestParseBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"lowercase scheme", "bearer tok", "tok", false},
		{"surrounding spaces", "  Bearer tok  ", "tok", false},
		{"missing token", "Bearer", "", true},
		{"wrong scheme", "Basic dXNlcjpwYXNz", "", true},
		{"empty", "", "", true},
		{"too many parts", "Bearer a b", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBearerToken(tt.header)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got token %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTokenExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)})

	got, ok := TokenExpiresAt(token)
	if !ok {
		t.Fatal("expected exp claim to be found")
	}
	if !got.Equal(exp) {
		t.Errorf("expected %v, got %v", exp, got)
	}
}

func TestTokenExpiresAt_NoClaim(t *testing.T) {
	token := signedToken(t, jwt.RegisteredClaims{Subject: "coach"})

	if _, ok := TokenExpiresAt(token); ok {
		t.Error("expected ok=false without exp claim")
	}
	if _, ok := TokenExpiresAt("opaque-token"); ok {
		t.Error("expected ok=false for a non-JWT token")
	}
}

func TestCheckTokenExpiry(t *testing.T) {
	now := time.Now()

	expired := signedToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))})
	if err := CheckTokenExpiry(expired, now); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}

	valid := signedToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))})
	if err := CheckTokenExpiry(valid, now); err != nil {
		t.Errorf("expected nil for a valid token, got %v", err)
	}

	if err := CheckTokenExpiry("opaque-token", now); err != nil {
		t.Errorf("opaque tokens must pass, got %v", err)
	}
}
