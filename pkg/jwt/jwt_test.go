package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func sign(t *testing.T, method jwt.SigningMethod, key any, claims *Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestValidateToken(t *testing.T) {
	SetSecret("test-secret")

	valid := &Claims{
		Email:      "ops@brass.test",
		Name:       "Ops",
		Privileges: []string{"invoice:create"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	expired := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	noSubject := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"valid", sign(t, jwt.SigningMethodHS256, []byte("test-secret"), valid), nil},
		{"wrong key", sign(t, jwt.SigningMethodHS256, []byte("other"), valid), ErrInvalidToken},
		{"wrong alg", sign(t, jwt.SigningMethodHS512, []byte("test-secret"), valid), ErrInvalidToken},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte("test-secret"), expired), ErrInvalidToken},
		{"missing subject", sign(t, jwt.SigningMethodHS256, []byte("test-secret"), noSubject), ErrInvalidToken},
		{"empty", "", ErrMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token)
			if err != tt.wantErr {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && claims.Email != "ops@brass.test" {
				t.Fatalf("claims.Email = %q", claims.Email)
			}
		})
	}
}
