package jwt

import (
	"errors"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

// Claims is the payload expected from the external identity provider.
// The subject carries the user id.
type Claims struct {
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	Privileges []string `json:"privileges"`
	jwt.RegisteredClaims
}

var (
	secretMu sync.RWMutex
	secret   = []byte("your-super-secret-key-change-in-production")
)

// SetSecret replaces the HMAC key used to verify tokens. Empty values are ignored.
func SetSecret(s string) {
	if s == "" {
		return
	}
	secretMu.Lock()
	secret = []byte(s)
	secretMu.Unlock()
}

// GetSecretKey returns the current HMAC key.
func GetSecretKey() []byte {
	secretMu.RLock()
	defer secretMu.RUnlock()
	return secret
}

// ValidateToken parses and validates an HS256 token.
func ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return GetSecretKey(), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
