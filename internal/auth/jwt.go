// Package auth issues and checks bill edit tokens.
//
// Anyone may read a bill, but changing one requires the token handed out when
// the bill was created or imported. Tokens are HS256 JWTs scoped to a single
// bill id.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// TokenManager handles edit token generation and validation.
type TokenManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// Claims represents the custom JWT claims for a bill edit token.
type Claims struct {
	BillID string `json:"bill_id"`
	jwt.RegisteredClaims
}

// NewTokenManager creates a new token manager with the given secret and token duration.
// secretKey should be a strong random string (e.g., 32 bytes).
// A zero tokenDuration issues tokens that never expire.
func NewTokenManager(secretKey string, tokenDuration time.Duration) *TokenManager {
	return &TokenManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

// Generate creates a new edit token for the given bill.
func (m *TokenManager) Generate(billID string) (string, error) {
	now := m.now()
	claims := &Claims{
		BillID: billID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   billID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if m.tokenDuration > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.tokenDuration))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate parses and validates an edit token, returning the claims if valid.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.BillID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
