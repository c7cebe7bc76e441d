package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/sharely/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// BillIDKey is the context key for the bill id carried by a valid edit token.
	BillIDKey contextKey = "bill_id"
)

// GetBillID extracts the edit token's bill id from the context.
// Returns empty string if the request carried no valid token.
func GetBillID(ctx context.Context) string {
	billID, _ := ctx.Value(BillIDKey).(string)
	return billID
}

// WithBillID returns a context carrying billID as if a valid token was sent.
func WithBillID(ctx context.Context, billID string) context.Context {
	return context.WithValue(ctx, BillIDKey, billID)
}

// BearerToken returns the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// BillToken returns an interceptor that validates edit tokens if present, but
// allows requests without one. Reads are public; the service checks
// GetBillID before applying a change.
func BillToken(tokens *auth.TokenManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if tokenString, ok := BearerToken(req.Header().Get("Authorization")); ok {
				// Validate token (ignore errors - the service rejects unauthenticated edits)
				if claims, err := tokens.Validate(tokenString); err == nil {
					ctx = WithBillID(ctx, claims.BillID)
				}
			}

			return next(ctx, req)
		}
	}
}
