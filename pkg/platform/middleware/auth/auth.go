// Package auth authenticates operator requests and exposes the acting user id
// to downstream handlers. Lifecycle actions are attributed to this user on the
// workflow engine.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"convoy/pkg/requestcontext"
)

// OperatorClaims represents the claims we expect from the token validator.
type OperatorClaims struct {
	UserID string
	Name   string
}

// Validator validates bearer tokens presented by operators.
type Validator interface {
	ValidateToken(tokenString string) (*OperatorClaims, error)
}

type contextKey string

const claimsKey contextKey = "operator_claims"

// WithClaims returns a context carrying the operator claims.
func WithClaims(ctx context.Context, claims *OperatorClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// UserID returns the authenticated operator's user id, or "" if the request
// was not authenticated.
func UserID(ctx context.Context) string {
	if c, ok := ctx.Value(claimsKey).(*OperatorClaims); ok {
		return c.UserID
	}
	return ""
}

// Middleware rejects requests without a valid bearer token and stores the
// operator claims in the request context.
func Middleware(validator Validator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := bearerToken(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// HMACValidator validates HS256-signed operator tokens.
type HMACValidator struct {
	key []byte
}

// NewHMACValidator creates a validator for tokens signed with the given key.
func NewHMACValidator(key string) *HMACValidator {
	return &HMACValidator{key: []byte(key)}
}

// ValidateToken parses and verifies the token and extracts operator claims.
// The subject claim carries the user id.
func (v *HMACValidator) ValidateToken(tokenString string) (*OperatorClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", token.Claims)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	name, _ := claims["name"].(string)
	return &OperatorClaims{UserID: sub, Name: name}, nil
}
