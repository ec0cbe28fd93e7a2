package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

const (
	jwtClaimSubject = "sub"
	jwtClaimRole    = "role"
)

var ErrNoClaims = errors.New("user claims not found in context or invalid type")

// WithClaims returns ctx carrying claims the way Authenticate stores them.
func WithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}

func GetSubjectFromContext(ctx context.Context) (string, error) {
	return stringClaim(ctx, jwtClaimSubject)
}

func GetRoleFromContext(ctx context.Context) (string, error) {
	return stringClaim(ctx, jwtClaimRole)
}

func stringClaim(ctx context.Context, name string) (string, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", ErrNoClaims
	}
	raw, ok := claims[name]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", name)
	}
	value, ok := raw.(string)
	if !ok || value == "" {
		return "", fmt.Errorf("invalid type for '%s' claim: expected string, got %T", name, raw)
	}
	return value, nil
}
