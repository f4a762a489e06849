package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/smsrelay/smsrelay/internal/api/models"
	"github.com/smsrelay/smsrelay/internal/auth"
)

// operatorKey is the context key for the authenticated admin operator.
type operatorKey struct{}

// AdminAuth creates authentication middleware that validates admin JWT
// bearer tokens.
func AdminAuth(tokens *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				models.WriteError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if len(authHeader) < len(bearerPrefix) ||
				!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
				models.WriteError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			tokenString := authHeader[len(bearerPrefix):]
			operator, err := tokens.Validate(tokenString)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					models.WriteError(w, http.StatusUnauthorized, "admin token has expired")
					return
				}
				models.WriteError(w, http.StatusUnauthorized, "invalid admin token")
				return
			}

			ctx := context.WithValue(r.Context(), operatorKey{}, operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOperator retrieves the authenticated admin operator from the context.
func GetOperator(ctx context.Context) string {
	if op, ok := ctx.Value(operatorKey{}).(string); ok {
		return op
	}
	return ""
}
