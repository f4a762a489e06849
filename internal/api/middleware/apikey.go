package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/smsrelay/smsrelay/internal/api/models"
	"github.com/smsrelay/smsrelay/internal/device"
)

// APIKeyHeader carries the device credential. Header lookup is
// case-insensitive per net/http canonicalization.
const APIKeyHeader = "X-Api-Key"

// deviceIDKey is the context key for the authenticated device identifier.
type deviceIDKey struct{}

// Authenticator resolves an API key to a device. *device.Service
// satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, apiKey string) (*device.Device, error)
}

// APIKeyAuth creates authentication middleware for device-facing endpoints.
// Missing or unknown keys yield 401; a known key for a disabled device
// yields 403.
func APIKeyAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)

			d, err := auth.Authenticate(r.Context(), apiKey)
			if err != nil {
				switch {
				case errors.Is(err, device.ErrMissingAPIKey):
					models.WriteError(w, http.StatusUnauthorized, "api key required")
				case errors.Is(err, device.ErrInvalidAPIKey):
					models.WriteError(w, http.StatusUnauthorized, "invalid api key")
				case errors.Is(err, device.ErrDeviceDisabled):
					models.WriteError(w, http.StatusForbidden, "device is not active")
				default:
					models.WriteError(w, http.StatusInternalServerError, "internal server error")
				}
				return
			}

			ctx := context.WithValue(r.Context(), deviceIDKey{}, d.DeviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetDeviceID retrieves the authenticated device identifier from the
// context. Returns an empty string if not authenticated.
func GetDeviceID(ctx context.Context) string {
	if id, ok := ctx.Value(deviceIDKey{}).(string); ok {
		return id
	}
	return ""
}
