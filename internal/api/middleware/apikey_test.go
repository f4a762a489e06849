package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smsrelay/smsrelay/internal/api/middleware"
	"github.com/smsrelay/smsrelay/internal/device"
)

func createTestDeviceService(t *testing.T) (*device.Service, string) {
	t.Helper()

	service := device.NewService(device.NewInMemoryRepository())
	result, err := service.Register(context.Background(), device.RegisterInput{
		DeviceID: "phone-001",
	})
	require.NoError(t, err)

	return service, result.APIKey
}

func TestAPIKeyAuth_MissingKey(t *testing.T) {
	service, _ := createTestDeviceService(t)
	authMiddleware := middleware.APIKeyAuth(service)

	handler := authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/fetch-pending", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "api key required")
}

func TestAPIKeyAuth_InvalidKey(t *testing.T) {
	service, _ := createTestDeviceService(t)
	authMiddleware := middleware.APIKeyAuth(service)

	handler := authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/fetch-pending", http.NoBody)
	req.Header.Set(middleware.APIKeyHeader, "not-a-real-key")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid api key")
}

func TestAPIKeyAuth_DisabledDevice(t *testing.T) {
	service, apiKey := createTestDeviceService(t)
	require.NoError(t, service.SetActive(context.Background(), "phone-001", false))

	authMiddleware := middleware.APIKeyAuth(service)

	handler := authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/fetch-pending", http.NoBody)
	req.Header.Set(middleware.APIKeyHeader, apiKey)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "device is not active")
}

func TestAPIKeyAuth_ValidKey(t *testing.T) {
	service, apiKey := createTestDeviceService(t)
	authMiddleware := middleware.APIKeyAuth(service)

	var gotDeviceID string
	handler := authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDeviceID = middleware.GetDeviceID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/fetch-pending", http.NoBody)
	req.Header.Set(middleware.APIKeyHeader, apiKey)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "phone-001", gotDeviceID)
}

func TestGetDeviceID_Unset(t *testing.T) {
	assert.Empty(t, middleware.GetDeviceID(context.Background()))
}
