package notify_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smsrelay/smsrelay/internal/job"
	"github.com/smsrelay/smsrelay/internal/notify"
)

func strPtr(s string) *string { return &s }

func testClient(name string) *notify.Client {
	return notify.NewClient(notify.ClientConfig{
		Name:            name,
		Timeout:         2 * time.Second,
		MaxRetries:      3,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     50 * time.Millisecond,
	})
}

func TestNotifier_Deliver(t *testing.T) {
	var received notify.StatusEvent

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	delivered := time.Now().UTC()
	notifier := notify.NewNotifier(testClient("test"))

	err := notifier.Deliver(context.Background(), &job.Job{
		ID:           42,
		DeviceID:     "phone-001",
		Status:       job.StatusDelivered,
		CallbackURL:  strPtr(server.URL),
		DeliveredAt:  &delivered,
		ErrorMessage: nil,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), received.RequestID)
	assert.Equal(t, "phone-001", received.DeviceID)
	assert.Equal(t, job.StatusDelivered, received.Status)
	assert.Nil(t, received.ErrorMessage)
	assert.WithinDuration(t, delivered, received.CompletedAt, time.Second)
}

func TestNotifier_Deliver_NoCallbackURL(t *testing.T) {
	notifier := notify.NewNotifier(testClient("test"))

	err := notifier.Deliver(context.Background(), &job.Job{ID: 1, Status: job.StatusFailed})
	require.NoError(t, err)
}

func TestNotifier_Deliver_RetriesOn5xx(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := notify.NewNotifier(testClient("test-retry"))

	err := notifier.Deliver(context.Background(), &job.Job{
		ID:          1,
		DeviceID:    "phone-001",
		Status:      job.StatusFailed,
		CallbackURL: strPtr(server.URL),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load(), "should have retried until success")
}

func TestNotifier_Deliver_RejectedOn4xx(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	notifier := notify.NewNotifier(testClient("test-reject"))

	err := notifier.Deliver(context.Background(), &job.Job{
		ID:          1,
		DeviceID:    "phone-001",
		Status:      job.StatusFailed,
		CallbackURL: strPtr(server.URL),
	})
	require.ErrorIs(t, err, notify.ErrRejected)
	assert.Equal(t, int32(1), attempts.Load(), "client errors must not be retried")
}
