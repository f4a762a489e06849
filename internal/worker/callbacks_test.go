package worker_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smsrelay/smsrelay/internal/device"
	"github.com/smsrelay/smsrelay/internal/job"
	"github.com/smsrelay/smsrelay/internal/notify"
	"github.com/smsrelay/smsrelay/internal/worker"
)

func newTestQueue(t *testing.T) *job.Service {
	t.Helper()

	devices := device.NewInMemoryRepository()
	err := devices.Create(context.Background(), &device.Device{
		DeviceID:  "phone-001",
		APIKey:    "key",
		Active:    true,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	return job.NewService(job.NewInMemoryRepository(), devices, nil)
}

func terminalJobWithCallback(t *testing.T, jobs *job.Service, url string) int64 {
	t.Helper()

	ctx := context.Background()

	id, err := jobs.Enqueue(ctx, job.EnqueueInput{
		DeviceID:    "phone-001",
		PhoneNumber: "+31612345678",
		Message:     "hello",
		CallbackURL: url,
	})
	require.NoError(t, err)

	require.NoError(t, jobs.ReportStatus(ctx, job.StatusUpdate{
		JobID: id, DeviceID: "phone-001", Status: job.StatusDelivered,
	}))

	return id
}

func testNotifier(name string) *notify.Notifier {
	return notify.NewNotifier(notify.NewClient(notify.ClientConfig{
		Name:            name,
		Timeout:         2 * time.Second,
		MaxRetries:      1,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     20 * time.Millisecond,
	}))
}

func TestCallbackDispatcher_DeliversAndMarks(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	jobs := newTestQueue(t)
	terminalJobWithCallback(t, jobs, server.URL)

	dispatcher := worker.NewCallbackDispatcher(jobs, testNotifier("ok"), 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	dispatcher.Run(ctx)

	assert.Equal(t, int32(1), calls.Load(), "each callback fires exactly once")

	due, err := jobs.PendingCallbacks(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, due, "delivered callback should be marked notified")
}

func TestCallbackDispatcher_MarksRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	jobs := newTestQueue(t)
	terminalJobWithCallback(t, jobs, server.URL)

	dispatcher := worker.NewCallbackDispatcher(jobs, testNotifier("reject"), 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	dispatcher.Run(ctx)

	due, err := jobs.PendingCallbacks(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, due, "rejected callback must not be retried forever")
}

func TestRequeuer_ReturnsStaleClaims(t *testing.T) {
	jobs := newTestQueue(t)

	ctx := context.Background()

	id, err := jobs.Enqueue(ctx, job.EnqueueInput{
		DeviceID:    "phone-001",
		PhoneNumber: "+31612345678",
		Message:     "hello",
	})
	require.NoError(t, err)

	claimed, err := jobs.Claim(ctx, "phone-001", 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	// Negative TTL makes the fresh claim immediately stale.
	requeuer := worker.NewRequeuer(jobs, 10*time.Millisecond, -time.Second, zerolog.Nop())

	runCtx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	requeuer.Run(runCtx)

	j, err := jobs.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, job.StatusPending, j.Status)
}
