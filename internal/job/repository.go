package job

import (
	"context"
	"time"
)

// StatusUpdate describes a device's status report for one of its jobs.
type StatusUpdate struct {
	JobID    int64
	DeviceID string
	Status   string
	// ErrorMessage is recorded alongside failure reports when present.
	ErrorMessage *string
}

// Repository defines the interface for job persistence.
type Repository interface {
	// Create persists a new pending job and assigns its ID.
	Create(ctx context.Context, job *Job) error

	// Get retrieves a job by ID. Returns ErrJobNotFound if absent.
	Get(ctx context.Context, id int64) (*Job, error)

	// Claim atomically selects up to limit eligible jobs for the device and
	// transitions them pending -> claimed in the same operation. Eligible
	// means status pending and the scheduled-time gate satisfied. Results
	// are ordered by priority descending, then creation time ascending.
	Claim(ctx context.Context, deviceID string, limit int) ([]*Job, error)

	// UpdateStatus applies a device's status report. The job id and owning
	// device are matched in a single statement; no row matched returns
	// ErrJobNotFound. Side effects: sent_at is set on the first transition
	// to sent, delivered_at on the first transition to delivered, and the
	// error message is recorded when present.
	UpdateStatus(ctx context.Context, update StatusUpdate) error

	// RequeueStale returns jobs claimed before the cutoff to pending so an
	// unreported claim is re-dispatched instead of stranded. Reports how
	// many jobs were requeued.
	RequeueStale(ctx context.Context, cutoff time.Time) (int64, error)

	// PendingCallbacks retrieves terminal jobs that carry a callback URL
	// and have not been notified yet.
	PendingCallbacks(ctx context.Context, limit int) ([]*Job, error)

	// MarkNotified records that the job's callback was delivered.
	MarkNotified(ctx context.Context, id int64) error
}
