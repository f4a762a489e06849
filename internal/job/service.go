package job

import (
	"context"
	"fmt"
	"time"

	"github.com/ttacon/libphonenumber"

	"github.com/smsrelay/smsrelay/internal/device"
)

// DeviceGateway is the slice of the device registry the queue needs to
// validate submission targets. *device.InMemoryRepository and
// *device.PostgresRepository both satisfy it.
type DeviceGateway interface {
	GetByID(ctx context.Context, deviceID string) (*device.Device, error)
}

// EnqueueInput holds the fields accepted at submission.
type EnqueueInput struct {
	DeviceID    string
	PhoneNumber string
	Message     string
	// Priority defaults to DefaultPriority when nil. Zero is a valid
	// explicit priority.
	Priority    *int
	ScheduledAt *time.Time
	CallbackURL string
}

// Service provides job queue operations.
type Service struct {
	repo    Repository
	devices DeviceGateway
	metrics *Metrics
}

// NewService creates a new job service. metrics may be nil.
func NewService(repo Repository, devices DeviceGateway, metrics *Metrics) *Service {
	return &Service{repo: repo, devices: devices, metrics: metrics}
}

// Enqueue stores a new pending job for the target device.
// Returns device.ErrDeviceNotFound for an unknown device and
// device.ErrDeviceDisabled for an inactive one.
func (s *Service) Enqueue(ctx context.Context, input EnqueueInput) (int64, error) {
	if input.DeviceID == "" {
		return 0, ErrMissingDeviceID
	}
	if input.PhoneNumber == "" {
		return 0, ErrMissingPhone
	}
	if input.Message == "" {
		return 0, ErrMissingMessage
	}

	target, err := s.devices.GetByID(ctx, input.DeviceID)
	if err != nil {
		return 0, err
	}
	if !target.Active {
		return 0, device.ErrDeviceDisabled
	}

	priority := DefaultPriority
	if input.Priority != nil {
		priority = *input.Priority
	}

	j := &Job{
		DeviceID:    input.DeviceID,
		PhoneNumber: normalizePhone(input.PhoneNumber),
		Message:     input.Message,
		Priority:    priority,
		Status:      StatusPending,
		ScheduledAt: input.ScheduledAt,
		CreatedAt:   time.Now(),
	}
	if input.CallbackURL != "" {
		url := input.CallbackURL
		j.CallbackURL = &url
	}

	if err := s.repo.Create(ctx, j); err != nil {
		return 0, fmt.Errorf("create job: %w", err)
	}

	s.metrics.RecordEnqueued(ctx, j.DeviceID)
	return j.ID, nil
}

// Claim dispatches up to limit eligible jobs to the polling device, marking
// them claimed in the same operation. limit <= 0 uses DefaultBatchSize.
func (s *Service) Claim(ctx context.Context, deviceID string, limit int) ([]*Job, error) {
	if limit <= 0 || limit > DefaultBatchSize {
		limit = DefaultBatchSize
	}

	jobs, err := s.repo.Claim(ctx, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("claim jobs: %w", err)
	}

	s.metrics.RecordClaimed(ctx, deviceID, len(jobs))
	return jobs, nil
}

// ReportStatus applies a device's status report for one of its jobs.
// Returns ErrJobNotFound when the job does not exist or belongs to another
// device; the two cases are indistinguishable on purpose.
func (s *Service) ReportStatus(ctx context.Context, update StatusUpdate) error {
	if update.JobID <= 0 {
		return ErrMissingJobID
	}
	if update.Status == "" {
		return ErrMissingStatus
	}

	if err := s.repo.UpdateStatus(ctx, update); err != nil {
		return err
	}

	s.metrics.RecordStatus(ctx, update.DeviceID, update.Status)
	return nil
}

// Get retrieves a job by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Job, error) {
	return s.repo.Get(ctx, id)
}

// RequeueStale returns jobs claimed before the cutoff to pending.
func (s *Service) RequeueStale(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.repo.RequeueStale(ctx, cutoff)
}

// PendingCallbacks retrieves terminal jobs with an undelivered callback.
func (s *Service) PendingCallbacks(ctx context.Context, limit int) ([]*Job, error) {
	return s.repo.PendingCallbacks(ctx, limit)
}

// MarkNotified records that the job's callback was delivered.
func (s *Service) MarkNotified(ctx context.Context, id int64) error {
	return s.repo.MarkNotified(ctx, id)
}

// normalizePhone formats the destination to E.164 when it parses as an
// international number. Best-effort: anything else is stored as received,
// since the message payload contract treats input as opaque.
func normalizePhone(raw string) string {
	num, err := libphonenumber.Parse(raw, "")
	if err != nil {
		return raw
	}
	return libphonenumber.Format(num, libphonenumber.E164)
}
