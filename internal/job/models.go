// Package job provides the SMS job queue and its status state machine.
package job

import (
	"errors"
	"time"
)

// Canonical status values. The update-status endpoint stores unrecognized
// values verbatim, so this set is the happy path, not a closed enum.
const (
	StatusPending   = "pending"
	StatusClaimed   = "claimed"
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

// Dispatch defaults.
const (
	// DefaultPriority is assigned when a producer does not set one.
	DefaultPriority = 5

	// DefaultBatchSize bounds how many jobs a single poll may claim.
	DefaultBatchSize = 10
)

// Repository errors.
var (
	ErrJobNotFound = errors.New("job not found")
)

// Service errors.
var (
	ErrMissingDeviceID = errors.New("device_id is required")
	ErrMissingPhone    = errors.New("phone_number is required")
	ErrMissingMessage  = errors.New("message is required")
	ErrMissingJobID    = errors.New("request_id is required")
	ErrMissingStatus   = errors.New("status is required")
)

// Job represents a single SMS send request owned by one device for its
// entire lifetime.
type Job struct {
	ID           int64
	DeviceID     string
	PhoneNumber  string
	Message      string
	Priority     int
	Status       string
	ScheduledAt  *time.Time
	CallbackURL  *string
	ErrorMessage *string
	CreatedAt    time.Time
	ClaimedAt    *time.Time
	SentAt       *time.Time
	DeliveredAt  *time.Time
	NotifiedAt   *time.Time
}

// Terminal reports whether the job has left the dispatch lifecycle.
// Anything outside pending/claimed/sent counts as terminal; devices may
// report failure statuses that are not in the canonical set.
func (j *Job) Terminal() bool {
	switch j.Status {
	case StatusPending, StatusClaimed, StatusSent:
		return false
	}
	return true
}
