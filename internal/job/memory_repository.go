package job

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu     sync.Mutex
	jobs   map[int64]*Job
	nextID int64
}

// NewInMemoryRepository creates a new in-memory job repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		jobs:   make(map[int64]*Job),
		nextID: 1,
	}
}

// Create persists a new pending job and assigns its ID.
func (r *InMemoryRepository) Create(_ context.Context, job *Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job.ID = r.nextID
	r.nextID++

	cpy := *job
	r.jobs[job.ID] = &cpy
	return nil
}

// Get retrieves a job by ID.
func (r *InMemoryRepository) Get(_ context.Context, id int64) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}

	cpy := *j
	return &cpy, nil
}

// Claim atomically selects eligible pending jobs and marks them claimed.
// The mutex is held across selection and the status flip, giving the same
// no-overlap guarantee as the SQL implementation.
func (r *InMemoryRepository) Claim(_ context.Context, deviceID string, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = DefaultBatchSize
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	var eligible []*Job
	for _, j := range r.jobs {
		if j.DeviceID != deviceID || j.Status != StatusPending {
			continue
		}
		if j.ScheduledAt != nil && j.ScheduledAt.After(now) {
			continue
		}
		eligible = append(eligible, j)
	}

	sort.Slice(eligible, func(i, k int) bool {
		if eligible[i].Priority != eligible[k].Priority {
			return eligible[i].Priority > eligible[k].Priority
		}
		if !eligible[i].CreatedAt.Equal(eligible[k].CreatedAt) {
			return eligible[i].CreatedAt.Before(eligible[k].CreatedAt)
		}
		return eligible[i].ID < eligible[k].ID
	})

	if len(eligible) > limit {
		eligible = eligible[:limit]
	}

	claimed := make([]*Job, 0, len(eligible))
	for _, j := range eligible {
		j.Status = StatusClaimed
		claimedAt := now
		j.ClaimedAt = &claimedAt

		cpy := *j
		claimed = append(claimed, &cpy)
	}

	return claimed, nil
}

// UpdateStatus applies a device's status report.
func (r *InMemoryRepository) UpdateStatus(_ context.Context, update StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[update.JobID]
	if !ok || j.DeviceID != update.DeviceID {
		return ErrJobNotFound
	}

	now := time.Now()
	j.Status = update.Status
	if update.Status == StatusSent && j.SentAt == nil {
		j.SentAt = &now
	}
	if update.Status == StatusDelivered && j.DeliveredAt == nil {
		j.DeliveredAt = &now
	}
	if update.ErrorMessage != nil {
		j.ErrorMessage = update.ErrorMessage
	}

	return nil
}

// RequeueStale returns jobs claimed before the cutoff to pending.
func (r *InMemoryRepository) RequeueStale(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, j := range r.jobs {
		if j.Status == StatusClaimed && j.ClaimedAt != nil && j.ClaimedAt.Before(cutoff) {
			j.Status = StatusPending
			j.ClaimedAt = nil
			n++
		}
	}

	return n, nil
}

// PendingCallbacks retrieves terminal jobs with an undelivered callback.
func (r *InMemoryRepository) PendingCallbacks(_ context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = DefaultBatchSize
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var due []*Job
	for _, j := range r.jobs {
		if j.CallbackURL != nil && j.NotifiedAt == nil && j.Terminal() {
			cpy := *j
			due = append(due, &cpy)
		}
	}

	sort.Slice(due, func(i, k int) bool { return due[i].ID < due[k].ID })

	if len(due) > limit {
		due = due[:limit]
	}

	return due, nil
}

// MarkNotified records that the job's callback was delivered.
func (r *InMemoryRepository) MarkNotified(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return ErrJobNotFound
	}

	now := time.Now()
	j.NotifiedAt = &now
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
