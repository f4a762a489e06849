package job

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL job repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const jobColumns = `
	id, device_id, phone_number, message, priority, status,
	scheduled_at, callback_url, error_message,
	created_at, claimed_at, sent_at, delivered_at, notified_at
`

// Create persists a new pending job and assigns its ID.
func (r *PostgresRepository) Create(ctx context.Context, job *Job) error {
	query := `
		INSERT INTO sms_jobs (device_id, phone_number, message, priority, status, scheduled_at, callback_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		job.DeviceID,
		job.PhoneNumber,
		job.Message,
		job.Priority,
		job.Status,
		job.ScheduledAt,
		job.CallbackURL,
		job.CreatedAt,
	).Scan(&job.ID)
}

// Get retrieves a job by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM sms_jobs WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// Claim atomically selects eligible pending jobs and marks them claimed.
// FOR UPDATE SKIP LOCKED keeps two racing polls from the same device from
// claiming overlapping batches; the final SELECT restores dispatch order,
// which an UPDATE ... RETURNING does not guarantee.
func (r *PostgresRepository) Claim(ctx context.Context, deviceID string, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = DefaultBatchSize
	}

	query := `
		WITH eligible AS (
			SELECT id
			FROM sms_jobs
			WHERE device_id = $1
			  AND status = 'pending'
			  AND (scheduled_at IS NULL OR scheduled_at <= now())
			ORDER BY priority DESC, created_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		),
		claimed AS (
			UPDATE sms_jobs j
			SET status = 'claimed', claimed_at = now()
			FROM eligible e
			WHERE j.id = e.id
			RETURNING ` + jobColumns + `
		)
		SELECT * FROM claimed
		ORDER BY priority DESC, created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, deviceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanJobs(rows)
}

// UpdateStatus applies a device's status report in a single statement.
// Matching on id AND device_id together closes the check-then-update race
// a separate ownership lookup would open.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, update StatusUpdate) error {
	query := `
		UPDATE sms_jobs SET
			status = $3,
			sent_at = CASE WHEN $3 = 'sent' AND sent_at IS NULL THEN now() ELSE sent_at END,
			delivered_at = CASE WHEN $3 = 'delivered' AND delivered_at IS NULL THEN now() ELSE delivered_at END,
			error_message = COALESCE($4, error_message)
		WHERE id = $1 AND device_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		update.JobID,
		update.DeviceID,
		update.Status,
		update.ErrorMessage,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrJobNotFound
	}

	return nil
}

// RequeueStale returns jobs claimed before the cutoff to pending.
func (r *PostgresRepository) RequeueStale(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE sms_jobs
		SET status = 'pending', claimed_at = NULL
		WHERE status = 'claimed' AND claimed_at < $1
	`

	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}

// PendingCallbacks retrieves terminal jobs with an undelivered callback.
func (r *PostgresRepository) PendingCallbacks(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = DefaultBatchSize
	}

	query := `
		SELECT ` + jobColumns + `
		FROM sms_jobs
		WHERE callback_url IS NOT NULL
		  AND notified_at IS NULL
		  AND status NOT IN ('pending', 'claimed', 'sent')
		ORDER BY id ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanJobs(rows)
}

// MarkNotified records that the job's callback was delivered.
func (r *PostgresRepository) MarkNotified(ctx context.Context, id int64) error {
	query := `UPDATE sms_jobs SET notified_at = now() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrJobNotFound
	}

	return nil
}

// scanJob scans a single job from a row.
func scanJob(row pgx.Row) (*Job, error) {
	var job Job
	err := row.Scan(
		&job.ID,
		&job.DeviceID,
		&job.PhoneNumber,
		&job.Message,
		&job.Priority,
		&job.Status,
		&job.ScheduledAt,
		&job.CallbackURL,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.ClaimedAt,
		&job.SentAt,
		&job.DeliveredAt,
		&job.NotifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// scanJobs collects all jobs from a query result.
func scanJobs(rows pgx.Rows) ([]*Job, error) {
	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
