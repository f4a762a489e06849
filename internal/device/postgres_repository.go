package device

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL device repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetByID retrieves a device by its external identifier.
func (r *PostgresRepository) GetByID(ctx context.Context, deviceID string) (*Device, error) {
	query := `
		SELECT device_id, device_name, phone_number, api_key, is_active, last_seen, created_at
		FROM devices
		WHERE device_id = $1
	`

	return r.scanDevice(ctx, query, deviceID)
}

// GetByAPIKey retrieves a device by its API key.
func (r *PostgresRepository) GetByAPIKey(ctx context.Context, apiKey string) (*Device, error) {
	query := `
		SELECT device_id, device_name, phone_number, api_key, is_active, last_seen, created_at
		FROM devices
		WHERE api_key = $1
	`

	return r.scanDevice(ctx, query, apiKey)
}

// scanDevice scans a single device from a query.
func (r *PostgresRepository) scanDevice(ctx context.Context, query string, args ...interface{}) (*Device, error) {
	var device Device

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&device.DeviceID,
		&device.Name,
		&device.PhoneNumber,
		&device.APIKey,
		&device.Active,
		&device.LastSeen,
		&device.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	return &device, nil
}

// Create persists a new device.
// ON CONFLICT DO NOTHING keeps registration idempotent under concurrent calls:
// the loser of the race gets ErrDeviceExists and re-reads the winner's row.
func (r *PostgresRepository) Create(ctx context.Context, device *Device) error {
	query := `
		INSERT INTO devices (device_id, device_name, phone_number, api_key, is_active, last_seen, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (device_id) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query,
		device.DeviceID,
		device.Name,
		device.PhoneNumber,
		device.APIKey,
		device.Active,
		device.LastSeen,
		device.CreatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrDeviceExists
	}

	return nil
}

// TouchLastSeen updates the device's last-seen timestamp to now.
func (r *PostgresRepository) TouchLastSeen(ctx context.Context, deviceID string) error {
	query := `UPDATE devices SET last_seen = now() WHERE device_id = $1`
	_, err := r.pool.Exec(ctx, query, deviceID)
	return err
}

// SetActive toggles the device's active flag.
func (r *PostgresRepository) SetActive(ctx context.Context, deviceID string, active bool) error {
	query := `UPDATE devices SET is_active = $2 WHERE device_id = $1`

	result, err := r.pool.Exec(ctx, query, deviceID, active)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// List retrieves registered devices, most recently created first.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT device_id, device_name, phone_number, api_key, is_active, last_seen, created_at
		FROM devices
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*Device
	for rows.Next() {
		var device Device
		err := rows.Scan(
			&device.DeviceID,
			&device.Name,
			&device.PhoneNumber,
			&device.APIKey,
			&device.Active,
			&device.LastSeen,
			&device.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		devices = append(devices, &device)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ListResult{Items: devices}, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
