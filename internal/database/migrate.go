package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema holds the idempotent DDL for the relay's two tables. Device and
// job records must survive restarts; everything else the relay knows is
// derived from these rows.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS devices (
		device_id    text PRIMARY KEY,
		device_name  text NOT NULL DEFAULT '',
		phone_number text NOT NULL DEFAULT '',
		api_key      text NOT NULL UNIQUE,
		is_active    boolean NOT NULL DEFAULT true,
		last_seen    timestamptz NOT NULL DEFAULT now(),
		created_at   timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS sms_jobs (
		id            bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		device_id     text NOT NULL REFERENCES devices (device_id),
		phone_number  text NOT NULL,
		message       text NOT NULL,
		priority      integer NOT NULL DEFAULT 5,
		status        text NOT NULL DEFAULT 'pending',
		scheduled_at  timestamptz,
		callback_url  text,
		error_message text,
		created_at    timestamptz NOT NULL DEFAULT now(),
		claimed_at    timestamptz,
		sent_at       timestamptz,
		delivered_at  timestamptz,
		notified_at   timestamptz
	)`,
	`CREATE INDEX IF NOT EXISTS sms_jobs_dispatch_idx
		ON sms_jobs (device_id, status, priority DESC, created_at ASC)`,
	`CREATE INDEX IF NOT EXISTS sms_jobs_callback_idx
		ON sms_jobs (notified_at) WHERE callback_url IS NOT NULL`,
}

// Migrate applies the schema. Safe to run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
