package job

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/smsrelay/smsrelay/internal/job"

// Metrics holds queue-level OpenTelemetry instruments.
type Metrics struct {
	enqueued metric.Int64Counter
	claimed  metric.Int64Counter
	reported metric.Int64Counter
}

// NewMetrics creates queue metrics instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	enqueued, err := meter.Int64Counter(
		"sms.jobs.enqueued",
		metric.WithDescription("Total number of jobs accepted into the queue"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}

	claimed, err := meter.Int64Counter(
		"sms.jobs.claimed",
		metric.WithDescription("Total number of jobs handed to polling devices"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}

	reported, err := meter.Int64Counter(
		"sms.jobs.status_reports",
		metric.WithDescription("Total number of accepted status reports"),
		metric.WithUnit("{report}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		enqueued: enqueued,
		claimed:  claimed,
		reported: reported,
	}, nil
}

// RecordEnqueued counts an accepted submission. Safe on a nil receiver.
func (m *Metrics) RecordEnqueued(ctx context.Context, deviceID string) {
	if m == nil {
		return
	}
	m.enqueued.Add(ctx, 1, metric.WithAttributes(attribute.String("device.id", deviceID)))
}

// RecordClaimed counts jobs dispatched to a device. Safe on a nil receiver.
func (m *Metrics) RecordClaimed(ctx context.Context, deviceID string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.claimed.Add(ctx, int64(n), metric.WithAttributes(attribute.String("device.id", deviceID)))
}

// RecordStatus counts a status report. Safe on a nil receiver.
func (m *Metrics) RecordStatus(ctx context.Context, deviceID, status string) {
	if m == nil {
		return
	}
	m.reported.Add(ctx, 1, metric.WithAttributes(
		attribute.String("device.id", deviceID),
		attribute.String("job.status", status),
	))
}
