package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/smsrelay/smsrelay/internal/job"
)

// StatusEvent is the payload posted to a producer's callback URL once
// the job it enqueued reaches a terminal status.
type StatusEvent struct {
	RequestID    int64     `json:"request_id"`
	DeviceID     string    `json:"device_id"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
}

// Notifier turns finished jobs into webhook deliveries.
type Notifier struct {
	client *Client
}

// NewNotifier creates a Notifier backed by the given client.
func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

// Deliver posts the terminal status of j to its callback URL. Jobs
// without a callback URL are a no-op. Returns ErrRejected when the
// receiver refused the event permanently.
func (n *Notifier) Deliver(ctx context.Context, j *job.Job) error {
	if j.CallbackURL == nil || *j.CallbackURL == "" {
		return nil
	}

	event := StatusEvent{
		RequestID:    j.ID,
		DeviceID:     j.DeviceID,
		Status:       j.Status,
		ErrorMessage: j.ErrorMessage,
		CompletedAt:  completedAt(j),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding callback event: %w", err)
	}

	url := *j.CallbackURL
	return n.client.Post(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
}

func completedAt(j *job.Job) time.Time {
	switch {
	case j.DeliveredAt != nil:
		return *j.DeliveredAt
	case j.SentAt != nil:
		return *j.SentAt
	default:
		return time.Now().UTC()
	}
}
