// Package notify delivers terminal-status callbacks to producer webhooks
// with circuit breaker and retry protection.
package notify

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// Predefined delivery errors.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrRejected is returned when the webhook answered with a non-retryable
	// status. The callback will not be attempted again.
	ErrRejected = errors.New("callback rejected by receiver")
)

// ClientConfig holds configuration for the resilient webhook client.
type ClientConfig struct {
	// Name identifies this client for circuit breaker naming.
	Name string

	// Timeout is the request timeout for individual HTTP calls.
	// Default: 10 seconds
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts.
	// Default: 3
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval.
	// Default: 100ms
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff interval.
	// Default: 5 seconds
	MaxInterval time.Duration
}

// Client posts webhook payloads with retry and circuit breaker protection.
// Transient failures (network errors, 5xx) are retried with exponential
// backoff and count against the breaker; 4xx responses are permanent.
type Client struct {
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker[int]
	config         ClientConfig
}

// NewClient creates a new resilient webhook client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
	})

	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		circuitBreaker: cb,
		config:         cfg,
	}
}

// serverError marks a retryable upstream failure.
type serverError struct {
	statusCode int
}

func (e *serverError) Error() string {
	return http.StatusText(e.statusCode)
}

// Post delivers one payload. newRequest is invoked per attempt so the
// request body can be rebuilt for retries.
func (c *Client) Post(ctx context.Context, newRequest func(ctx context.Context) (*http.Request, error)) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // retries are bounded by MaxRetries

	operation := func() error {
		_, err := c.circuitBreaker.Execute(func() (int, error) {
			req, err := newRequest(ctx)
			if err != nil {
				return 0, backoff.Permanent(err)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return 0, err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 500 {
				return resp.StatusCode, &serverError{statusCode: resp.StatusCode}
			}
			if resp.StatusCode >= 400 {
				return resp.StatusCode, backoff.Permanent(ErrRejected)
			}

			return resp.StatusCode, nil
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			return err
		}

		return nil
	}

	return backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx))
}
