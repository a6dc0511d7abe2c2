package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/amishk599/ghboard/internal/model"
)

var _ model.BoardClient = (*Client)(nil)

// Client is a decorator that retries transient failures with exponential
// backoff and jitter before giving up on the wrapped BoardClient.
type Client struct {
	inner      model.BoardClient
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewClient wraps a BoardClient with retry logic.
// maxRetries is the number of additional attempts after the first failure.
// baseDelay is the delay before the first retry, doubled on each subsequent retry.
func NewClient(inner model.BoardClient, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Client {
	return &Client{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// ListDepartments retries the wrapped listing call on transient errors.
func (c *Client) ListDepartments(ctx context.Context, boardToken string) ([]model.Department, error) {
	return do(ctx, c, "list_departments", func() ([]model.Department, error) {
		return c.inner.ListDepartments(ctx, boardToken)
	})
}

// FetchJobDetail retries the wrapped detail call on transient errors.
func (c *Client) FetchJobDetail(ctx context.Context, boardToken string, jobID int64) (*model.JobDetail, error) {
	return do(ctx, c, "fetch_job_detail", func() (*model.JobDetail, error) {
		return c.inner.FetchJobDetail(ctx, boardToken, jobID)
	})
}

func do[T any](ctx context.Context, c *Client, op string, call func() (T, error)) (T, error) {
	var zero T

	v, err := call()
	if err == nil {
		return v, nil
	}
	if !isRetryable(err) {
		return zero, err
	}

	lastErr := err
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		delay := c.backoffDelay(attempt, lastErr)

		c.logger.Warn("retrying after transient error",
			"op", op,
			"attempt", attempt,
			"max_retries", c.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		v, err = call()
		if err == nil {
			return v, nil
		}
		if !isRetryable(err) {
			return zero, err
		}
		lastErr = err
	}

	return zero, lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429), that takes precedence.
func (c *Client) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	// Exponential: baseDelay * 2^(attempt-1)
	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation is never retried.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Transient()
	}

	// Non-HTTP errors (network, DNS, decode) are retryable.
	return true
}
