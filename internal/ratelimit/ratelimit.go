package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/amishk599/ghboard/internal/model"
)

// HostLimiter hands out one token bucket per key (usually an API host), so
// every board hitting the same host shares its request budget.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing rps requests per second per key,
// with bursts up to burst. rps <= 0 disables limiting.
func NewHostLimiter(rps float64, burst int) *HostLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (h *HostLimiter) get(key string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[key]
	if !ok {
		l = rate.NewLimiter(h.limit, h.burst)
		h.limiters[key] = l
	}
	return l
}

// Wait blocks until the bucket for key has a token.
// Returns an error if the context is cancelled while waiting.
func (h *HostLimiter) Wait(ctx context.Context, key string) error {
	if err := h.get(key).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", key, err)
	}
	return nil
}

var _ model.BoardClient = (*Client)(nil)

// Client is a decorator that waits on the host limiter before delegating
// to the wrapped BoardClient.
type Client struct {
	inner   model.BoardClient
	limiter *HostLimiter
	host    string
}

// NewClient wraps a BoardClient with host-level rate limiting.
// All clients targeting the same host should share the same limiter instance.
func NewClient(inner model.BoardClient, limiter *HostLimiter, host string) *Client {
	return &Client{inner: inner, limiter: limiter, host: host}
}

func (c *Client) ListDepartments(ctx context.Context, boardToken string) ([]model.Department, error) {
	if err := c.limiter.Wait(ctx, c.host); err != nil {
		return nil, err
	}
	return c.inner.ListDepartments(ctx, boardToken)
}

func (c *Client) FetchJobDetail(ctx context.Context, boardToken string, jobID int64) (*model.JobDetail, error) {
	if err := c.limiter.Wait(ctx, c.host); err != nil {
		return nil, err
	}
	return c.inner.FetchJobDetail(ctx, boardToken, jobID)
}
