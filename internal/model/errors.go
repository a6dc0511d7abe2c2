package model

import (
	"fmt"
	"net/http"
	"time"
)

// HTTPError is a non-success response from the board API. It keeps the
// status so the retry layer can tell transient failures from permanent ones.
type HTTPError struct {
	StatusCode int
	Message    string        // response status text, e.g. "404 Not Found"
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d %s: %v", e.StatusCode, msg, e.Err)
	}
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, msg)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying the request may succeed (429 or 5xx).
func (e *HTTPError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
