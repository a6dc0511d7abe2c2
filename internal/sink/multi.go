package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/amishk599/ghboard/internal/model"
)

// Multi fans each record out to every sink in order.
type Multi []model.Sink

// Emit tries every sink even when one fails and returns the joined errors.
func (m Multi) Emit(ctx context.Context, rec model.Record) error {
	var errs []error
	for i, s := range m {
		if err := s.Emit(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Sizer is a sink that can report how many records it holds.
type Sizer interface {
	Size(ctx context.Context) (int64, error)
}

// LogSizes logs the size of every sink that can report one, at Debug.
// Failures are logged and skipped.
func (m Multi) LogSizes(ctx context.Context, logger *slog.Logger) {
	for i, s := range m {
		sz, ok := s.(Sizer)
		if !ok {
			continue
		}
		n, err := sz.Size(ctx)
		if err != nil {
			logger.Warn("sink size unavailable", "sink", i, "error", err)
			continue
		}
		logger.Debug("sink size", "sink", i, "type", fmt.Sprintf("%T", s), "records", n)
	}
}
