package sink

import (
	"context"
	"log/slog"

	"github.com/amishk599/ghboard/internal/model"
)

// Ensure LogSink implements model.Sink.
var _ model.Sink = (*LogSink)(nil)

// LogSink writes each record to the given logger as a structured message.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink that logs each record via slog.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit logs the record's identifying fields. Returns nil (stdout logging does not fail).
func (s *LogSink) Emit(ctx context.Context, rec model.Record) error {
	args := []any{
		"company", rec.Company,
		"id", rec.ID,
		"title", rec.Title,
		"location", rec.Location,
		"department", rec.Department,
		"remote", rec.IsRemote,
		"url", rec.PostingURL,
	}
	if rec.Salary != nil {
		args = append(args, "salary", rec.Salary.Display())
	}
	if rec.PublishedAt != "" {
		args = append(args, "published_at", rec.PublishedAt)
	}
	s.logger.InfoContext(ctx, "job record", args...)
	return nil
}
