package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/ghboard/internal/model"
)

var _ model.Sink = (*RedisSink)(nil)

// RedisSink pushes each record's JSON onto a Redis list for downstream
// workers to pop.
type RedisSink struct {
	client *redis.Client
	queue  string
}

// NewRedisSink wraps an existing client. An empty queue uses "jobs:normalized".
func NewRedisSink(client *redis.Client, queue string) *RedisSink {
	if queue == "" {
		queue = "jobs:normalized"
	}
	return &RedisSink{client: client, queue: queue}
}

// Emit LPUSHes the record.
func (s *RedisSink) Emit(ctx context.Context, rec model.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.Key(), err)
	}

	if err := s.client.LPush(ctx, s.queue, data).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", rec.Key(), err)
	}
	return nil
}

// Size returns the current queue length.
func (s *RedisSink) Size(ctx context.Context) (int64, error) {
	return s.client.LLen(ctx, s.queue).Result()
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
