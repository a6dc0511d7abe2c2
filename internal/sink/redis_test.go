package sink

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisSink_DefaultQueue(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	s := NewRedisSink(client, "")
	if s.queue != "jobs:normalized" {
		t.Errorf("queue = %q, want jobs:normalized", s.queue)
	}
}

func TestRedisSink_ConnectionErrorIsReturned(t *testing.T) {
	// Nothing listens on port 1.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	s := NewRedisSink(client, "jobs:test")
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.Emit(ctx, sampleRecord("acme", 1)); err == nil {
		t.Fatal("expected connection error, got nil")
	}
	if _, err := s.Size(ctx); err == nil {
		t.Error("expected Size to fail without a server")
	}
}
