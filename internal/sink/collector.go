package sink

import (
	"context"
	"slices"
	"sync"

	"github.com/amishk599/ghboard/internal/model"
)

// Collector keeps records in memory in emit order. The browse TUI and the
// tests read from it.
type Collector struct {
	mu      sync.Mutex
	records []model.Record
}

func NewCollector() *Collector { return &Collector{} }

func (c *Collector) Emit(_ context.Context, rec model.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
	return nil
}

// Records returns a copy of everything emitted so far.
func (c *Collector) Records() []model.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.records)
}

// Size reports Len for Multi.LogSizes.
func (c *Collector) Size(context.Context) (int64, error) {
	return int64(c.Len()), nil
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}
