package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gofrs/flock"

	"github.com/amishk599/ghboard/internal/model"
)

var _ model.Sink = (*JSONLSink)(nil)

// JSONLSink writes one JSON object per line. Writes are serialized, so
// lines from parallel boards never interleave.
type JSONLSink struct {
	mu   sync.Mutex
	w    io.Writer
	file *os.File
	lock *flock.Flock
}

// NewJSONLSink appends to the file at path, or writes to stdout when path
// is "-". A file is guarded by an exclusive lock on path+".lock" for the
// sink's lifetime; a second process writing the same file fails fast.
func NewJSONLSink(path string) (*JSONLSink, error) {
	if path == "-" {
		return &JSONLSink{w: os.Stdout}, nil
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("output file %s is in use by another process", path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &JSONLSink{w: f, file: f, lock: lock}, nil
}

func (s *JSONLSink) Emit(_ context.Context, rec model.Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.Key(), err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(line); err != nil {
		return fmt.Errorf("write record %s: %w", rec.Key(), err)
	}
	return nil
}

// Close closes the file and releases the lock. Stdout is left open.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return errors.Join(err, s.lock.Unlock())
}
