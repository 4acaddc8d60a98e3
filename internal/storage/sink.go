// internal/storage/sink.go
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"topic-crawler/internal/pipeline"
)

// Sink persists result records.
type Sink interface {
	Write(ctx context.Context, r pipeline.PageResult) error
	Close(ctx context.Context) error
}

// JSONLSink writes one JSON object per line.
type JSONLSink struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer // nil for writers we do not own
}

// NewJSONL wraps w. The sink never closes w.
func NewJSONL(w io.Writer) *JSONLSink {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLSink{enc: enc}
}

// OpenJSONL writes to path, or to stdout when path is "" or "-".
func OpenJSONL(path string) (*JSONLSink, error) {
	if path == "" || path == "-" {
		return NewJSONL(os.Stdout), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	s := NewJSONL(f)
	s.closer = f
	return s, nil
}

func (s *JSONLSink) Write(_ context.Context, r pipeline.PageResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(r)
}

func (s *JSONLSink) Close(context.Context) error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Multi fans every record out to all sinks.
type Multi []Sink

func (m Multi) Write(ctx context.Context, r pipeline.PageResult) error {
	for _, s := range m {
		if err := s.Write(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close(ctx context.Context) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close(ctx))
	}
	return errors.Join(errs...)
}
