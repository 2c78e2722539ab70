// internal/output/sink.go

// Package output delivers replies to side channels such as a console or a
// speech synthesis topic.
package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	apperrors "kiosk-dialog/internal/common/errors"
	"kiosk-dialog/internal/common/logger"
	"kiosk-dialog/internal/common/metrics"
)

// Sink receives every reply. Callers treat delivery as fire-and-forget.
type Sink interface {
	Emit(ctx context.Context, reply string) error
}

// Nop discards replies.
type Nop struct{}

func (Nop) Emit(context.Context, string) error { return nil }

// WriterSink prints replies to w, one per line, after prefix.
type WriterSink struct {
	mu     sync.Mutex
	w      io.Writer
	prefix string
}

func NewWriterSink(w io.Writer, prefix string) *WriterSink {
	return &WriterSink{w: w, prefix: prefix}
}

func (s *WriterSink) Emit(_ context.Context, reply string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "%s%s\n", s.prefix, reply); err != nil {
		return apperrors.NewOutputSinkFailedError("writer", err)
	}
	return nil
}

// NamedSink labels a sink for logs and metrics.
type NamedSink struct {
	Name string
	Sink Sink
}

// Multi emits to every sink, even after one fails, and joins the errors.
type Multi struct {
	sinks  []NamedSink
	logger logger.Logger
}

func NewMulti(log logger.Logger, sinks ...NamedSink) *Multi {
	return &Multi{sinks: sinks, logger: log}
}

func (m *Multi) Emit(ctx context.Context, reply string) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Sink.Emit(ctx, reply); err != nil {
			metrics.SinkFailures.WithLabelValues(s.Name).Inc()
			m.logger.Warn("output sink failed", map[string]interface{}{
				"sink":  s.Name,
				"error": err.Error(),
			})
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}
