package messaging

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"time"

	"go.uber.org/atomic"
)

// LogConfig configures the Log implementation.
type LogConfig struct {
	// IncludeBody logs the payload. Leave off outside local development.
	IncludeBody bool
}

// Log is a Messaging implementation that writes each message to slog. It
// stands in for a broker in local runs and tests.
type Log struct {
	includeBody bool
	seq         atomic.Uint64
	closed      atomic.Bool
}

// NewLog constructs a Log publisher.
func NewLog(cfg LogConfig) *Log {
	return &Log{includeBody: cfg.IncludeBody}
}

// Publish logs msg and assigns it a sequential message id.
func (l *Log) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if l.closed.Load() {
		return PublishResult{}, io.ErrClosedPipe
	}

	id := strconv.FormatUint(l.seq.Inc(), 10)
	attrs := []any{"destination", destination, "message_id", id, "bytes", len(msg.Body)}
	if l.includeBody {
		attrs = append(attrs, "body", string(msg.Body))
	}
	slog.InfoContext(ctx, "message published", attrs...)

	return PublishResult{
		MessageID: id,
		Topic:     destination,
		Timestamp: time.Now(),
	}, nil
}

// Published returns the number of messages published so far.
func (l *Log) Published() uint64 {
	return l.seq.Load()
}

// Close marks the publisher closed.
func (l *Log) Close() error {
	l.closed.Store(true)
	return nil
}
