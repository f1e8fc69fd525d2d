package events

import (
	"context"
	"log/slog"

	"github.com/amp-labs/dataapi-go/assert"
)

// NewLogSink returns a Sink that writes every event as a structured log
// record. Routine lifecycle events log at debug; failures at warn. Panics if
// logger is nil.
func NewLogSink(logger *slog.Logger) Sink {
	assert.NotNil(logger, "NewLogSink: logger is nil")

	return &logSink{logger: logger}
}

type logSink struct {
	logger *slog.Logger
}

var _ Sink = (*logSink)(nil)

func (s *logSink) CommandStarted(ctx context.Context, ev CommandStarted) {
	s.logger.DebugContext(ctx, "command started",
		"requestId", ev.RequestID,
		"command", ev.Command,
		"keyspace", ev.Keyspace,
		"collection", ev.Collection,
		"budget", ev.Budget,
		"attempt", ev.Attempt,
	)
}

func (s *logSink) CommandSucceeded(ctx context.Context, ev CommandSucceeded) {
	s.logger.DebugContext(ctx, "command succeeded",
		"requestId", ev.RequestID,
		"command", ev.Command,
		"duration", ev.Duration,
		"attempts", ev.Attempts,
	)
}

func (s *logSink) CommandFailed(ctx context.Context, ev CommandFailed) {
	s.logger.WarnContext(ctx, "command failed",
		"requestId", ev.RequestID,
		"command", ev.Command,
		"duration", ev.Duration,
		"timedOut", ev.TimedOut,
		"error", ev.Err,
	)
}

func (s *logSink) CommandRetried(ctx context.Context, ev CommandRetried) {
	if !ev.WillRetry {
		s.logger.DebugContext(ctx, "retry declined",
			"requestId", ev.RequestID,
			"command", ev.Command,
			"attempt", ev.Attempt,
			"error", ev.Err,
		)

		return
	}

	s.logger.InfoContext(ctx, "retrying command",
		"requestId", ev.RequestID,
		"command", ev.Command,
		"attempt", ev.Attempt,
		"delay", ev.Delay,
		"error", ev.Err,
	)
}

func (s *logSink) PageFetched(ctx context.Context, ev PageFetched) {
	s.logger.DebugContext(ctx, "page fetched",
		"requestId", ev.RequestID,
		"command", ev.Command,
		"collection", ev.Collection,
		"items", ev.Items,
	)
}
