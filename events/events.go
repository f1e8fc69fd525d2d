// Package events carries the client's command lifecycle notifications.
// Every command emits start/success/failure events, retries and page fetches
// emit their own, and sinks fan them out to logging and metrics. Sinks are
// observational only: a panicking or slow sink must never change what the
// client does, so dispatch recovers from panics and drops them.
package events

import (
	"context"
	"time"
)

// CommandStarted fires just before an attempt goes on the wire.
type CommandStarted struct {
	RequestID  string
	Command    string
	Keyspace   string
	Collection string
	Budget     time.Duration
	Attempt    uint
}

// CommandSucceeded fires when a command completes, counting all attempts.
type CommandSucceeded struct {
	RequestID string
	Command   string
	Duration  time.Duration
	Attempts  uint
}

// CommandFailed fires when a command is given up on. TimedOut distinguishes
// budget exhaustion from protocol and network failures.
type CommandFailed struct {
	RequestID string
	Command   string
	Duration  time.Duration
	Err       error
	TimedOut  bool
}

// CommandRetried fires when an attempt failed and another is scheduled, or
// when a retry was considered and declined (WillRetry false).
type CommandRetried struct {
	RequestID string
	Command   string
	Attempt   uint
	Delay     time.Duration
	Err       error
	WillRetry bool
}

// PageFetched fires once per page a cursor pulls.
type PageFetched struct {
	RequestID  string
	Command    string
	Collection string
	Items      int
}

// Sink receives lifecycle events. Implementations must be safe for
// concurrent use; they are invoked inline on the request path.
type Sink interface {
	CommandStarted(ctx context.Context, ev CommandStarted)
	CommandSucceeded(ctx context.Context, ev CommandSucceeded)
	CommandFailed(ctx context.Context, ev CommandFailed)
	CommandRetried(ctx context.Context, ev CommandRetried)
	PageFetched(ctx context.Context, ev PageFetched)
}

// Sinks dispatches each event to every sink, isolating the caller from sink
// panics. A nil or empty Sinks is a no-op, so the client can emit events
// unconditionally.
type Sinks []Sink

var _ Sink = (Sinks)(nil)

func (s Sinks) CommandStarted(ctx context.Context, ev CommandStarted) {
	for _, sink := range s {
		dispatch(func() { sink.CommandStarted(ctx, ev) })
	}
}

func (s Sinks) CommandSucceeded(ctx context.Context, ev CommandSucceeded) {
	for _, sink := range s {
		dispatch(func() { sink.CommandSucceeded(ctx, ev) })
	}
}

func (s Sinks) CommandFailed(ctx context.Context, ev CommandFailed) {
	for _, sink := range s {
		dispatch(func() { sink.CommandFailed(ctx, ev) })
	}
}

func (s Sinks) CommandRetried(ctx context.Context, ev CommandRetried) {
	for _, sink := range s {
		dispatch(func() { sink.CommandRetried(ctx, ev) })
	}
}

func (s Sinks) PageFetched(ctx context.Context, ev PageFetched) {
	for _, sink := range s {
		dispatch(func() { sink.PageFetched(ctx, ev) })
	}
}

func dispatch(emit func()) {
	defer func() {
		_ = recover()
	}()

	emit()
}
