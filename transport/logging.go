package transport

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// sensitiveHeaders are request headers whose values carry credentials. They
// are partially redacted before logging: enough of a prefix to identify the
// token, never the whole secret.
var sensitiveHeaders = map[string]int{
	"token":         8,
	"authorization": 7,
}

// NewLogging wraps a round tripper so every request and response is logged
// through the given slog.Logger at debug level, tied together by a UUIDv7
// correlation id. Errors are logged at warn level. A nil logger disables
// logging entirely and returns next unchanged.
func NewLogging(next http.RoundTripper, logger *slog.Logger) http.RoundTripper {
	if logger == nil {
		return next
	}

	if next == nil {
		next = http.DefaultTransport
	}

	return &loggingTransport{next: next, logger: logger}
}

type loggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

var _ http.RoundTripper = (*loggingTransport)(nil)

func (l *loggingTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	correlationID := newCorrelationID()
	ctx := request.Context()

	l.logger.DebugContext(ctx, "sending Data API request",
		"method", request.Method,
		"url", request.URL.String(),
		"correlationId", correlationID,
		"headers", redactHeaders(request.Header),
	)

	start := time.Now()

	response, err := l.next.RoundTrip(request)
	if err != nil {
		l.logger.WarnContext(ctx, "Data API request failed",
			"method", request.Method,
			"url", request.URL.String(),
			"correlationId", correlationID,
			"duration", time.Since(start),
			"error", err,
		)

		return response, err
	}

	l.logger.DebugContext(ctx, "received Data API response",
		"status", response.StatusCode,
		"correlationId", correlationID,
		"duration", time.Since(start),
	)

	return response, nil
}

func newCorrelationID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the entropy source does; fall back to v4.
		return uuid.NewString()
	}

	return id.String()
}

// redactHeaders copies the headers with credential values masked past a
// short identifying prefix.
func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))

	for key, values := range headers {
		value := strings.Join(values, ", ")

		if visible, ok := sensitiveHeaders[strings.ToLower(key)]; ok {
			value = partiallyRedact(value, visible)
		}

		out[key] = value
	}

	return out
}

func partiallyRedact(value string, visibleRunes int) string {
	if len(value) <= visibleRunes {
		return value
	}

	return value[:visibleRunes] + strings.Repeat("*", len(value)-visibleRunes)
}
