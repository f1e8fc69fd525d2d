package events

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: "dataapi",
		Name:      "commands_total",
		Help:      "Total number of commands by terminal outcome",
	}, []string{"command", "outcome"})

	commandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{ //nolint:gochecknoglobals
		Namespace: "dataapi",
		Name:      "command_duration_seconds",
		Help:      "Wall clock duration of completed commands including retries",
		Buckets:   prometheus.DefBuckets,
	}, []string{"command"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: "dataapi",
		Name:      "retries_total",
		Help:      "Total number of retry attempts scheduled",
	}, []string{"command"})

	timeoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: "dataapi",
		Name:      "timeouts_total",
		Help:      "Total number of commands that failed by exhausting a budget",
	}, []string{"command"})

	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: "dataapi",
		Name:      "pages_fetched_total",
		Help:      "Total number of result pages pulled by cursors",
	}, []string{"command"})
)

// NewMetricsSink returns a Sink that records command outcomes, retries,
// timeouts, page fetches, and latency into the default Prometheus registry.
func NewMetricsSink() Sink {
	return &metricsSink{}
}

type metricsSink struct{}

var _ Sink = (*metricsSink)(nil)

func (s *metricsSink) CommandStarted(context.Context, CommandStarted) {}

func (s *metricsSink) CommandSucceeded(_ context.Context, ev CommandSucceeded) {
	commandsTotal.WithLabelValues(ev.Command, "success").Inc()
	commandDuration.WithLabelValues(ev.Command).Observe(ev.Duration.Seconds())
}

func (s *metricsSink) CommandFailed(_ context.Context, ev CommandFailed) {
	commandsTotal.WithLabelValues(ev.Command, "failure").Inc()
	commandDuration.WithLabelValues(ev.Command).Observe(ev.Duration.Seconds())

	if ev.TimedOut {
		timeoutsTotal.WithLabelValues(ev.Command).Inc()
	}
}

func (s *metricsSink) CommandRetried(_ context.Context, ev CommandRetried) {
	if ev.WillRetry {
		retriesTotal.WithLabelValues(ev.Command).Inc()
	}
}

func (s *metricsSink) PageFetched(_ context.Context, ev PageFetched) {
	pagesFetchedTotal.WithLabelValues(ev.Command).Inc()
}
