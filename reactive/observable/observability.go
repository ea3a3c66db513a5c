package observable

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive"
)

// ErrEmptyStreamName is returned by Instrument when the stream name is empty.
var ErrEmptyStreamName = errors.New("stream name must not be empty")

// Span names.
const (
	SpanNameSubscription = "stream.subscription"
)

// Metric names.
const (
	MetricSubscriptionDuration = "stream_subscription_duration_seconds"
	MetricSubscriptionsTotal   = "stream_subscriptions_total"
	MetricValuesTotal          = "stream_values_total"
)

// Status values for metrics, spans, and logs.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusCanceled = "canceled"
	StatusTimeout  = "timeout"
)

// Log messages.
const (
	LogMsgSubscriptionStarted   = "stream subscription started"
	LogMsgSubscriptionCompleted = "stream subscription completed"
	LogMsgSubscriptionFailed    = "stream subscription failed"
	LogMsgSubscriptionCanceled  = "stream subscription canceled"
)

// Attribute keys shared by labels, span attributes, and log args.
const (
	AttrStream     = "stream"
	AttrStatus     = "status"
	AttrDurationMS = "duration_ms"
	AttrValueCount = "value_count"
	AttrError      = "error"
)

// statusForFailure maps a stream failure onto a status.
func statusForFailure(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return StatusCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	default:
		return StatusError
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func formatDurationMS(d time.Duration) string {
	return fmt.Sprintf("%.2f", float64(d.Nanoseconds())/1e6)
}

func buildLabels(streamName, status string) map[string]string {
	labels := map[string]string{AttrStream: streamName}
	if status != "" {
		labels[AttrStatus] = status
	}

	return labels
}

// logInfo prefers the contextual logger for trace correlation and falls back to the basic logger.
func logInfo(ctx context.Context, logger reactive.Logger, contextualLogger reactive.ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Info(msg, args...)
	}
}

// logError prefers the contextual logger for trace correlation and falls back to the basic logger.
func logError(ctx context.Context, logger reactive.Logger, contextualLogger reactive.ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Error(msg, args...)
	}
}

func recordDuration(ctx context.Context, collector reactive.MetricsCollector, metric string, d time.Duration, labels map[string]string) {
	if collector == nil {
		return
	}

	if contextualCollector, ok := collector.(reactive.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, d, labels)
	} else {
		collector.RecordDuration(metric, d, labels)
	}
}

func incrementCounter(ctx context.Context, collector reactive.MetricsCollector, metric string, labels map[string]string) {
	if collector == nil {
		return
	}

	if contextualCollector, ok := collector.(reactive.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
	} else {
		collector.IncrementCounter(metric, labels)
	}
}
