package observable

import (
	"context"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive"
)

// collectors holds the optional observability backends of an instrumented publisher.
type collectors struct {
	ctx              context.Context
	logger           reactive.Logger
	contextualLogger reactive.ContextualLogger
	metricsCollector reactive.MetricsCollector
	tracingCollector reactive.TracingCollector
}

// Option defines a functional option for configuring Instrument.
type Option func(*collectors) error

// WithLogging sets the basic logger. It is used when no contextual logger is configured.
func WithLogging(logger reactive.Logger) Option {
	return func(c *collectors) error {
		c.logger = logger
		return nil
	}
}

// WithContextualLogging sets the contextual logger.
// Log records then carry the context of the subscription span, which enables trace correlation.
func WithContextualLogging(logger reactive.ContextualLogger) Option {
	return func(c *collectors) error {
		c.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector reactive.MetricsCollector) Option {
	return func(c *collectors) error {
		c.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector.
func WithTracing(collector reactive.TracingCollector) Option {
	return func(c *collectors) error {
		c.tracingCollector = collector
		return nil
	}
}

// WithContext sets the parent context of every subscription span. Defaults to context.Background.
func WithContext(ctx context.Context) Option {
	return func(c *collectors) error {
		if ctx != nil {
			c.ctx = ctx
		}

		return nil
	}
}
