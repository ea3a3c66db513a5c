// Package observable instruments reactive publishers with metrics, tracing, and structured logging.
//
// Instrument wraps any reactive.Publisher and observes every subscription from its start
// to its terminal event. Values and termination are never altered: the decorator only reads
// the lifecycle and reports it to the configured collectors. All collectors are optional,
// a Publisher without options behaves exactly like its upstream.
//
//	instrumented, err := observable.Instrument[Order](
//		orders,
//		"orders",
//		observable.WithMetrics(metricsCollector),
//		observable.WithTracing(tracingCollector),
//		observable.WithContextualLogging(contextualLogger),
//	)
package observable
