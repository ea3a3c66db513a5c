// Package oteladapters provides OpenTelemetry implementations of the reactive observability interfaces.
//
// The adapters plug into reactive.Log, reactive.LogOutput and observable.Instrument:
//
//   - SlogBridgeLogger: reactive.Logger and reactive.ContextualLogger on top of the otelslog bridge
//   - OTelLogger: reactive.ContextualLogger on top of the OpenTelemetry log API
//   - MetricsCollector: reactive.ContextualMetricsCollector on top of the OpenTelemetry metric API
//   - TracingCollector: reactive.TracingCollector on top of the OpenTelemetry trace API
package oteladapters
