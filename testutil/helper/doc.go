// Package helper provides test doubles for stream and observability testing.
//
// It contains a slog.Handler spy for capturing log output, spies for the
// metrics and tracing collector interfaces, and a recording subscriber that
// captures the values and completions a publisher delivers.
package helper
