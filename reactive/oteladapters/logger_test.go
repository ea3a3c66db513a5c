package oteladapters_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive"
	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive/oteladapters"
)

func Test_SlogBridgeLogger_WithHandler_AllLevels(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	// act
	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")
	logger.DebugContext(ctx, "debug context message")
	logger.InfoContext(ctx, "info context message", "int_attr", 42)
	logger.WarnContext(ctx, "warn context message")
	logger.ErrorContext(ctx, "error context message")

	// assert
	output := buf.String()
	for _, msg := range []string{
		"debug message", "info message", "warn message", "error message",
		"debug context message", "info context message", "warn context message", "error context message",
	} {
		assert.Contains(t, output, msg)
	}
	assert.Contains(t, output, `"int_attr":42`)
}

func Test_SlogBridgeLogger_LogsStreamLifecycle(t *testing.T) {
	// arrange
	provider := newRecordingLoggerProvider()
	logger := oteladapters.NewSlogBridgeLogger("stream-test", otelslog.WithLoggerProvider(provider))

	// act
	reactive.Sink(
		reactive.Log[int](reactive.Sequence(1), logger, "Numbers", func(l reactive.Logger, v int) {
			l.Info("Numbers got value", "value", v)
		}),
		nil,
		nil,
	)

	// assert
	records := provider.logger.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "Numbers started", records[0].body)
	assert.Equal(t, "Numbers got value", records[1].body)
	assert.Equal(t, int64(1), records[1].attrs["value"].AsInt64())
	assert.Equal(t, "Numbers finished", records[2].body)
	assert.Equal(t, log.SeverityInfo, records[2].severity)
}

func Test_SlogBridgeLogger_CorrelatesWithActiveSpan(t *testing.T) {
	// arrange
	tracerProvider := sdktrace.NewTracerProvider()
	defer func() { _ = tracerProvider.Shutdown(context.Background()) }()
	provider := newRecordingLoggerProvider()
	logger := oteladapters.NewSlogBridgeLogger("stream-test", otelslog.WithLoggerProvider(provider))
	ctx, span := tracerProvider.Tracer("test").Start(context.Background(), "operation")
	defer span.End()

	// act
	logger.InfoContext(ctx, "with trace")

	// assert
	records := provider.logger.Records()
	require.Len(t, records, 1)
	assert.Equal(t, span.SpanContext().TraceID(), trace.SpanContextFromContext(records[0].ctx).TraceID())
}

func Test_OTelLogger_EmitsTypedAttributes(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)

	// act
	logger.WarnContext(context.Background(), "stream subscription failed",
		"stream", "orders",
		"value_count", 3,
		"duration_ms", 1.5,
		"retried", false,
		"error", errors.New("boom"),
		"dangling",
	)

	// assert
	records := recorder.Records()
	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, log.SeverityWarn, record.severity)
	assert.Equal(t, "stream subscription failed", record.body)
	assert.Equal(t, "orders", record.attrs["stream"].AsString())
	assert.Equal(t, int64(3), record.attrs["value_count"].AsInt64())
	assert.InDelta(t, 1.5, record.attrs["duration_ms"].AsFloat64(), 0.0001)
	assert.False(t, record.attrs["retried"].AsBool())
	assert.Equal(t, "boom", record.attrs["error"].AsString())
	assert.NotContains(t, record.attrs, "dangling")
}

func Test_OTelLogger_AllLevels_DoNotPanic(t *testing.T) {
	// arrange
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("test"))
	ctx := context.Background()

	// act & assert
	assert.NotPanics(t, func() {
		logger.DebugContext(ctx, "debug message", 42, "non-string key")
		logger.InfoContext(ctx, "info message")
		logger.WarnContext(ctx, "warn message", "key", struct{ A int }{A: 1})
		logger.ErrorContext(ctx, "error message", "key", nil)
	})
}
