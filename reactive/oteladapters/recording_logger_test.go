package oteladapters_test

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"
)

// recordingLoggerProvider hands out a single recordingLogger for every name.
type recordingLoggerProvider struct {
	embedded.LoggerProvider
	logger *recordingLogger
}

func newRecordingLoggerProvider() *recordingLoggerProvider {
	return &recordingLoggerProvider{logger: &recordingLogger{}}
}

func (p *recordingLoggerProvider) Logger(string, ...log.LoggerOption) log.Logger {
	return p.logger
}

type emittedRecord struct {
	ctx      context.Context
	severity log.Severity
	body     string
	attrs    map[string]log.Value
}

// recordingLogger keeps a copy of every emitted record.
type recordingLogger struct {
	embedded.Logger
	mu      sync.Mutex
	records []emittedRecord
}

func (l *recordingLogger) Emit(ctx context.Context, record log.Record) {
	emitted := emittedRecord{
		ctx:      ctx,
		severity: record.Severity(),
		body:     record.Body().AsString(),
		attrs:    make(map[string]log.Value),
	}

	record.WalkAttributes(func(kv log.KeyValue) bool {
		emitted.attrs[kv.Key] = kv.Value
		return true
	})

	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, emitted)
}

func (l *recordingLogger) Enabled(context.Context, log.EnabledParameters) bool {
	return true
}

func (l *recordingLogger) Records() []emittedRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := make([]emittedRecord, len(l.records))
	copy(records, l.records)

	return records
}
