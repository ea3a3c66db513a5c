package reactive

import (
	"fmt"
	"log/slog"
)

const (
	logMsgStarted   = "%s started"
	logMsgError     = "%s error: %s"
	logMsgFinished  = "%s finished"
	logMsgCancelled = "%s cancelled"
)

// Log logs the values and the lifecycle of every subscription to upstream.
//
// Lifecycle events are logged as:
//   - subscription: "<prefix> started" (info)
//   - failure: "<prefix> error: <error>" (error)
//   - finished: "<prefix> finished" (info)
//   - cancel: "<prefix> cancelled" (info)
//
// Every value is handed to logCommand together with the logger, so the caller controls the message.
// With a nil logger the returned publisher is a plain pass-through.
// A panic raised by the logger or by logCommand never reaches the stream.
//
// Usage:
//
//	logged := reactive.Log[int](reactive.Sequence(1, 2, 3), logger, "Counter", func(l reactive.Logger, v int) {
//		l.Info(fmt.Sprintf("Counter got %d new coin(s)", v))
//	})
//
//	// Counter started
//	// Counter got 1 new coin(s)
//	// Counter got 2 new coin(s)
//	// Counter got 3 new coin(s)
//	// Counter finished
func Log[O any](upstream Publisher[O], logger Logger, prefix string, logCommand func(Logger, O)) Publisher[O] {
	if logger == nil {
		return HandleEvents(upstream, EventHooks[O]{})
	}

	return HandleEvents(upstream, EventHooks[O]{
		ReceiveSubscription: func(Subscription) {
			guard(func() { logger.Info(fmt.Sprintf(logMsgStarted, prefix)) })
		},
		ReceiveValue: func(value O) {
			guard(func() { logCommand(logger, value) })
		},
		ReceiveCompletion: func(completion Completion) {
			if err := completion.Err(); err != nil {
				guard(func() { logger.Error(fmt.Sprintf(logMsgError, prefix, err.Error())) })
				return
			}

			guard(func() { logger.Info(fmt.Sprintf(logMsgFinished, prefix)) })
		},
		ReceiveCancel: func() {
			guard(func() { logger.Info(fmt.Sprintf(logMsgCancelled, prefix)) })
		},
	})
}

// LogOutput logs only the values of upstream through logCommand.
// No lifecycle messages are written. With a nil logger the returned publisher is a plain pass-through.
func LogOutput[O any](upstream Publisher[O], logger Logger, logCommand func(Logger, O)) Publisher[O] {
	if logger == nil {
		return HandleEvents(upstream, EventHooks[O]{})
	}

	return HandleEvents(upstream, EventHooks[O]{
		ReceiveValue: func(value O) {
			guard(func() { logCommand(logger, value) })
		},
	})
}

// LogAt writes msg to logger at the given level.
// Levels between the four Logger methods are rounded down, e.g. slog.LevelInfo+2 logs at info.
func LogAt(logger Logger, level slog.Level, msg string, args ...any) {
	if logger == nil {
		return
	}

	switch {
	case level >= slog.LevelError:
		logger.Error(msg, args...)
	case level >= slog.LevelWarn:
		logger.Warn(msg, args...)
	case level >= slog.LevelInfo:
		logger.Info(msg, args...)
	default:
		logger.Debug(msg, args...)
	}
}

// guard runs a logging side effect and swallows a panic it raises.
func guard(sideEffect func()) {
	defer func() {
		_ = recover()
	}()

	sideEffect()
}
