package pgjournal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive"
)

const (
	defaultReplayPrefix = "Journal"

	logMsgReplayRequest = "%s request: replay %s after %d"
	logMsgReplayEntry   = "%s entry: %d %s %d byte(s)"
)

// Replay returns a cold publisher of the entries of streamID with a sequence number greater than after.
// The entries are loaded from the database anew for every subscription.
func Replay(ctx context.Context, journal *Journal, streamID uuid.UUID, after int64) reactive.Publisher[Entry] {
	if journal == nil {
		return reactive.Fail[Entry](ErrNilJournal)
	}

	return reactive.Deferred(func() reactive.Publisher[Entry] {
		entries, err := journal.Load(ctx, streamID, after)
		if err != nil {
			return reactive.Fail[Entry](err)
		}

		return reactive.Sequence(entries...)
	})
}

// ReplayValues is Replay with the payloads decoded into values of type O.
// A payload that cannot be decoded fails the stream after the values decoded before it.
func ReplayValues[O any](ctx context.Context, journal *Journal, streamID uuid.UUID, after int64) reactive.Publisher[O] {
	if journal == nil {
		return reactive.Fail[O](ErrNilJournal)
	}

	return reactive.Deferred(func() reactive.Publisher[O] {
		entries, err := journal.Load(ctx, streamID, after)
		if err != nil {
			return reactive.Fail[O](err)
		}

		values := make([]O, 0, len(entries))

		for _, entry := range entries {
			var value O
			if decodeErr := jsonValues.Unmarshal(entry.PayloadJSON, &value); decodeErr != nil {
				return reactive.SequenceFailing(
					fmt.Errorf("entry %d: %w", entry.SequenceNumber, errors.Join(ErrDecodingValueFailed, decodeErr)),
					values...,
				)
			}

			values = append(values, value)
		}

		return reactive.Sequence(values...)
	})
}

type replayLoggingConfig struct {
	level  slog.Level
	prefix string
}

// ReplayOption defines a functional option for configuring LoggingReplay.
type ReplayOption func(*replayLoggingConfig) error

// WithReplayLevel sets the level of the replay lines. Defaults to slog.LevelDebug.
func WithReplayLevel(level slog.Level) ReplayOption {
	return func(c *replayLoggingConfig) error {
		c.level = level
		return nil
	}
}

// WithReplayPrefix sets the text in front of every replay line. Defaults to "Journal".
func WithReplayPrefix(prefix string) ReplayOption {
	return func(c *replayLoggingConfig) error {
		c.prefix = prefix
		return nil
	}
}

// LoggingReplay is Replay with a request line logged immediately and one line per replayed entry.
func LoggingReplay(
	ctx context.Context,
	journal *Journal,
	streamID uuid.UUID,
	after int64,
	logger reactive.Logger,
	opts ...ReplayOption,
) (reactive.Publisher[Entry], error) {
	if journal == nil {
		return nil, ErrNilJournal
	}

	cfg := replayLoggingConfig{level: slog.LevelDebug, prefix: defaultReplayPrefix}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	reactive.LogAt(logger, cfg.level, fmt.Sprintf(logMsgReplayRequest, cfg.prefix, streamID, after))

	return reactive.LogOutput(Replay(ctx, journal, streamID, after), logger, func(l reactive.Logger, entry Entry) {
		reactive.LogAt(l, cfg.level, fmt.Sprintf(
			logMsgReplayEntry,
			cfg.prefix,
			entry.SequenceNumber,
			entry.OccurredAt.UTC().Format(time.RFC3339Nano),
			len(entry.PayloadJSON),
		))
	}), nil
}
