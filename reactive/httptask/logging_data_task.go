package httptask

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive"
)

const (
	defaultPrefix = "URL"

	logMsgRequest  = "%s request: %s"
	logMsgResponse = "%s response: %s %d byte(s)"
)

type loggingConfig struct {
	level  slog.Level
	prefix string
}

// Option defines a functional option for configuring LoggingDataTask.
type Option func(*loggingConfig) error

// WithLevel sets the level of the request and response lines. Defaults to slog.LevelDebug.
func WithLevel(level slog.Level) Option {
	return func(c *loggingConfig) error {
		c.level = level
		return nil
	}
}

// WithPrefix sets the text in front of every line. Defaults to "URL".
func WithPrefix(prefix string) Option {
	return func(c *loggingConfig) error {
		c.prefix = prefix
		return nil
	}
}

// LoggingDataTask creates a DataTask that logs its request and every response as one-liners.
//
// The request line is logged immediately, exactly once, whether or not the publisher is ever subscribed.
// A response line is logged for every delivered Result. Failures are not logged.
// With a nil logger nothing is logged and the publisher behaves like DataTask.
func LoggingDataTask(
	client *http.Client,
	req *http.Request,
	logger reactive.Logger,
	opts ...Option,
) (reactive.Publisher[Result], error) {
	if req == nil {
		return nil, ErrNilHTTPRequest
	}

	cfg := loggingConfig{level: slog.LevelDebug, prefix: defaultPrefix}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	reactive.LogAt(logger, cfg.level, fmt.Sprintf(logMsgRequest, cfg.prefix, RequestOneLiner(req)))

	return reactive.LogOutput(DataTask(client, req), logger, func(l reactive.Logger, result Result) {
		reactive.LogAt(l, cfg.level, fmt.Sprintf(logMsgResponse, cfg.prefix, ResponseOneLiner(result.Response), len(result.Data)))
	}), nil
}
