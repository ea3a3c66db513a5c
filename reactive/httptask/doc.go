// Package httptask turns HTTP requests into reactive publishers and logs them as one-liners.
//
// DataTask performs the request lazily, once per subscription, when the subscriber signals demand.
// LoggingDataTask adds request/response logging on top:
//
//	task, err := httptask.LoggingDataTask(http.DefaultClient, req, logger, httptask.WithLevel(slog.LevelInfo))
//
//	// URL request: POST http://example.com [Accept: application/json] {"name":"Sample1","age":22}
//	// URL response: 200 http://example.com 27 byte(s)
//
// The request line is written when LoggingDataTask is called, not when a subscription starts.
package httptask
