package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive"
	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive/httptask"
)

const (
	keyMethod  = "method"
	keyHeader  = "header"
	keyData    = "data"
	keyPrefix  = "prefix"
	keyLevel   = "level"
	keyTimeout = "timeout"
)

func newGetCommand(v *viper.Viper) *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get <url>",
		Short: "Send a request and print the response",
		Long:  `Send a request to the given URL. The request line is logged before it is sent, the response line once it arrived.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, v, args[0])
		},
	}

	getCmd.Flags().StringP(keyMethod, "X", http.MethodGet, "HTTP method")
	getCmd.Flags().StringArrayP(keyHeader, "H", nil, `request header as "Name: value", repeatable`)
	getCmd.Flags().StringP(keyData, "d", "", "request body")
	getCmd.Flags().String(keyPrefix, "URL", "prefix of the logged lines")
	getCmd.Flags().String(keyLevel, "info", "level of the logged lines: debug, info, warn or error")
	getCmd.Flags().Duration(keyTimeout, 30*time.Second, "request timeout")

	_ = v.BindPFlags(getCmd.Flags())

	return getCmd
}

func runGet(cmd *cobra.Command, v *viper.Viper, url string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString(keyLevel))); err != nil {
		return fmt.Errorf("invalid level: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), v.GetDuration(keyTimeout))
	defer cancel()

	headers, _ := cmd.Flags().GetStringArray(keyHeader)
	if !cmd.Flags().Changed(keyHeader) {
		headers = v.GetStringSlice(keyHeader)
	}

	req, err := newRequest(ctx, v.GetString(keyMethod), url, v.GetString(keyData), headers)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	task, err := httptask.LoggingDataTask(
		http.DefaultClient,
		req,
		logger,
		httptask.WithLevel(level),
		httptask.WithPrefix(v.GetString(keyPrefix)),
	)
	if err != nil {
		return err
	}

	result, err := await(task)
	if err != nil {
		return err
	}

	return printResult(cmd.OutOrStdout(), result)
}

func newRequest(ctx context.Context, method, url, data string, headers []string) (*http.Request, error) {
	var body io.Reader
	if data != "" {
		body = strings.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), url, body)
	if err != nil {
		return nil, err
	}

	for _, header := range headers {
		name, value, found := strings.Cut(header, ":")
		if !found {
			return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", header)
		}

		req.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	return req, nil
}

// await blocks until task completed and returns the last delivered Result.
func await(task reactive.Publisher[httptask.Result]) (httptask.Result, error) {
	var result httptask.Result
	done := make(chan reactive.Completion, 1)

	reactive.Sink(
		task,
		func(r httptask.Result) { result = r },
		func(completion reactive.Completion) { done <- completion },
	)

	completion := <-done

	return result, completion.Err()
}

func printResult(out io.Writer, result httptask.Result) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	if err := table.Append([]string{"Status", result.Response.Status}); err != nil {
		return err
	}

	names := make([]string, 0, len(result.Response.Header))
	for name := range result.Response.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := table.Append([]string{name, strings.Join(result.Response.Header.Values(name), ", ")}); err != nil {
			return err
		}
	}

	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintln(out, string(result.Data))

	return err
}
