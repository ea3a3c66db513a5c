package httptask

import (
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/AntonStoeckl/reactive-streams-extras-go/internal/truncate"
)

// headerValueLimit is the number of characters of a header value that make it into a request one-liner.
const headerValueLimit = 20

// RequestOneLiner renders req as "METHOD URL [Header: value, ...] body".
//
// Header values are cut after 20 characters. The body is only included when it can be
// read again through req.GetBody, so req stays sendable. Empty parts are left out.
func RequestOneLiner(req *http.Request) string {
	if req == nil {
		return ""
	}

	parts := make([]string, 0, 4)

	if req.Method != "" {
		parts = append(parts, req.Method)
	} else {
		parts = append(parts, http.MethodGet)
	}

	if req.URL != nil {
		parts = append(parts, req.URL.String())
	}

	if headers := headerOneLiner(req.Header); headers != "" {
		parts = append(parts, headers)
	}

	if body := bodyOneLiner(req); body != "" {
		parts = append(parts, body)
	}

	return strings.Join(parts, " ")
}

// ResponseOneLiner renders resp as "STATUS URL".
func ResponseOneLiner(resp *http.Response) string {
	if resp == nil {
		return ""
	}

	line := strconv.Itoa(resp.StatusCode)
	if resp.Request != nil && resp.Request.URL != nil {
		line += " " + resp.Request.URL.String()
	}

	return line
}

func headerOneLiner(header http.Header) string {
	if len(header) == 0 {
		return ""
	}

	values := make(map[string]string, len(header))
	for name, vals := range header {
		values[name] = strings.Join(vals, ",")
	}

	values = truncate.Values(values, headerValueLimit, truncate.Tail, truncate.DefaultLeader)

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	fields := make([]string, 0, len(names))
	for _, name := range names {
		fields = append(fields, name+": "+values[name])
	}

	return "[" + strings.Join(fields, ", ") + "]"
}

func bodyOneLiner(req *http.Request) string {
	if req.GetBody == nil {
		return ""
	}

	body, err := req.GetBody()
	if err != nil {
		return ""
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		return ""
	}

	return string(data)
}
