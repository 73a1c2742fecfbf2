package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// exchange is a completed 2xx round-trip.
type exchange struct {
	status  int
	body    []byte
	request *RequestMeta
}

// malformed builds a structure error for a 2xx response that lacks the
// expected fields.
func (x *exchange) malformed(cfg Config, reason string) *Error {
	return &Error{
		Kind:       KindMalformedProviderResponse,
		Provider:   cfg.ID,
		Status:     x.status,
		StatusText: http.StatusText(x.status),
		Body:       string(x.body),
		Message:    fmt.Sprintf("Invalid %s response structure: %s", cfg.Name, reason),
		Request:    x.request,
	}
}

// post sends payload to url. Non-2xx responses are classified and transport
// failures become NetworkError; every returned *Error carries the request
// metadata for diagnostics.
func post(ctx context.Context, client *http.Client, cfg Config, url string, header http.Header, payload []byte) (*exchange, error) {
	meta := &RequestMeta{URL: url, Method: http.MethodPost, Headers: header.Clone()}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header = header

	httpResp, err := client.Do(httpReq)
	if err != nil {
		e := networkError(cfg, err)
		e.Request = meta
		return nil, e
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		e := networkError(cfg, fmt.Errorf("reading response: %w", err))
		e.Request = meta
		return nil, e
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		e := classifyStatus(cfg, httpResp.StatusCode, httpResp.Header, respBody)
		e.StatusText = statusText(httpResp)
		e.Request = meta
		return nil, e
	}
	return &exchange{status: httpResp.StatusCode, body: respBody, request: meta}, nil
}

// statusText returns the reason phrase the server sent, e.g. "Too Many Requests".
func statusText(resp *http.Response) string {
	code := fmt.Sprintf("%d ", resp.StatusCode)
	if len(resp.Status) > len(code) && resp.Status[:len(code)] == code {
		return resp.Status[len(code):]
	}
	return http.StatusText(resp.StatusCode)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = RequestTimeout
	}
	return context.WithTimeout(ctx, d)
}
