package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
)

// ErrTransport marks failures to obtain a successful HTTP response:
// connection errors, timeouts, non-2xx statuses and unreadable bodies.
var ErrTransport = errors.New("transport error")

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// StatusError is returned by GetText for non-2xx responses. Body holds the
// (possibly truncated) response text so callers can extract provider details.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Unwrap() error {
	return ErrTransport
}

// Is matches the client sentinels for well-known statuses (401, 404, 429, 5xx).
func (e *StatusError) Is(target error) bool {
	return target != nil && codeSentinel(strconv.Itoa(e.StatusCode)) == target
}

type requestIDKey struct{}

// WithRequestID attaches an id sent as the X-Request-ID header by GetText.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id set by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GetText performs one GET of baseURL with params appended to its query and
// returns the body. The timeout is the one configured on hc. There is no
// retry; every failure wraps ErrTransport.
func GetText(ctx context.Context, hc *http.Client, baseURL string, params url.Values) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid URL: %w", ErrTransport, err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if id := RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := hc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: request timeout: %w", ErrTransport, stripURL(err))
		}
		return "", fmt.Errorf("%w: http request failed: %w", ErrTransport, stripURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read response body: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return string(body), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// stripURL drops the request URL from a *url.Error; it carries the appid.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}
