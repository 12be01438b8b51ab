package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kjstillabower/weathernow/internal/models"
	"github.com/kjstillabower/weathernow/internal/observability"
)

// WeatherFetcher retrieves the current-weather report for a query.
type WeatherFetcher interface {
	FetchCurrent(ctx context.Context, q Query) (models.Report, error)
}

var (
	// ErrAPI marks a well-formed response whose embedded status is not "200".
	ErrAPI = errors.New("API error")

	// ErrDecode marks a response body that is not a JSON object.
	ErrDecode = errors.New("decode response")

	ErrInvalidAPIKey    = errors.New("invalid API key")
	ErrLocationNotFound = errors.New("location not found")
	ErrRateLimited      = errors.New("rate limited")
	ErrUpstreamFailure  = errors.New("upstream failure")
)

// successCode is the provider's embedded status for a usable report.
const successCode = "200"

// Query is one lookup: the city plus the units and language settings.
type Query struct {
	City  string
	Units string
	Lang  string
}

// APIError is a logical provider error: the HTTP exchange succeeded but the
// payload's cod field signals failure.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return "API error: " + e.Message
}

func (e *APIError) Unwrap() error {
	return ErrAPI
}

// Is lets callers match well-known provider codes with the client sentinels.
func (e *APIError) Is(target error) bool {
	return codeSentinel(e.Code) == target && target != nil
}

// OpenWeatherClient fetches current weather from OpenWeatherMap.
type OpenWeatherClient struct {
	apiKey string
	apiURL string
	client *http.Client
	logger *zap.Logger
}

// NewOpenWeatherClient returns a client for apiURL whose single request is
// bounded by timeout. A nil logger disables logging.
func NewOpenWeatherClient(apiKey, apiURL string, timeout time.Duration, logger *zap.Logger) (*OpenWeatherClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if _, err := url.Parse(apiURL); err != nil || apiURL == "" {
		return nil, fmt.Errorf("invalid API URL %q", apiURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenWeatherClient{
		apiKey: apiKey,
		apiURL: apiURL,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

// FetchCurrent issues exactly one request and returns the decoded report
// unmodified. Transport failures wrap ErrTransport, unparsable bodies wrap
// ErrDecode and a non-"200" embedded status is returned as *APIError.
func (c *OpenWeatherClient) FetchCurrent(ctx context.Context, q Query) (models.Report, error) {
	report, err := c.fetch(ctx, q)
	if err != nil {
		category := CategorizeError(err)
		observability.WeatherAPIErrorsTotal.WithLabelValues(string(category)).Inc()
		c.logger.Debug("weather lookup failed",
			zap.String("request_id", RequestIDFromContext(ctx)),
			zap.String("category", string(category)),
			zap.Error(err))
		return models.Report{}, err
	}
	return report, nil
}

func (c *OpenWeatherClient) fetch(ctx context.Context, q Query) (models.Report, error) {
	if RequestIDFromContext(ctx) == "" {
		ctx = WithRequestID(ctx, uuid.NewString())
	}
	requestID := RequestIDFromContext(ctx)

	c.logger.Debug("weather request",
		zap.String("request_id", requestID),
		zap.String("city", q.City),
		zap.String("units", q.Units),
		zap.String("lang", q.Lang))

	start := time.Now()
	body, err := GetText(ctx, c.client, c.apiURL, c.buildParams(q))
	duration := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
		var se *StatusError
		if errors.As(err, &se) {
			status = statusLabel(se.StatusCode)
		}
	}
	observability.WeatherAPICallsTotal.WithLabelValues(status).Inc()
	observability.WeatherAPIDuration.WithLabelValues(status).Observe(duration.Seconds())
	c.logger.Debug("weather response",
		zap.String("request_id", requestID),
		zap.String("status", status),
		zap.Duration("duration", duration))

	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			if msg, ok := providerMessage([]byte(se.Body)); ok {
				return models.Report{}, fmt.Errorf("%w: %s", err, msg)
			}
		}
		return models.Report{}, err
	}

	var report models.Report
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return models.Report{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if code := embeddedStatus(report.Cod); code != successCode {
		msg, ok := rawText(report.Message)
		if !ok {
			msg = "Unknown error"
		}
		return models.Report{}, &APIError{Code: code, Message: msg}
	}
	return report, nil
}

func (c *OpenWeatherClient) buildParams(q Query) url.Values {
	params := url.Values{}
	params.Set("q", q.City)
	params.Set("appid", c.apiKey)
	params.Set("units", q.Units)
	params.Set("lang", q.Lang)
	return params
}

// embeddedStatus renders cod the way it reads in the payload: 200 and "200"
// both become "200". An absent or null cod yields "".
func embeddedStatus(raw json.RawMessage) string {
	s, _ := rawText(raw)
	return s
}

// rawText returns a JSON string's contents or any other JSON value's
// literal text. ok is false for absent or null values.
func rawText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, true
		}
	}
	return string(raw), true
}

// providerMessage extracts the message field from an error body, if any.
func providerMessage(body []byte) (string, bool) {
	var payload struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	msg, ok := rawText(payload.Message)
	if !ok || msg == "" {
		return "", false
	}
	return msg, true
}

func codeSentinel(code string) error {
	switch code {
	case "401":
		return ErrInvalidAPIKey
	case "404":
		return ErrLocationNotFound
	case "429":
		return ErrRateLimited
	}
	if len(code) == 3 && code[0] == '5' {
		return ErrUpstreamFailure
	}
	return nil
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
