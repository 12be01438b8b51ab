package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weathernow/internal/client"
	"github.com/kjstillabower/weathernow/internal/format"
)

// WeatherService turns a query into the printable report: one upstream
// fetch followed by formatting. It holds no state between calls.
type WeatherService struct {
	client client.WeatherFetcher
	logger *zap.Logger
}

// NewWeatherService creates a WeatherService. A nil logger disables logging.
func NewWeatherService(fetcher client.WeatherFetcher, logger *zap.Logger) *WeatherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherService{client: fetcher, logger: logger}
}

// CurrentReport fetches the current weather for q and renders it with the
// query's units. Fetch errors are returned unchanged so callers can tell
// transport, decode and logical API failures apart.
func (s *WeatherService) CurrentReport(ctx context.Context, q client.Query) (string, error) {
	start := time.Now()
	report, err := s.client.FetchCurrent(ctx, q)
	if err != nil {
		return "", err
	}
	s.logger.Debug("weather served",
		zap.String("city", q.City),
		zap.String("resolved_name", string(report.Name)),
		zap.Duration("duration", time.Since(start)))
	return format.Report(report, q.Units), nil
}
