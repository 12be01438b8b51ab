package observability

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	registry *prometheus.Registry

	// OpenWeatherMap call count by outcome label.
	WeatherAPICallsTotal *prometheus.CounterVec

	// Upstream latency per request, including timeouts.
	WeatherAPIDuration *prometheus.HistogramVec

	// Failed lookups by error category (timeout, network, http_status, parsing, api).
	WeatherAPIErrorsTotal *prometheus.CounterVec
)

func init() {
	registry = prometheus.NewRegistry()

	WeatherAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiCallsTotal",
			Help: "Total number of OpenWeatherMap API calls",
		},
		[]string{"status"},
	)
	WeatherAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherApiDurationSeconds",
			Help:    "OpenWeatherMap API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	WeatherAPIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiErrorsTotal",
			Help: "Total number of failed weather lookups by error category",
		},
		[]string{"category"},
	)

	registry.MustRegister(WeatherAPICallsTotal, WeatherAPIDuration, WeatherAPIErrorsTotal)
}

// Registry exposes the process registry, mainly for tests.
func Registry() *prometheus.Registry {
	return registry
}

// Snapshot writes every collected series to logger at debug level.
func Snapshot(logger *zap.Logger) error {
	if logger == nil || !logger.Core().Enabled(zap.DebugLevel) {
		return nil
	}
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			fields := []zap.Field{
				zap.String("metric", mf.GetName()),
				zap.String("labels", strings.Join(labels, ",")),
			}
			if h := m.GetHistogram(); h != nil {
				fields = append(fields, zap.Uint64("count", h.GetSampleCount()), zap.Float64("sum", h.GetSampleSum()))
			} else {
				fields = append(fields, zap.Float64("value", m.GetCounter().GetValue()))
			}
			logger.Debug("metric", fields...)
		}
	}
	return nil
}
