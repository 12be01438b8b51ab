// Package app wires argument parsing, credential lookup, the OpenWeatherMap
// client and the formatter into one invocation of the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weathernow/internal/client"
	"github.com/kjstillabower/weathernow/internal/config"
	"github.com/kjstillabower/weathernow/internal/observability"
	"github.com/kjstillabower/weathernow/internal/service"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Options overrides process-level dependencies. Zero values select the
// real ones: os.Stdout, os.Stderr, the OpenWeatherMap endpoint, a 10s
// timeout and a no-op logger.
type Options struct {
	Stdout  io.Writer
	Stderr  io.Writer
	APIURL  string
	Timeout time.Duration
	Logger  *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.APIURL == "" {
		o.APIURL = config.DefaultAPIURL
	}
	if o.Timeout <= 0 {
		o.Timeout = config.DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Run executes one lookup for args (without the program name) and returns
// the process exit code. The report goes to Stdout; every failure message
// goes to Stderr. Usage and credential errors are reported before any
// network activity.
func Run(ctx context.Context, args []string, opts Options) int {
	opts = opts.withDefaults()
	logger := opts.Logger
	defer func() {
		if err := observability.FlushTelemetry(logger); err != nil {
			logger.Debug("telemetry flush", zap.Error(err))
		}
	}()

	cfg, err := config.Parse(args)
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			config.WriteUsage(opts.Stdout)
			return ExitOK
		}
		config.WriteUsage(opts.Stderr)
		fmt.Fprintf(opts.Stderr, "%s: %v\n", config.ProgramName, err)
		return ExitUsage
	}

	apiKey, err := config.ResolveAPIKey(cfg)
	if err != nil {
		fmt.Fprintf(opts.Stderr, "%s: %v\n", config.ProgramName, err)
		return ExitFailure
	}

	weatherClient, err := client.NewOpenWeatherClient(apiKey, opts.APIURL, opts.Timeout, logger)
	if err != nil {
		fmt.Fprintf(opts.Stderr, "%s: weather client: %v\n", config.ProgramName, err)
		return ExitFailure
	}
	svc := service.NewWeatherService(weatherClient, logger)

	out, err := svc.CurrentReport(ctx, client.Query{City: cfg.City, Units: cfg.Units, Lang: cfg.Lang})
	if err != nil {
		fmt.Fprintln(opts.Stderr, describeError(err))
		return ExitFailure
	}

	fmt.Fprintln(opts.Stdout, out)
	return ExitOK
}

// describeError renders a fetch failure for the terminal. Logical API
// errors keep the provider's wording.
func describeError(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, client.ErrDecode):
		return fmt.Sprintf("%s: invalid response from weather service: %v", config.ProgramName, err)
	default:
		return fmt.Sprintf("%s: request failed: %v", config.ProgramName, err)
	}
}
