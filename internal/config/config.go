package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kjstillabower/weathernow/internal/models"
	"github.com/kjstillabower/weathernow/internal/validation"
)

const (
	// DefaultAPIURL is the OpenWeatherMap current-weather endpoint.
	DefaultAPIURL = "https://api.openweathermap.org/data/2.5/weather"

	// DefaultTimeout bounds the single upstream request.
	DefaultTimeout = 10 * time.Second

	// EnvAPIKey supplies the API key when --api-key is omitted.
	EnvAPIKey = "OPENWEATHER_API_KEY"

	// ProgramName is the command name shown in usage text.
	ProgramName = "weathernow"

	defaultUnits = models.UnitsMetric
	defaultLang  = "en"

	flagUnits  = "units"
	flagLang   = "lang"
	flagAPIKey = "api-key"

	keyAPIKey = "api_key"
)

var (
	// ErrUsage marks invalid or missing command-line arguments.
	ErrUsage = errors.New("usage error")

	// ErrHelp is returned by Parse when -h or --help was given.
	ErrHelp = pflag.ErrHelp

	// ErrMissingAPIKey is returned when neither --api-key nor OPENWEATHER_API_KEY is set.
	ErrMissingAPIKey = errors.New("missing API key")
)

// Config holds one invocation's resolved arguments.
type Config struct {
	City   string
	Units  string
	Lang   string
	APIKey string // from --api-key only; see ResolveAPIKey

	flags *pflag.FlagSet
}

// Parse reads the command line (without the program name). Errors other
// than ErrHelp wrap ErrUsage.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}
	fs := newFlagSet(cfg)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	cfg.flags = fs

	switch fs.NArg() {
	case 0:
		return nil, fmt.Errorf("%w: the following argument is required: city", ErrUsage)
	case 1:
	default:
		return nil, fmt.Errorf("%w: unrecognized arguments: %s", ErrUsage, strings.Join(fs.Args()[1:], " "))
	}

	city, err := validation.ValidateCity(fs.Arg(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	cfg.City = city

	units, err := validation.ValidateUnits(cfg.Units)
	if err != nil {
		return nil, fmt.Errorf("%w: argument --units: %v", ErrUsage, err)
	}
	cfg.Units = units

	cfg.Lang = strings.TrimSpace(cfg.Lang)
	if cfg.Lang == "" {
		cfg.Lang = defaultLang
	}
	return cfg, nil
}

// ResolveAPIKey returns the --api-key value when non-empty, otherwise the
// OPENWEATHER_API_KEY environment variable. No config file is consulted.
func ResolveAPIKey(cfg *Config) (string, error) {
	v := viper.New()
	if err := v.BindEnv(keyAPIKey, EnvAPIKey); err != nil {
		return "", fmt.Errorf("bind %s: %w", EnvAPIKey, err)
	}
	if cfg != nil && cfg.flags != nil {
		// An explicitly empty --api-key falls through to the environment.
		if f := cfg.flags.Lookup(flagAPIKey); f != nil && strings.TrimSpace(f.Value.String()) != "" {
			if err := v.BindPFlag(keyAPIKey, f); err != nil {
				return "", fmt.Errorf("bind --%s: %w", flagAPIKey, err)
			}
		}
	} else if cfg != nil && strings.TrimSpace(cfg.APIKey) != "" {
		v.Set(keyAPIKey, cfg.APIKey)
	}

	key := strings.TrimSpace(v.GetString(keyAPIKey))
	if key == "" {
		return "", fmt.Errorf("%w: pass --%s YOUR_KEY or set %s environment variable", ErrMissingAPIKey, flagAPIKey, EnvAPIKey)
	}
	return key, nil
}

// WriteUsage prints the command synopsis and flag defaults.
func WriteUsage(w io.Writer) {
	fs := newFlagSet(&Config{})
	fmt.Fprintf(w, "usage: %s <city> [--units {%s}] [--lang LANG] [--api-key API_KEY]\n\n",
		ProgramName, strings.Join(models.SupportedUnits, ","))
	fmt.Fprintln(w, "Get current weather from OpenWeatherMap.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "positional arguments:")
	fmt.Fprintln(w, `  city    City name (e.g., "Boston", "London,UK", "Tirana,AL")`)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "options:")
	fmt.Fprint(w, fs.FlagUsages())
}

func newFlagSet(cfg *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet(ProgramName, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	fs.StringVar(&cfg.Units, flagUnits, defaultUnits, "Units for temperature/wind (metric=°C, m/s; imperial=°F, mph; standard=K, m/s)")
	fs.StringVar(&cfg.Lang, flagLang, defaultLang, "Language for weather description")
	fs.StringVar(&cfg.APIKey, flagAPIKey, "", "OpenWeatherMap API key (or set "+EnvAPIKey+" env var)")
	return fs
}
