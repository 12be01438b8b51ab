package app

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kjstillabower/weathernow/internal/config"
	"github.com/kjstillabower/weathernow/internal/testhelpers"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, provider *testhelpers.FakeProvider, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	opts := Options{Stdout: &stdout, Stderr: &stderr, Timeout: 2 * time.Second}
	if provider != nil {
		opts.APIURL = provider.URL()
	} else {
		opts.APIURL = "http://127.0.0.1:1/unreachable"
	}
	code := Run(context.Background(), args, opts)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRun_BostonImperial(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")
	provider := testhelpers.NewFakeProvider(t, testhelpers.RespondRaw(http.StatusOK, testhelpers.BostonPayload))

	res := run(t, provider, "Boston", "--units", "imperial", "--api-key", "flag-key")

	require.Equal(t, ExitOK, res.code, "stderr: %s", res.stderr)
	require.Empty(t, res.stderr)
	lines := strings.Split(strings.TrimSuffix(res.stdout, "\n"), "\n")
	require.Len(t, lines, 6)
	require.Equal(t, "Boston, US — Clear sky", lines[0])
	require.Equal(t, "Temp: 70°F  (feels like 68°F)", lines[1])
	require.Equal(t, "Wind: 5 mph", lines[4])
	require.Equal(t, "Updated: 2023-11-14 22:13 UTC", lines[5])

	q := provider.LastQuery()
	require.Equal(t, "Boston", q.Get("q"))
	require.Equal(t, "flag-key", q.Get("appid"))
	require.Equal(t, "imperial", q.Get("units"))
	require.Equal(t, "en", q.Get("lang"))
}

func TestRun_StandardUnitsUseKelvin(t *testing.T) {
	provider := testhelpers.NewFakeProvider(t, testhelpers.RespondRaw(http.StatusOK, `{"cod":200,"name":"Oslo","main":{"temp":280}}`))

	res := run(t, provider, "Oslo", "--units", "standard", "--api-key", "k")

	require.Equal(t, ExitOK, res.code)
	require.Contains(t, res.stdout, "Temp: 280K  (feels like ?K)")
	require.Contains(t, res.stdout, "Wind: ? m/s")
}

func TestRun_NonStringNameStillRenders(t *testing.T) {
	provider := testhelpers.NewFakeProvider(t, testhelpers.RespondRaw(http.StatusOK, `{"cod":200,"name":5}`))

	res := run(t, provider, "Five", "--api-key", "k")

	require.Equal(t, ExitOK, res.code, "stderr: %s", res.stderr)
	require.True(t, strings.HasPrefix(res.stdout, "5,  — \n"), "stdout: %q", res.stdout)
}

func TestRun_APIKeyFromEnvironment(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "env-key")
	provider := testhelpers.NewFakeProvider(t, testhelpers.RespondRaw(http.StatusOK, testhelpers.BostonPayload))

	res := run(t, provider, "Boston", "--lang", "fr")

	require.Equal(t, ExitOK, res.code)
	require.Equal(t, "env-key", provider.LastQuery().Get("appid"))
	require.Equal(t, "metric", provider.LastQuery().Get("units"))
	require.Equal(t, "fr", provider.LastQuery().Get("lang"))
}

func TestRun_LogicalAPIError(t *testing.T) {
	provider := testhelpers.NewFakeProvider(t, testhelpers.RespondRaw(http.StatusOK, testhelpers.CityNotFoundPayload))

	res := run(t, provider, "Atlantis", "--api-key", "k")

	require.Equal(t, ExitFailure, res.code)
	require.Empty(t, res.stdout)
	require.Equal(t, "API error: city not found\n", res.stderr)
}

func TestRun_HTTPNotFoundStillShowsProviderMessage(t *testing.T) {
	provider := testhelpers.NewFakeProvider(t, testhelpers.RespondRaw(http.StatusNotFound, testhelpers.CityNotFoundPayload))

	res := run(t, provider, "Atlantis", "--api-key", "k")

	require.Equal(t, ExitFailure, res.code)
	require.Empty(t, res.stdout)
	require.Contains(t, res.stderr, "request failed")
	require.Contains(t, res.stderr, "city not found")
}

func TestRun_ServerErrorIsTransportFailure(t *testing.T) {
	provider := testhelpers.NewFakeProvider(t, testhelpers.RespondRaw(http.StatusBadGateway, "bad gateway"))

	res := run(t, provider, "Boston", "--api-key", "k")

	require.Equal(t, ExitFailure, res.code)
	require.Contains(t, res.stderr, "HTTP 502")
	require.Equal(t, 1, provider.RequestCount())
}

func TestRun_InvalidJSON(t *testing.T) {
	provider := testhelpers.NewFakeProvider(t, testhelpers.RespondRaw(http.StatusOK, "<html>maintenance</html>"))

	res := run(t, provider, "Boston", "--api-key", "k")

	require.Equal(t, ExitFailure, res.code)
	require.Contains(t, res.stderr, "invalid response")
}

func TestRun_Timeout(t *testing.T) {
	provider := testhelpers.NewFakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})
	var stdout, stderr bytes.Buffer

	code := Run(context.Background(), []string{"Boston", "--api-key", "k"}, Options{
		Stdout:  &stdout,
		Stderr:  &stderr,
		APIURL:  provider.URL(),
		Timeout: 50 * time.Millisecond,
	})

	require.Equal(t, ExitFailure, code)
	require.Empty(t, stdout.String())
	require.Contains(t, stderr.String(), "timeout")
}

func TestRun_MissingAPIKeyMakesNoRequest(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")
	provider := testhelpers.NewFakeProvider(t, testhelpers.RespondRaw(http.StatusOK, testhelpers.BostonPayload))

	res := run(t, provider, "Boston")

	require.Equal(t, ExitFailure, res.code)
	require.Empty(t, res.stdout)
	require.Contains(t, res.stderr, "--api-key")
	require.Contains(t, res.stderr, config.EnvAPIKey)
	require.Zero(t, provider.RequestCount())
}

func TestRun_UsageErrorsMakeNoRequest(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing city", nil, "city"},
		{"invalid units", []string{"Boston", "--units", "kelvin", "--api-key", "k"}, "--units"},
		{"unknown flag", []string{"Boston", "--format", "json"}, "format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := testhelpers.NewFakeProvider(t, testhelpers.RespondRaw(http.StatusOK, testhelpers.BostonPayload))

			res := run(t, provider, tt.args...)

			require.Equal(t, ExitUsage, res.code)
			require.Empty(t, res.stdout)
			require.Contains(t, res.stderr, "usage: weathernow")
			require.Contains(t, res.stderr, tt.want)
			require.Zero(t, provider.RequestCount())
		})
	}
}

func TestRun_Help(t *testing.T) {
	res := run(t, nil, "--help")

	require.Equal(t, ExitOK, res.code)
	require.Contains(t, res.stdout, "usage: weathernow")
	require.Empty(t, res.stderr)
}
