// Package testhelpers provides a fake OpenWeatherMap endpoint for tests.
package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// WeatherPath mirrors the provider's current-weather route.
const WeatherPath = "/data/2.5/weather"

// FakeProvider serves WeatherPath from an httptest server and records every
// request it receives.
type FakeProvider struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

type recordedRequest struct {
	query  url.Values
	header http.Header
}

// NewFakeProvider starts a provider that answers with respond. The server is
// closed when the test ends.
func NewFakeProvider(t *testing.T, respond http.HandlerFunc) *FakeProvider {
	t.Helper()
	p := &FakeProvider{}

	router := mux.NewRouter()
	router.HandleFunc(WeatherPath, func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.requests = append(p.requests, recordedRequest{query: r.URL.Query(), header: r.Header.Clone()})
		p.mu.Unlock()
		respond(w, r)
	}).Methods(http.MethodGet)

	p.server = httptest.NewServer(router)
	t.Cleanup(p.server.Close)
	return p
}

// URL is the full endpoint URL to hand to the client.
func (p *FakeProvider) URL() string {
	return p.server.URL + WeatherPath
}

// Close stops the server early, e.g. to simulate a refused connection.
func (p *FakeProvider) Close() {
	p.server.Close()
}

// RequestCount returns how many requests reached the endpoint.
func (p *FakeProvider) RequestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// LastQuery returns the query parameters of the most recent request.
func (p *FakeProvider) LastQuery() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.requests) == 0 {
		return nil
	}
	return p.requests[len(p.requests)-1].query
}

// LastHeader returns a header of the most recent request.
func (p *FakeProvider) LastHeader(name string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.requests) == 0 {
		return ""
	}
	return p.requests[len(p.requests)-1].header.Get(name)
}

// RespondJSON answers every request with status and body encoded as JSON.
func RespondJSON(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

// RespondRaw answers every request with status and a literal body.
func RespondRaw(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// BostonPayload is a complete imperial-units response for Boston, US.
const BostonPayload = `{
  "coord": {"lon": -71.0598, "lat": 42.3584},
  "weather": [{"id": 800, "main": "Clear", "description": "clear sky", "icon": "01d"}],
  "main": {"temp": 70, "feels_like": 68, "temp_min": 65, "temp_max": 75, "pressure": 1015, "humidity": 40},
  "wind": {"speed": 5, "deg": 250},
  "dt": 1700000000,
  "sys": {"country": "US"},
  "name": "Boston",
  "cod": 200
}`

// CityNotFoundPayload is the provider's body for an unknown city.
const CityNotFoundPayload = `{"cod":"404","message":"city not found"}`
