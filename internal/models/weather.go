package models

import (
	"bytes"
	"encoding/json"
)

// Report is the current-weather payload as returned by OpenWeatherMap.
// Every field is optional; numbers keep the provider's literal text.
type Report struct {
	Name Text `json:"name"`
	Sys  struct {
		Country Text `json:"country"`
	} `json:"sys"`
	Weather []Condition `json:"weather"`
	Main    struct {
		Temp      *json.Number `json:"temp"`
		FeelsLike *json.Number `json:"feels_like"`
		TempMin   *json.Number `json:"temp_min"`
		TempMax   *json.Number `json:"temp_max"`
		Humidity  *json.Number `json:"humidity"`
		Pressure  *json.Number `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed *json.Number `json:"speed"`
	} `json:"wind"`
	Dt *json.Number `json:"dt"`

	// Cod and Message carry the provider's embedded status. Cod arrives as
	// either a number or a string depending on the endpoint outcome.
	Cod     json.RawMessage `json:"cod"`
	Message json.RawMessage `json:"message"`
}

type Condition struct {
	Main        Text `json:"main"`
	Description Text `json:"description"`
}

// Text is a display string that tolerates any JSON value: a string decodes
// to its contents, null to "", and numbers, booleans, objects or arrays to
// their literal text.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(data)
	}
	return nil
}

// PrimaryCondition returns the first weather entry, or a zero Condition
// when the list is absent or empty.
func (r Report) PrimaryCondition() Condition {
	if len(r.Weather) == 0 {
		return Condition{}
	}
	return r.Weather[0]
}

// Units selects the measurement system requested from the provider.
const (
	UnitsStandard = "standard"
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

// SupportedUnits lists the accepted units values in display order.
var SupportedUnits = []string{UnitsStandard, UnitsMetric, UnitsImperial}
