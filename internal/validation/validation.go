package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kjstillabower/weathernow/internal/models"
)

// ErrCityEmpty is returned when the city is empty or whitespace-only after trim.
var ErrCityEmpty = errors.New("city is required")

// ErrUnitsInvalid is returned when units is not one of models.SupportedUnits.
var ErrUnitsInvalid = errors.New("invalid units")

// ValidateCity trims the input and rejects empty values. Any other text is
// passed through; the provider owns the interpretation of "London,UK" and
// similar qualified names.
func ValidateCity(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrCityEmpty
	}
	return s, nil
}

// ValidateUnits matches input case-insensitively against the supported
// units and returns the canonical lower-case value.
func ValidateUnits(input string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	for _, u := range models.SupportedUnits {
		if s == u {
			return u, nil
		}
	}
	return "", fmt.Errorf("%w %q (choose from %s)", ErrUnitsInvalid, input, strings.Join(models.SupportedUnits, ", "))
}
