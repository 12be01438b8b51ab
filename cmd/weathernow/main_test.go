package main

import "testing"

// TestCoverageGaps_IntentionallyUntested documents why cmd/weathernow has no unit tests.
// Run with -v to see skip reason.
func TestCoverageGaps_IntentionallyUntested(t *testing.T) {
	t.Skip("main.go is wiring-only; the pipeline is covered through app.Run in internal/app")
}
