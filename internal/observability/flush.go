package observability

import (
	"fmt"

	"go.uber.org/zap"
)

// FlushTelemetry logs the metrics snapshot at debug level and flushes the
// logger. Call once before the process exits.
func FlushTelemetry(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}
	if err := Snapshot(logger); err != nil {
		return fmt.Errorf("metrics snapshot: %w", err)
	}
	if err := logger.Sync(); err != nil {
		return fmt.Errorf("flush logs: %w", err)
	}
	return nil
}
