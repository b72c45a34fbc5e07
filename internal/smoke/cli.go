package smoke

import (
	"fmt"
	"os"

	"github.com/mergington/activities/pkg/logger"
)

// SetupLogging initializes the logger for the smoke tool. Verbose runs log
// at debug level.
func SetupLogging(verbose bool) error {
	if err := logger.Init(logger.WithOutput(os.Stdout)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	os.Stdout.WriteString(`Mergington Activities Smoke Test
================================

Exercises a running activities service: concurrent signups, rejection
paths, and a full unregister back to the starting roster.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -activity string
        Activity to exercise (default: first activity by name with room)
  -students int
        Number of generated students to sign up (default 25)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Smoke test a local service
  go run ./cmd/smoke

  # Hammer one activity
  go run ./cmd/smoke -activity "Chess Club" -students 500 -workers 32
`)
}
