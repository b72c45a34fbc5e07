// Package smoke drives a running activities service end to end: it signs
// students up concurrently, checks the rejection paths, then restores the
// roster it started from.
package smoke

import (
	"errors"
	"time"
)

// ErrCheckFailed is wrapped by every failed verification step.
var ErrCheckFailed = errors.New("smoke check failed")

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Activity string        // Target activity; empty picks the first listed
	Students int           // Number of generated students to sign up
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Enable verbose logging
}

// Stats holds run statistics.
type Stats struct {
	Activity           string
	BaselineCount      int
	SignupsSubmitted   int
	SignupsSucceeded   int
	SignupsFailed      int
	UnregistersSubmit  int
	UnregistersSucceed int
	UnregistersFailed  int
	ChecksPassed       int
	CleanupRemoved     int // generated students removed after a failed run
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

// errorResponse is the failure body of every API route.
type errorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}
