package smoke

import "time"

// Default configuration constants.
const (
	DefaultBaseURL  = "http://localhost:8000"
	DefaultStudents = 25
	DefaultTimeout  = 10 * time.Second
)

// WorkerChannelMultiplier sizes the job channel relative to the worker count.
const WorkerChannelMultiplier = 2

// cleanupGrace is added to the request timeout for the cleanup pass.
const cleanupGrace = 5 * time.Second

// progressInterval throttles progress output.
const progressInterval = time.Second

// Email domain of generated students.
const studentDomain = "smoke.mergington.edu"
