package smoke

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/mergington/activities/pkg/logger"
)

// Run executes the complete smoke test against cfg.BaseURL. The returned
// Stats are filled in as far as the run got, even on failure.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	defer func() {
		stats.EndTime = time.Now()
		stats.Duration = stats.EndTime.Sub(stats.StartTime)
	}()

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Students < 1 {
		return stats, fmt.Errorf("students must be positive, got %d", cfg.Students)
	}

	logger.Get().Info(ctx, "starting activities smoke test",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("activity", cfg.Activity),
		logger.Int("students", cfg.Students),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	passed(ctx, stats, "health")

	// Step 2: pick the target and record the baseline
	name, baseline, err := pickActivity(ctx, client, cfg.Activity, cfg.Students)
	if err != nil {
		return stats, fmt.Errorf("activity listing failed: %w", err)
	}
	stats.Activity = name
	stats.BaselineCount = baseline
	passed(ctx, stats, "list")

	emails := generateEmails(cfg.Students)

	if err := exercise(ctx, cfg, client, stats, name, baseline, emails); err != nil {
		// Signups went out, so some generated students may still be on
		// the roster.
		if stats.SignupsSubmitted > 0 {
			cleanup(ctx, cfg, client, stats, name, emails)
		}
		return stats, err
	}

	displayFinalStats(ctx, stats)
	logger.Get().Info(ctx, "smoke test completed successfully")
	return stats, nil
}

// exercise runs steps 3 to 9 against the chosen activity.
func exercise(ctx context.Context, cfg *Config, client *HTTPClient, stats *Stats, name string, baseline int, emails []string) error {
	// Step 3: concurrent signups
	stats.SignupsSubmitted = len(emails)
	stats.SignupsSucceeded, stats.SignupsFailed = fanOut(ctx, cfg, "signup", name, emails, client.Signup)

	// Step 4: every signup landed exactly once
	if err := verifyCount(ctx, client, name, baseline+len(emails)); err != nil {
		return fmt.Errorf("signup verification failed: %w", err)
	}
	passed(ctx, stats, "signup count")

	// Step 5: duplicate signup
	resp, err := client.Signup(ctx, name, emails[0])
	if err != nil {
		return fmt.Errorf("duplicate signup failed: %w", err)
	}
	if err := verifyRejected(resp, http.StatusBadRequest, "already signed up"); err != nil {
		return fmt.Errorf("duplicate signup verification failed: %w", err)
	}
	passed(ctx, stats, "duplicate signup")

	// Step 6: unknown activity
	resp, err = client.Signup(ctx, "Unknown Activity "+emails[0], emails[0])
	if err != nil {
		return fmt.Errorf("unknown activity signup failed: %w", err)
	}
	if err := verifyRejected(resp, http.StatusNotFound, "Activity not found"); err != nil {
		return fmt.Errorf("unknown activity verification failed: %w", err)
	}
	passed(ctx, stats, "unknown activity")

	// Step 7: concurrent unregisters
	stats.UnregistersSubmit = len(emails)
	stats.UnregistersSucceed, stats.UnregistersFailed = fanOut(ctx, cfg, "unregister", name, emails, client.Unregister)

	// Step 8: roster back to baseline
	if err := verifyCount(ctx, client, name, baseline); err != nil {
		return fmt.Errorf("unregister verification failed: %w", err)
	}
	passed(ctx, stats, "baseline restored")

	// Step 9: non-member unregister
	resp, err = client.Unregister(ctx, name, emails[0])
	if err != nil {
		return fmt.Errorf("non-member unregister failed: %w", err)
	}
	if err := verifyRejected(resp, http.StatusBadRequest, "not registered"); err != nil {
		return fmt.Errorf("non-member unregister verification failed: %w", err)
	}
	passed(ctx, stats, "non-member unregister")
	return nil
}

// cleanup unregisters every generated student after a failed run. Students
// that are not on the roster answer 400 and are not counted.
// It keeps going after ctx is cancelled, bounded by the request timeout.
func cleanup(ctx context.Context, cfg *Config, client *HTTPClient, stats *Stats, name string, emails []string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Timeout+cleanupGrace)
	defer cancel()

	logger.Get().Warn(ctx, "run failed, removing generated students", logger.String("activity", name))
	stats.CleanupRemoved, _ = fanOut(cleanupCtx, cfg, "cleanup", name, emails, client.Unregister)
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if resp.Status != http.StatusOK {
		return checkf("health returned status %d", resp.Status)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// pickActivity returns the requested activity, or the alphabetically first
// one with room for students, with its current participant count. A named
// activity without room fails before anything is submitted.
func pickActivity(ctx context.Context, client *HTTPClient, want string, students int) (string, int, error) {
	activities, err := client.Activities(ctx)
	if err != nil {
		return "", 0, err
	}
	if len(activities) == 0 {
		return "", 0, checkf("activity directory is empty")
	}

	if want != "" {
		a, ok := activities[want]
		if !ok {
			return "", 0, checkf("activity %q not found", want)
		}
		if a.SpotsLeft() < students {
			return "", 0, checkf("activity %q has %d spots left, need %d", want, a.SpotsLeft(), students)
		}
		return want, len(a.Participants), nil
	}

	names := make([]string, 0, len(activities))
	for name := range activities {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if a := activities[name]; a.SpotsLeft() >= students {
			return name, len(a.Participants), nil
		}
	}
	return "", 0, checkf("no activity has %d spots left", students)
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var requestsPerSecond float64
	if d := time.Since(stats.StartTime); d > 0 {
		requestsPerSecond = float64(stats.SignupsSubmitted+stats.UnregistersSubmit) / d.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.String("activity", stats.Activity),
		logger.Int("baseline", stats.BaselineCount),
		logger.Int("signupsSucceeded", stats.SignupsSucceeded),
		logger.Int("signupsFailed", stats.SignupsFailed),
		logger.Int("unregistersSucceeded", stats.UnregistersSucceed),
		logger.Int("unregistersFailed", stats.UnregistersFailed),
		logger.Int("checksPassed", stats.ChecksPassed),
		logger.Int("cleanupRemoved", stats.CleanupRemoved),
		logger.String("duration", time.Since(stats.StartTime).String()),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
