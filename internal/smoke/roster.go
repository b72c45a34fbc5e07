package smoke

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mergington/activities/pkg/logger"
)

// generateEmails returns n unique student addresses.
func generateEmails(n int) []string {
	emails := make([]string, n)
	for i := range emails {
		emails[i] = "student-" + uuid.NewString() + "@" + studentDomain
	}
	return emails
}

// rosterCall is one signup or unregister request.
type rosterCall func(ctx context.Context, name, email string) (*Response, error)

// fanOut runs call for every email with cfg.Workers workers and returns the
// number of 200 responses and the number of failures.
func fanOut(ctx context.Context, cfg *Config, label, name string, emails []string, call rosterCall) (int, int) {
	logger.Get().Info(ctx, "submitting roster requests",
		logger.String("op", label),
		logger.Int("requests", len(emails)),
		logger.Int("workers", cfg.Workers))

	var (
		succeeded int64
		failed    int64
		submitted int64
	)

	var reportMu sync.Mutex
	lastReport := time.Now()

	jobs := make(chan string, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for email := range jobs {
				if ctx.Err() != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				resp, err := call(ctx, name, email)
				atomic.AddInt64(&submitted, 1)
				switch {
				case err != nil:
					atomic.AddInt64(&failed, 1)
					logger.Get().Debug(ctx, "roster request failed",
						logger.String("op", label), logger.String("email", email), logger.Error(err))
				case resp.Status != http.StatusOK:
					atomic.AddInt64(&failed, 1)
					logger.Get().Debug(ctx, "roster request rejected",
						logger.String("op", label), logger.String("email", email),
						logger.Int("status", resp.Status), logger.String("detail", resp.errorBody().Detail))
				default:
					atomic.AddInt64(&succeeded, 1)
				}

				if cfg.Verbose {
					reportMu.Lock()
					if time.Since(lastReport) >= progressInterval {
						lastReport = time.Now()
						logger.Get().Debug(ctx, "progress",
							logger.String("op", label),
							logger.Int("submitted", int(atomic.LoadInt64(&submitted))),
							logger.Int("total", len(emails)))
					}
					reportMu.Unlock()
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, email := range emails {
			select {
			case <-ctx.Done():
				return
			case jobs <- email:
			}
		}
	}()

	wg.Wait()

	ok, bad := int(atomic.LoadInt64(&succeeded)), int(atomic.LoadInt64(&failed))
	if skipped := len(emails) - ok - bad; skipped > 0 {
		bad += skipped
	}
	logger.Get().Info(ctx, "roster requests completed",
		logger.String("op", label),
		logger.Int("succeeded", ok),
		logger.Int("failed", bad))
	return ok, bad
}

func checkf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCheckFailed, fmt.Sprintf(format, args...))
}
