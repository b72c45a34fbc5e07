package smoke

import (
	"context"
	"strings"

	"github.com/mergington/activities/pkg/logger"
)

// verifyCount checks the roster of name holds exactly want participants.
func verifyCount(ctx context.Context, client *HTTPClient, name string, want int) error {
	activities, err := client.Activities(ctx)
	if err != nil {
		return err
	}
	a, ok := activities[name]
	if !ok {
		return checkf("activity %q disappeared from the directory", name)
	}
	if got := len(a.Participants); got != want {
		return checkf("activity %q has %d participants, want %d", name, got, want)
	}
	return nil
}

// verifyRejected checks that resp carries status and a detail containing
// fragment, case-insensitively.
func verifyRejected(resp *Response, status int, fragment string) error {
	if resp.Status != status {
		return checkf("got status %d, want %d", resp.Status, status)
	}
	detail := resp.errorBody().Detail
	if !strings.Contains(strings.ToLower(detail), strings.ToLower(fragment)) {
		return checkf("detail %q does not mention %q", detail, fragment)
	}
	return nil
}

func passed(ctx context.Context, stats *Stats, check string) {
	stats.ChecksPassed++
	logger.Get().Info(ctx, "check passed", logger.String("check", check))
}
