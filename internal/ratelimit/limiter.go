// Package ratelimit provides per-key admission control over a fixed
// 60-second window. A fixed window lets up to 2x the per-minute limit
// through across a window boundary; the monthly usage ledger is the durable
// backstop behind it.
package ratelimit

import (
	"context"
	"time"
)

const windowSeconds = 60

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed           bool
	RetryAfterSeconds int
}

type Limiter interface {
	// Admit counts one request against keyID's current window and rejects
	// once the window holds rpmLimit requests. Counter loss (restart,
	// store outage) fails open to "not yet limited".
	Admit(ctx context.Context, keyID string, rpmLimit int) (Decision, error)
}

func currentWindow(now time.Time) (start int64, retryAfter int) {
	unix := now.Unix()
	start = unix - unix%windowSeconds
	retryAfter = int(start + windowSeconds - unix)
	if retryAfter <= 0 {
		retryAfter = 1
	}
	return start, retryAfter
}
