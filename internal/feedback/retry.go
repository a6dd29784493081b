package feedback

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/go-hclog"
)

// RetryPolicy retries transient failures with exponential backoff.
type RetryPolicy struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int
	// BaseDelay is the wait before the first retry; it doubles for each one after.
	BaseDelay time.Duration
}

// DefaultRetryPolicy retries once after one second.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 1, BaseDelay: time.Second}

// Do calls fn until it succeeds, returns a non-transient error, the retry
// budget is spent, or ctx is done.
func (p RetryPolicy) Do(ctx context.Context, logger hclog.Logger, fn func(ctx context.Context) (string, error)) (string, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	delay := p.BaseDelay
	for attempt := 0; ; attempt++ {
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		var fe *Error
		if attempt >= p.MaxRetries || !errors.As(err, &fe) || !fe.Transient() {
			return "", err
		}

		logger.Warn("critique request failed, retrying", "attempt", attempt+1, "delay", delay, "error", err)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
