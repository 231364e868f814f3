package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	maxRetries      = 3
	initialInterval = 500 * time.Millisecond
)

// Do runs op with exponential backoff around transient failures of external
// collaborators (data store, notification channel). The operation is retried
// up to three times after the initial attempt; context cancellation stops
// the retries immediately.
func Do(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialInterval

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx))
}
