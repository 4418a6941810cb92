package llm

import (
	"context"
	"log"
	"time"

	"github.com/harrisonrobin/morrow/pkg/errs"
)

const (
	maxAttempts    = 3
	initialBackoff = 2 * time.Second
)

// retryClient retries transient completion failures with exponential
// backoff. Permanent failures (bad key, malformed request) surface
// immediately.
type retryClient struct {
	inner   Client
	backoff time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps a client with the bounded retry policy.
func WithRetry(inner Client) Client {
	return &retryClient{
		inner:   inner,
		backoff: initialBackoff,
		sleep:   sleepCtx,
	}
}

func (r *retryClient) Name() string { return r.inner.Name() }

func (r *retryClient) Complete(ctx context.Context, req Request) (string, error) {
	var lastErr error
	delay := r.backoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := r.inner.Complete(ctx, req)
		if err == nil {
			return text, nil
		}
		if !errs.IsRetryable(err) {
			return "", err
		}
		lastErr = err
		if attempt == maxAttempts {
			break
		}
		log.Printf("llm: transient failure (attempt %d/%d), retrying in %s: %v", attempt, maxAttempts, delay, err)
		if err := r.sleep(ctx, delay); err != nil {
			return "", err
		}
		delay *= 2
	}
	return "", lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
