package provider

import (
	"context"
	"time"

	"github.com/yungbote/wellspring-backend/internal/platform/httpx"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
)

type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, BaseDelay: 500 * time.Millisecond, MaxDelay: 5 * time.Second}
}

type retrying struct {
	next   Client
	policy RetryPolicy
	log    *logger.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// WithRetry retries transient failures with jittered exponential backoff.
// Auth, not-found, bad request and malformed responses return immediately.
func WithRetry(next Client, policy RetryPolicy, log *logger.Logger) Client {
	if log == nil {
		log = logger.Nop()
	}
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	return &retrying{
		next:   next,
		policy: policy,
		log:    log.With("service", "ProviderRetry"),
		sleep:  httpx.SleepContext,
	}
}

func (r *retrying) Send(ctx context.Context, messages []Message, opts SendOptions) (string, error) {
	for attempt := 0; ; attempt++ {
		out, err := r.next.Send(ctx, messages, opts)
		if err == nil {
			return out, nil
		}
		err = Classify(err)
		kind := KindOf(err)
		if ctx.Err() != nil || !kind.Retryable() || attempt >= r.policy.MaxRetries {
			return "", err
		}

		wait := httpx.JitterSleep(httpx.Backoff(r.policy.BaseDelay, r.policy.MaxDelay, attempt))
		r.log.Warn("provider request retrying",
			"attempt", attempt+1,
			"max_retries", r.policy.MaxRetries,
			"kind", string(kind),
			"sleep", wait.String(),
			"error", err.Error(),
		)
		if serr := r.sleep(ctx, wait); serr != nil {
			return "", err
		}
	}
}
