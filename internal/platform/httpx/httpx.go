// Package httpx holds retry arithmetic shared by outbound HTTP clients.
package httpx

import (
	"context"
	"math/rand"
	"net/http"
	"time"
)

const jitterFraction = 0.2

// IsRetryableHTTPStatus is true for 408, 429 and every 5xx.
func IsRetryableHTTPStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	default:
		return code >= 500 && code <= 599
	}
}

// Backoff doubles base per attempt and clamps at ceiling when ceiling > 0.
func Backoff(base, ceiling time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base
	for i := 0; i < attempt && (ceiling <= 0 || d < ceiling); i++ {
		d *= 2
	}
	if ceiling > 0 && d > ceiling {
		return ceiling
	}
	return d
}

// JitterSleep spreads d uniformly across [0.8d, 1.2d].
func JitterSleep(d time.Duration) time.Duration {
	return jitter(d, rand.Float64())
}

func jitter(d time.Duration, r float64) time.Duration {
	if d <= 0 {
		return 0
	}
	spread := float64(d) * jitterFraction
	return time.Duration(float64(d) - spread + r*2*spread)
}

// SleepContext waits for d unless ctx ends first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
