package httpx

import (
	"context"
	"testing"
	"time"
)

func TestBackoffCaps(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{5, time.Second},
	}
	for _, tc := range cases {
		if got := Backoff(100*time.Millisecond, time.Second, tc.attempt); got != tc.want {
			t.Fatalf("attempt=%d got=%s want=%s", tc.attempt, got, tc.want)
		}
	}
}

func TestJitterBounds(t *testing.T) {
	base := time.Second
	for _, r := range []float64{0, 0.25, 0.5, 0.75, 1} {
		got := jitter(base, r)
		if got < 799*time.Millisecond || got > 1201*time.Millisecond {
			t.Fatalf("r=%v got=%s", r, got)
		}
	}
	if jitter(0, 0.5) != 0 {
		t.Fatalf("zero base must stay zero")
	}
}

func TestRetryable(t *testing.T) {
	for _, code := range []int{408, 429, 500, 503} {
		if !IsRetryableHTTPStatus(code) {
			t.Fatalf("%d should retry", code)
		}
	}
	for _, code := range []int{400, 401, 403, 404} {
		if IsRetryableHTTPStatus(code) {
			t.Fatalf("%d should not retry", code)
		}
	}
}

func TestSleepContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := SleepContext(ctx, time.Minute); err == nil {
		t.Fatalf("expected context error")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("sleep ignored cancellation")
	}
}
