package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const completionBody = `{"id":"c1","object":"chat.completion","created":1,"model":"test","choices":[{"index":0,"message":{"role":"assistant","content":"  Breathe slowly and pick one task.  "},"finish_reason":"stop"}]}`

func newTestClient(t *testing.T, h http.HandlerFunc, timeout time.Duration) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	tr := &http.Transport{}
	t.Cleanup(func() {
		tr.CloseIdleConnections()
		srv.Close()
	})
	c, err := NewOpenAI(OpenAIConfig{
		APIKey:     "sk-test",
		BaseURL:    srv.URL + "/",
		Model:      "test-model",
		Timeout:    timeout,
		HTTPClient: &http.Client{Transport: tr},
	}, nil)
	require.NoError(t, err)
	return c
}

func TestOpenAISend(t *testing.T) {
	var gotAuth, gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody)
	}, time.Second)

	out, err := c.Send(context.Background(), []Message{
		{Role: RoleSystem, Content: "be kind"},
		{Role: RoleUser, Content: "hello"},
	}, SendOptions{Temperature: 0.4, MaxTokens: 120})
	require.NoError(t, err)
	assert.Equal(t, "Breathe slowly and pick one task.", out)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Contains(t, gotBody, `"model":"test-model"`)
	assert.Contains(t, gotBody, `"max_tokens":120`)
}

func TestOpenAIStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindAuth},
		{http.StatusNotFound, KindNotFound},
		{http.StatusTooManyRequests, KindRateLimit},
		{http.StatusBadGateway, KindServer},
		{http.StatusBadRequest, KindBadRequest},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, `{"error":{"message":"nope","type":"invalid_request_error"}}`)
			}, time.Second)
			_, err := c.Send(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, SendOptions{})
			require.Error(t, err)
			assert.Equal(t, tc.want, KindOf(err))
			var pe *Error
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tc.status, pe.Status)
		})
	}
}

func TestOpenAIMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","choices":[]}`)
	}, time.Second)
	_, err := c.Send(context.Background(), nil, SendOptions{})
	assert.Equal(t, KindMalformed, KindOf(err))
}

func TestOpenAITimeoutIsNetwork(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 30*time.Millisecond)
	_, err := c.Send(context.Background(), nil, SendOptions{})
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI(OpenAIConfig{}, nil)
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(nil))
	assert.Equal(t, KindServer, KindOf(Classify(&openai.APIError{HTTPStatusCode: http.StatusRequestTimeout})))
	assert.Equal(t, KindServer, KindOf(Classify(&openai.RequestError{HTTPStatusCode: 503, Err: errors.New("x")})))
	assert.Equal(t, KindNetwork, KindOf(Classify(fmt.Errorf("dial: %w", context.DeadlineExceeded))))
	already := &Error{Kind: KindAuth}
	assert.Same(t, already, Classify(already))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))

	assert.True(t, KindRateLimit.Retryable())
	assert.True(t, KindNetwork.Retryable())
	assert.False(t, KindAuth.Retryable())
	assert.True(t, KindNotFound.Configuration())
	assert.False(t, KindServer.Configuration())
}

func scripted(errs ...error) (Client, *int32) {
	var calls int32
	return ClientFunc(func(ctx context.Context, _ []Message, _ SendOptions) (string, error) {
		n := atomic.AddInt32(&calls, 1)
		if int(n) <= len(errs) && errs[n-1] != nil {
			return "", errs[n-1]
		}
		return "ok", nil
	}), &calls
}

func noSleep(c Client) Client {
	c.(*retrying).sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return c
}

func TestRetryTransient(t *testing.T) {
	inner, calls := scripted(&Error{Kind: KindRateLimit}, &Error{Kind: KindServer})
	c := noSleep(WithRetry(inner, RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond}, nil))
	out, err := c.Send(context.Background(), nil, SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestRetryStopsOnConfigurationErrors(t *testing.T) {
	for _, kind := range []Kind{KindAuth, KindNotFound, KindBadRequest, KindMalformed} {
		inner, calls := scripted(&Error{Kind: kind})
		c := noSleep(WithRetry(inner, RetryPolicy{MaxRetries: 3}, nil))
		_, err := c.Send(context.Background(), nil, SendOptions{})
		assert.Equal(t, kind, KindOf(err))
		assert.Equal(t, int32(1), atomic.LoadInt32(calls), string(kind))
	}
}

func TestRetryCeiling(t *testing.T) {
	fail := &Error{Kind: KindNetwork, Err: errors.New("reset")}
	inner, calls := scripted(fail, fail, fail, fail, fail)
	c := noSleep(WithRetry(inner, RetryPolicy{MaxRetries: 2}, nil))
	_, err := c.Send(context.Background(), nil, SendOptions{})
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestRetryAbortsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	inner := ClientFunc(func(context.Context, []Message, SendOptions) (string, error) {
		atomic.AddInt32(&calls, 1)
		cancel()
		return "", &Error{Kind: KindServer}
	})
	c := WithRetry(inner, RetryPolicy{MaxRetries: 5, BaseDelay: time.Hour}, nil)
	_, err := c.Send(ctx, nil, SendOptions{})
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetryAgainstServer(t *testing.T) {
	var hits int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"error":{"message":"busy"}}`)
			return
		}
		_, _ = io.WriteString(w, completionBody)
	}, time.Second)
	rc := WithRetry(c, RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}, nil)
	out, err := rc.Send(context.Background(), nil, SendOptions{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Breathe"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}
