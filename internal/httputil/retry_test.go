// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	// Use a tiny base delay so tests finish quickly.
	RetryBaseDelay = 1 * time.Millisecond
}

// statusServer answers with statuses in turn and then with the last one.
func statusServer(t *testing.T, calls *int32, statuses ...int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(atomic.AddInt32(calls, 1))
		if n > len(statuses) {
			n = len(statuses)
		}
		w.WriteHeader(statuses[n-1])
	}))
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ctx context.Context, ts *httptest.Server, maxRetries int) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	return DoWithRetry(ctx, ts.Client(), req, maxRetries, zaptest.NewLogger(t))
}

func TestDoWithRetry(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		maxRetries int
		wantStatus int
		wantCalls  int32
	}{
		{
			name:       "immediate success",
			statuses:   []int{http.StatusOK},
			maxRetries: 5,
			wantStatus: http.StatusOK,
			wantCalls:  1,
		},
		{
			name:       "retries then succeeds",
			statuses:   []int{http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusOK},
			maxRetries: 5,
			wantStatus: http.StatusOK,
			wantCalls:  3,
		},
		{
			name:       "exhausts retries",
			statuses:   []int{http.StatusTooManyRequests},
			maxRetries: 3,
			wantStatus: http.StatusTooManyRequests,
			wantCalls:  4,
		},
		{
			name:       "default max retries",
			statuses:   []int{http.StatusServiceUnavailable},
			wantStatus: http.StatusServiceUnavailable,
			wantCalls:  5,
		},
		{
			name:       "server error passes through",
			statuses:   []int{http.StatusInternalServerError},
			maxRetries: 5,
			wantStatus: http.StatusInternalServerError,
			wantCalls:  1,
		},
		{
			name:       "not found passes through",
			statuses:   []int{http.StatusNotFound},
			maxRetries: 5,
			wantStatus: http.StatusNotFound,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := statusServer(t, &calls, tt.statuses...)

			resp, err := get(t, context.Background(), ts, tt.maxRetries)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestDoWithRetry_ContextCancelled(t *testing.T) {
	var calls int32
	ts := statusServer(t, &calls, http.StatusTooManyRequests)

	// Use a longer base delay so the context cancels during the wait.
	old := RetryBaseDelay
	RetryBaseDelay = 500 * time.Millisecond
	defer func() { RetryBaseDelay = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := get(t, ctx, ts, 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBackoff(t *testing.T) {
	old := RetryBaseDelay
	RetryBaseDelay = time.Second
	defer func() { RetryBaseDelay = old }()

	resp := func(retryAfter string) *http.Response {
		r := &http.Response{Header: http.Header{}}
		if retryAfter != "" {
			r.Header.Set("Retry-After", retryAfter)
		}
		return r
	}

	assert.Equal(t, time.Second, backoff(resp(""), 0))
	assert.Equal(t, 4*time.Second, backoff(resp(""), 2))
	assert.Equal(t, 7*time.Second, backoff(resp("7"), 2))
	assert.Equal(t, maxRetryAfter, backoff(resp("86400"), 0))
	assert.Equal(t, 2*time.Second, backoff(resp("Wed, 21 Oct 2015 07:28:00 GMT"), 1))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(http.StatusTooManyRequests))
	assert.True(t, Retryable(http.StatusServiceUnavailable))
	assert.False(t, Retryable(http.StatusOK))
	assert.False(t, Retryable(http.StatusBadGateway))
}
