package summary

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Astemirdum/smart-library/library/internal/errs"
	"github.com/Astemirdum/smart-library/library/internal/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(url, key string) *Client {
	return NewClient(Config{
		APIKey:  key,
		URL:     url,
		Model:   "test-model",
		RPS:     1000,
		Timeout: time.Second,
	}, zap.NewNop())
}

var testBook = model.Book{
	ID:       uuid.MustParse("f7cdc58f-2caf-4b15-9727-f89dcc629b27"),
	Title:    "Dune",
	Author:   "Frank Herbert",
	Category: "Science Fiction",
}

func TestClient_Summarize(t *testing.T) {
	t.Parallel()
	bodies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		bodies <- string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  A desert planet epic.  "}}]}`))
	}))
	defer srv.Close()

	summary, err := testClient(srv.URL, "secret").Summarize(context.Background(), testBook)
	require.NoError(t, err)
	require.Equal(t, "A desert planet epic.", summary)
	gotBody := <-bodies
	require.Contains(t, gotBody, `"model":"test-model"`)
	require.Contains(t, gotBody, `"max_tokens":200`)
	require.Contains(t, gotBody, "No description available")
}

func TestClient_Classify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		status     int
		retryAfter string
		body       string
		kind       errs.UpstreamKind
		retryable  bool
		wait       time.Duration
	}{
		{name: "auth", status: http.StatusUnauthorized, kind: errs.UpstreamAuth},
		{name: "billing", status: http.StatusPaymentRequired, kind: errs.UpstreamBilling},
		{name: "rate limited with header", status: http.StatusTooManyRequests, retryAfter: "12", kind: errs.UpstreamRateLimited, retryable: true, wait: 12 * time.Second},
		{name: "rate limited default", status: http.StatusTooManyRequests, kind: errs.UpstreamRateLimited, retryable: true, wait: time.Minute},
		{name: "unavailable", status: http.StatusServiceUnavailable, kind: errs.UpstreamTransient, retryable: true, wait: 30 * time.Second},
		{name: "empty completion", status: http.StatusOK, body: `{"choices":[]}`, kind: errs.UpstreamTransient, retryable: true, wait: 30 * time.Second},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := testClient(srv.URL, "secret").Summarize(context.Background(), testBook)
			require.Error(t, err)
			require.True(t, errors.Is(err, errs.ErrUpstream))

			var upErr *errs.UpstreamError
			require.True(t, errors.As(err, &upErr))
			require.Equal(t, tt.kind, upErr.Kind)
			require.Equal(t, tt.retryable, upErr.Retryable)
			require.Equal(t, tt.wait, upErr.RetryAfter)
		})
	}
}

func TestClient_Disabled(t *testing.T) {
	t.Parallel()
	_, err := testClient("http://127.0.0.1:0", "").Summarize(context.Background(), testBook)

	var upErr *errs.UpstreamError
	require.True(t, errors.As(err, &upErr))
	require.Equal(t, errs.UpstreamAuth, upErr.Kind)
	require.True(t, errors.Is(err, ErrDisabled))
}

func TestClient_BreakerOpens(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL, "secret")
	for i := 0; i < 10; i++ {
		_, _ = c.Summarize(context.Background(), testBook)
	}
	require.EqualValues(t, 10, calls.Load())

	_, err := c.Summarize(context.Background(), testBook)
	var upErr *errs.UpstreamError
	require.True(t, errors.As(err, &upErr))
	require.Equal(t, errs.UpstreamTransient, upErr.Kind)
	require.EqualValues(t, 10, calls.Load())
}
