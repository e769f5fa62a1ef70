package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(context.Context, time.Duration) error { return nil }

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(Options{
		BaseURL:    srv.URL + "/",
		Model:      "gpt-3.5-turbo",
		Role:       "webdev",
		APIKey:     "secret",
		Timeout:    2 * time.Second,
		MaxRetries: retries,
	})
	c.sleep = noSleep
	return c
}

func TestClient_Suggest(t *testing.T) {
	var got fastPromptRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, fastPromptPath, r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"improved_prompt":"explain quantum computing simply"}`))
	}, 0)

	text, err := c.Suggest(context.Background(), "explain quantum computing")
	require.NoError(t, err)
	assert.Equal(t, "explain quantum computing simply", text)

	assert.Equal(t, c.SessionID(), got.SessionID)
	assert.Equal(t, "explain quantum computing", got.Prompt)
	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.Equal(t, "webdev", got.Role)
}

func TestClient_SuggestWithoutPrompt(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	}, 0)

	_, err := c.Suggest(context.Background(), "hello there")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_Enhance(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr string
	}{
		{name: "success", status: 200, body: `{"success":true,"response":"Enhanced."}`, want: "Enhanced."},
		{name: "reported failure", status: 200, body: `{"success":false,"response":"","error":"model overloaded"}`, wantErr: "model overloaded"},
		{name: "detail on error status", status: 503, body: `{"detail":"API key is not configured"}`, wantErr: "API key is not configured"},
		{name: "garbage", status: 200, body: `not json`, wantErr: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, normalPromptPath, r.URL.Path)
				var req normalPromptRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "draft", req.Prompt)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, 0)

			got, err := c.Enhance(context.Background(), "draft")
			if tt.wantErr != "" {
				require.ErrorIs(t, err, ErrUnavailable)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req normalPromptRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req), "body resent on every attempt")
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"response":"ok"}`))
	}, 2)

	got, err := c.Enhance(context.Background(), "draft")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 1)

	_, err := c.Enhance(context.Background(), "draft")
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}, 3)

	_, err := c.Suggest(context.Background(), "hello there")
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Options{BaseURL: url, MaxRetries: 2})
	c.sleep = noSleep
	_, err := c.Suggest(context.Background(), "hello there")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_CoalescesIdenticalSuggestions(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"success":true,"improved_prompt":"shared"}`))
	}, 0)

	var wg sync.WaitGroup
	results := make(chan string, 2)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := c.Suggest(context.Background(), "same prompt")
			assert.NoError(t, err)
			results <- text
		}()
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	// Give the second caller time to join the in-flight call.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for text := range results {
		assert.Equal(t, "shared", text)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryDelayForAttempt(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, retryBaseDelay},
		{1, retryBaseDelay},
		{2, 2 * retryBaseDelay},
		{3, 4 * retryBaseDelay},
		{10, retryMaxDelay},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, retryDelayForAttempt(tt.attempt, nil), "attempt %d", tt.attempt)
	}

	jittered := retryDelayForAttempt(1, func(int64) int64 { return int64(retryJitterMax) - 1 })
	assert.Equal(t, retryBaseDelay+retryJitterMax-1, jittered)
}

func TestIsRetryableStatus(t *testing.T) {
	for _, status := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, isRetryableStatus(status), "status %d", status)
	}
	for _, status := range []int{200, 400, 401, 403, 404, 422, 501} {
		assert.False(t, isRetryableStatus(status), "status %d", status)
	}
}
