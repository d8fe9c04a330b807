package httpmiddleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func send(h http.Handler, method, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = ip + ":4321"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	clk := &clock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	h := RateLimit(RateLimitConfig{Max: 2, Window: time.Minute, Now: clk.Now})(okHandler())

	w := send(h, http.MethodPost, "/api/cart/items", "10.0.0.1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1709287260", w.Header().Get("X-RateLimit-Reset"))

	require.Equal(t, http.StatusOK, send(h, http.MethodPost, "/api/cart/items", "10.0.0.1").Code)

	w = send(h, http.MethodPost, "/api/cart/items", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Too many requests", body["error"])

	assert.Equal(t, http.StatusOK, send(h, http.MethodPost, "/api/cart/items", "10.0.0.2").Code, "other client")
}

func TestRateLimit_SlidingWindow(t *testing.T) {
	clk := &clock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	h := RateLimit(RateLimitConfig{Max: 4, Window: time.Minute, Now: clk.Now})(okHandler())

	for range 4 {
		require.Equal(t, http.StatusOK, send(h, http.MethodGet, "/", "10.0.0.1").Code)
	}

	// Halfway into the next window the previous four still weigh two.
	clk.now = clk.now.Add(90 * time.Second)
	assert.Equal(t, http.StatusOK, send(h, http.MethodGet, "/", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send(h, http.MethodGet, "/", "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, send(h, http.MethodGet, "/", "10.0.0.1").Code)

	// Two idle windows reset the client.
	clk.now = clk.now.Add(3 * time.Minute)
	w := send(h, http.MethodGet, "/", "10.0.0.1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_Prefixes(t *testing.T) {
	h := RateLimit(RateLimitConfig{Max: 1, Window: time.Minute, Prefixes: []string{"/api/customer/"}})(okHandler())

	for range 3 {
		w := send(h, http.MethodGet, "/api/products", "10.0.0.1")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
	assert.Equal(t, http.StatusOK, send(h, http.MethodPost, "/api/customer/login", "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, send(h, http.MethodPost, "/api/customer/sign-up", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send(h, http.MethodOptions, "/api/customer/login", "10.0.0.1").Code, "preflight")
}

func TestLimiter_Evict(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Max: 1, Window: time.Minute})
	l.take("a", start)
	l.take("b", start.Add(90*time.Second))

	l.evict(start.Add(150 * time.Second))
	assert.NotContains(t, l.clients, "a")
	assert.Contains(t, l.clients, "b")
}

func TestRateLimitWithCleanup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := RateLimitWithCleanup(ctx, RateLimitConfig{Max: 1, Window: time.Minute})(okHandler())
	assert.Equal(t, http.StatusOK, send(h, http.MethodGet, "/", "10.0.0.1").Code)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": " 203.0.113.7 , 10.0.0.1"}, remote: "10.0.0.1:1", want: "203.0.113.7"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "203.0.113.8"}, remote: "10.0.0.1:1", want: "203.0.113.8"},
		{name: "remote addr", remote: "192.0.2.1:5555", want: "192.0.2.1"},
		{name: "bare remote", remote: "192.0.2.1", want: "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
