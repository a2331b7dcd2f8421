package middlewares

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	hit := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusOK, hit("10.0.0.1:5001").Code)

	limited := hit("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decodeCode(t, limited))

	assert.Equal(t, http.StatusOK, hit("10.0.0.2:5000").Code)
}

func TestClientAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.7:41234"
	assert.Equal(t, "192.168.1.7", clientAddr(req))

	req.RemoteAddr = "unix-socket"
	assert.Equal(t, "unix-socket", clientAddr(req))
}

func TestRateLimiterKeepsLimitedClientUnderKeyFlood(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	assert.True(t, rl.allow("203.0.113.9"))
	assert.False(t, rl.allow("203.0.113.9"))

	for i := 0; i < maxClients+500; i++ {
		rl.allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}

	assert.False(t, rl.allow("203.0.113.9"))
	assert.Len(t, rl.clients, maxClients+501)
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	for i := 0; i < maxClients; i++ {
		rl.allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}

	clock = clock.Add(30 * time.Second)
	assert.True(t, rl.allow("203.0.113.9"))
	assert.False(t, rl.allow("203.0.113.9"))

	clock = clock.Add(40 * time.Second)
	assert.True(t, rl.allow("198.51.100.7"))

	assert.Len(t, rl.clients, 2)
	assert.Contains(t, rl.clients, "203.0.113.9")
	assert.False(t, rl.allow("203.0.113.9"))
}
