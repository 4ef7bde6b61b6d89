package httpmiddleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limited(t *testing.T, max int, keyFunc func(*http.Request) string) http.Handler {
	t.Helper()
	mw := RateLimit(t.Context(), RateLimitConfig{
		Max:     max,
		Window:  time.Minute,
		KeyFunc: keyFunc,
	})
	return mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func hit(h http.Handler, remoteAddr string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimit_AllowsUpToMax(t *testing.T) {
	h := limited(t, 3, nil)

	for i := range 3 {
		w := hit(h, "203.0.113.7:1000", nil)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}

	w := hit(h, "203.0.113.7:1000", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, float64(429), body["code"])
	assert.Equal(t, "rate limit exceeded", body["message"])
}

func TestRateLimit_KeysAreIndependent(t *testing.T) {
	h := limited(t, 1, nil)

	assert.Equal(t, http.StatusOK, hit(h, "203.0.113.7:1000", nil).Code)
	assert.Equal(t, http.StatusOK, hit(h, "203.0.113.8:1000", nil).Code)

	// Same IP on a different port is still the same client.
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "203.0.113.7:2000", nil).Code)
}

func TestRateLimit_CustomKeyFunc(t *testing.T) {
	h := limited(t, 1, func(r *http.Request) string {
		return SessionFromContext(r.Context())
	})
	withSession := Session("session_id")(h)

	// Without a cookie every request mints a new session, so none collide.
	assert.Equal(t, http.StatusOK, hit(withSession, "203.0.113.7:1000", nil).Code)
	assert.Equal(t, http.StatusOK, hit(withSession, "203.0.113.7:1000", nil).Code)

	// The same session cookie shares one allowance.
	cookie := map[string]string{"Cookie": "session_id=abc123"}
	assert.Equal(t, http.StatusOK, hit(withSession, "203.0.113.7:1000", cookie).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(withSession, "203.0.113.9:1000", cookie).Code)
}

func TestRateLimit_ProxyHeadersIdentifyClient(t *testing.T) {
	h := limited(t, 1, nil)

	xff := map[string]string{"X-Forwarded-For": "198.51.100.4, 10.0.0.1"}
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1000", xff).Code)

	// A different socket peer behind the same forwarded client is limited.
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.2:1000", xff).Code)
}

func TestLimiter_WindowRotation(t *testing.T) {
	l := &limiter{
		cfg:     RateLimitConfig{Max: 2, Window: time.Minute},
		clients: make(map[string]*client),
	}
	now := time.Now().Truncate(time.Minute)

	_, _, ok := l.take("k", now)
	require.True(t, ok)
	_, _, ok = l.take("k", now)
	require.True(t, ok)
	_, _, ok = l.take("k", now)
	require.False(t, ok)

	// Right after rotation the previous window still weighs in fully.
	_, _, ok = l.take("k", now.Add(time.Minute))
	assert.False(t, ok)

	// Two idle windows later the allowance is fresh.
	_, _, ok = l.take("k", now.Add(3*time.Minute))
	assert.True(t, ok)
}
