package ratelimit

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newRouter(lim *RateLimiter, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("userID", userID)
		}
		c.Next()
	})
	r.Use(Middleware(lim, nil))
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	return r
}

func TestMiddleware_RateLimitExceeded(t *testing.T) {
	lim := New(0, time.Minute) // limit 0 -> always deny
	r := newRouter(lim, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, 429, w.Code)
	require.Equal(t, "60", w.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Rate limit exceeded. Try again later.", body["error"])
	require.Equal(t, "RATE_LIMITED", body["code"])
	data := body["data"].(map[string]any)
	require.Contains(t, data, "retry_after")
	require.Contains(t, data, "reset_time")
}

func TestMiddleware_RemainingHeader(t *testing.T) {
	lim := New(3, time.Minute)
	r := newRouter(lim, "u1")

	for _, want := range []string{"2", "1", "0"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		require.Equal(t, 200, w.Code)
		require.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, want, w.Header().Get("X-RateLimit-Remaining"))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, 429, w.Code)
}

func TestMiddleware_KeysByUser(t *testing.T) {
	lim := New(1, time.Minute)

	w := httptest.NewRecorder()
	newRouter(lim, "alice").ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, 200, w.Code)

	w = httptest.NewRecorder()
	newRouter(lim, "bob").ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, 200, w.Code)

	w = httptest.NewRecorder()
	newRouter(lim, "alice").ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, 429, w.Code)
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	lim := New(1, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	lim.now = func() time.Time { return now }

	ok, _, _ := lim.Allow("k")
	require.True(t, ok)
	ok, _, reset := lim.Allow("k")
	require.False(t, ok)
	require.Equal(t, now.Add(time.Minute), reset)

	now = now.Add(61 * time.Second)
	ok, _, _ = lim.Allow("k")
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	lim.Cleanup()
	require.Empty(t, lim.requests)
}
