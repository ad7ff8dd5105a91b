package mw

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimiter(rate.Limit(1), 2))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	get := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(w, req)
		return w.Code
	}

	// Burst of 2 is allowed, the third request in the same instant is not.
	assert.Equal(t, http.StatusOK, get())
	assert.Equal(t, http.StatusOK, get())
	assert.Equal(t, http.StatusTooManyRequests, get())
}

func TestCache(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var hits int32
	store := cache.New(time.Minute, time.Minute)
	r := gin.New()
	r.Use(Cache(store, time.Minute))
	r.GET("/data", func(c *gin.Context) {
		atomic.AddInt32(&hits, 1)
		c.JSON(http.StatusOK, gin.H{"n": atomic.LoadInt32(&hits)})
	})
	r.GET("/fail", func(c *gin.Context) {
		atomic.AddInt32(&hits, 1)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})
	r.POST("/data", func(c *gin.Context) {
		atomic.AddInt32(&hits, 1)
		c.Status(http.StatusOK)
	})

	do := func(method, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, nil)
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("replays successful GET responses", func(t *testing.T) {
		first := do(http.MethodGet, "/data")
		second := do(http.MethodGet, "/data")
		require.Equal(t, http.StatusOK, first.Code)
		require.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, first.Body.String(), second.Body.String())
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})

	t.Run("distinct URIs get distinct entries", func(t *testing.T) {
		atomic.StoreInt32(&hits, 0)
		do(http.MethodGet, "/data?a=1")
		do(http.MethodGet, "/data?a=2")
		assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	})

	t.Run("errors are not cached", func(t *testing.T) {
		atomic.StoreInt32(&hits, 0)
		do(http.MethodGet, "/fail")
		do(http.MethodGet, "/fail")
		assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	})

	t.Run("non-GET bypasses the cache", func(t *testing.T) {
		atomic.StoreInt32(&hits, 0)
		do(http.MethodPost, "/data")
		do(http.MethodPost, "/data")
		assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	})
}
