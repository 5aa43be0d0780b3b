package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wallet-core.backend/pkg/redis"
)

func newIdempotencyRouter(t *testing.T) (*gin.Engine, *int32) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))

	var calls int32
	r := gin.New()
	r.POST("/pay", IdempotencyMiddleware(), func(c *gin.Context) {
		n := atomic.AddInt32(&calls, 1)
		c.JSON(http.StatusOK, gin.H{"call": n})
	})
	r.POST("/fail", IdempotencyMiddleware(), func(c *gin.Context) {
		atomic.AddInt32(&calls, 1)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "nope"})
	})
	return r, &calls
}

func TestIdempotency_ReplaysResponse(t *testing.T) {
	r, calls := newIdempotencyRouter(t)

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pay", nil)
	req.Header.Set(IdempotencyHeader, "key-1")
	r.ServeHTTP(first, req)
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/pay", nil)
	req.Header.Set(IdempotencyHeader, "key-1")
	r.ServeHTTP(second, req)

	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Hit"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestIdempotency_DistinctKeysBothExecute(t *testing.T) {
	r, calls := newIdempotencyRouter(t)

	for _, key := range []string{"key-a", "key-b"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/pay", nil)
		req.Header.Set(IdempotencyHeader, key)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestIdempotency_NoHeaderAlwaysExecutes(t *testing.T) {
	r, calls := newIdempotencyRouter(t)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/pay", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestIdempotency_FailedResponseNotCached(t *testing.T) {
	r, calls := newIdempotencyRouter(t)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/fail", nil)
		req.Header.Set(IdempotencyHeader, "retry-me")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	}

	// Both attempts ran; the failure was not replayed.
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}
