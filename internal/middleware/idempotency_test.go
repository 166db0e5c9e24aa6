package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-reqdesk/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func idempotencyRouter(rdb *redis.Client, handled *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/requests", middleware.Idempotency(rdb), func(c *gin.Context) {
		*handled = true
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	return r
}

func TestIdempotency(t *testing.T) {
	t.Run("no key passes through", func(t *testing.T) {
		rdb, _ := redismock.NewClientMock()
		handled := false
		r := idempotencyRouter(rdb, &handled)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/requests", nil)
		r.ServeHTTP(w, req)

		assert.True(t, handled)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("first request takes the lock and proceeds", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		handled := false
		r := idempotencyRouter(rdb, &handled)

		cacheKey := "idemp:/requests::abc-123"
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(true)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/requests", nil)
		req.Header.Set("Idempotency-Key", "abc-123")
		r.ServeHTTP(w, req)

		assert.True(t, handled)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent duplicate gets a conflict", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		handled := false
		r := idempotencyRouter(rdb, &handled)

		cacheKey := "idemp:/requests::abc-123"
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(false)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/requests", nil)
		req.Header.Set("Idempotency-Key", "abc-123")
		r.ServeHTTP(w, req)

		assert.False(t, handled)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("completed duplicate replays the cached body", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		handled := false
		r := idempotencyRouter(rdb, &handled)

		cacheKey := "idemp:/requests::abc-123"
		mock.ExpectGet(cacheKey).SetVal(`{"id":"r-1"}`)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/requests", nil)
		req.Header.Set("Idempotency-Key", "abc-123")
		r.ServeHTTP(w, req)

		assert.False(t, handled)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "r-1")
	})
}
