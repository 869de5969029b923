package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func idempotencyRouter(store IdempotencyStore, handlerCalls *atomic.Int64, status *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextPartnerKey, &model.Partner{ID: 1, Name: "acme"})
	})
	r.Use(IdempotencyMiddleware(store))
	r.POST("/orders", func(c *gin.Context) {
		n := handlerCalls.Add(1)
		c.JSON(*status, gin.H{"call": n})
	})
	return r
}

func postOrders(r *gin.Engine, idemKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	if idemKey != "" {
		req.Header.Set(HeaderIdempotencyKey, idemKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyReplaysCachedResponse(t *testing.T) {
	var calls atomic.Int64
	status := http.StatusOK
	r := idempotencyRouter(NewInMemIdempotencyStore(), &calls, &status)

	first := postOrders(r, "key-1")
	second := postOrders(r, "key-1")

	assert.Equal(t, int64(1), calls.Load(), "second request must not reach the handler")
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestIdempotencyDistinctKeysAreIndependent(t *testing.T) {
	var calls atomic.Int64
	status := http.StatusOK
	r := idempotencyRouter(NewInMemIdempotencyStore(), &calls, &status)

	postOrders(r, "key-1")
	postOrders(r, "key-2")

	assert.Equal(t, int64(2), calls.Load())
}

func TestIdempotencyMissingKeyBypasses(t *testing.T) {
	var calls atomic.Int64
	status := http.StatusOK
	r := idempotencyRouter(NewInMemIdempotencyStore(), &calls, &status)

	postOrders(r, "")
	postOrders(r, "")

	assert.Equal(t, int64(2), calls.Load())
}

func TestIdempotencyServerErrorIsRetryable(t *testing.T) {
	var calls atomic.Int64
	status := http.StatusBadGateway
	r := idempotencyRouter(NewInMemIdempotencyStore(), &calls, &status)

	first := postOrders(r, "key-1")
	assert.Equal(t, http.StatusBadGateway, first.Code)

	// Upstream recovered; the retry must execute, not replay the 502.
	status = http.StatusOK
	second := postOrders(r, "key-1")

	assert.Equal(t, int64(2), calls.Load())
	assert.Equal(t, http.StatusOK, second.Code)
}

func TestIdempotencyClientErrorIsCached(t *testing.T) {
	var calls atomic.Int64
	status := http.StatusBadRequest
	r := idempotencyRouter(NewInMemIdempotencyStore(), &calls, &status)

	postOrders(r, "key-1")
	second := postOrders(r, "key-1")

	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, http.StatusBadRequest, second.Code)
}

func TestIdempotencyInProgressConflict(t *testing.T) {
	store := NewInMemIdempotencyStore()

	// Simulate a concurrent in-flight request holding the lock.
	_, hit := store.GetOrLock("1:key-1")
	assert.False(t, hit)

	var calls atomic.Int64
	status := http.StatusOK
	r := idempotencyRouter(store, &calls, &status)

	w := postOrders(r, "key-1")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, int64(0), calls.Load())
}

func TestIdempotencyScopedByPartner(t *testing.T) {
	store := NewInMemIdempotencyStore()
	gin.SetMode(gin.TestMode)

	var calls atomic.Int64
	partnerID := int64(1)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextPartnerKey, &model.Partner{ID: partnerID})
	})
	r.Use(IdempotencyMiddleware(store))
	r.POST("/orders", func(c *gin.Context) {
		calls.Add(1)
		c.JSON(http.StatusOK, gin.H{})
	})

	postOrders(r, "shared-key")
	partnerID = 2
	postOrders(r, "shared-key")

	assert.Equal(t, int64(2), calls.Load(), "the same key under different partners must not collide")
}
