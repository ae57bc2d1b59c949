package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucket_Take(t *testing.T) {
	tb := NewTokenBucket(3, 0)
	assert.True(t, tb.Take(1))
	assert.True(t, tb.Take(1))
	assert.True(t, tb.Take(1))
	assert.False(t, tb.Take(1))

	// a cost larger than what's left is refused whole
	tb = NewTokenBucket(3, 0)
	assert.False(t, tb.Take(4))
	assert.True(t, tb.Take(3))

	// cost floors at one token
	tb = NewTokenBucket(1, 0)
	assert.True(t, tb.Take(0))
	assert.False(t, tb.Take(0))
}

func TestRequestCost(t *testing.T) {
	assert.Equal(t, 5, requestCost("/v1/acme/forensics/ela"))
	assert.Equal(t, 5, requestCost("/v1/acme/forensics/copymove"))
	assert.Equal(t, 1, requestCost("/v1/acme/metadata/latest"))
}

func TestRateLimitMiddleware_PerTenantBuckets(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	// capacity 5, no refill: one forensics call drains a tenant's bucket
	h := RateLimitMiddleware(5, 0)(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/acme/forensics/ela", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/acme/metadata/latest", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// another tenant has its own bucket
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/globex/metadata/latest", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// operational endpoints are never throttled
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetrics_DomainCounters(t *testing.T) {
	before := GetMetrics()
	IncrementPixelOps()
	IncrementAIReviews()
	after := GetMetrics()

	assert.Equal(t, before["pixel_ops_total"].(uint64)+1, after["pixel_ops_total"])
	assert.Equal(t, before["ai_reviews_total"].(uint64)+1, after["ai_reviews_total"])
}
