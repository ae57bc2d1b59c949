package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func authedHandler(t *testing.T, keys map[string]string, gotTenant *string) http.Handler {
	t.Helper()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotTenant = GetTenantFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return APIKeyAuth(keys)(inner)
}

func TestAPIKeyAuth_TenantScopedKeys(t *testing.T) {
	keys := map[string]string{"acme": "key-acme", "globex": "key-globex"}
	var tenant string
	h := authedHandler(t, keys, &tenant)

	// missing header
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/acme/summary", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// wrong key
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/acme/summary", nil)
	req.Header.Set("Authorization", "Bearer nope")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// right key, matching tenant
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/v1/acme/summary", nil)
	req.Header.Set("Authorization", "Bearer key-acme")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acme", tenant)

	// a valid key cannot reach another tenant's data
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/v1/globex/summary", nil)
	req.Header.Set("Authorization", "Bearer key-acme")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// bare key without the Bearer prefix also works
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/v1/globex/summary", nil)
	req.Header.Set("Authorization", "key-globex")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "globex", tenant)
}

func TestAPIKeyAuth_OperationalPathsStayOpen(t *testing.T) {
	var tenant string
	h := authedHandler(t, map[string]string{"acme": "key-acme"}, &tenant)

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestTenantFromPath(t *testing.T) {
	assert.Equal(t, "acme", TenantFromPath("/v1/acme/metadata/latest"))
	assert.Equal(t, "acme", TenantFromPath("/v1/acme"))
	assert.Equal(t, "", TenantFromPath("/health"))
	assert.Equal(t, "", TenantFromPath("/v2/acme/summary"))
	assert.Equal(t, "", TenantFromPath("/v1"))
}
