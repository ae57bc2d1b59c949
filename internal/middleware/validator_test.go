package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFingerprint(t *testing.T) {
	assert.NoError(t, ValidateFingerprint("0123456789abcdef0123456789abcdef"))
	assert.NoError(t, ValidateFingerprint("0123456789ABCDEF0123456789ABCDEF"), "uppercase is normalized")

	assert.Error(t, ValidateFingerprint(""))
	assert.Error(t, ValidateFingerprint("0123456789abcdef"), "too short")
	assert.Error(t, ValidateFingerprint("0123456789abcdef0123456789abcdeg"), "non-hex char")
	assert.Error(t, ValidateFingerprint(strings.Repeat("a", 33)))
}

func TestValidateKind(t *testing.T) {
	assert.NoError(t, ValidateKind(""))
	assert.NoError(t, ValidateKind("IMAGE"))
	assert.NoError(t, ValidateKind("video"))
	assert.Error(t, ValidateKind("AUDIO"))
	assert.Error(t, ValidateKind("IMG"))
}

func TestValidateObjectKey(t *testing.T) {
	assert.NoError(t, ValidateObjectKey(""))
	assert.NoError(t, ValidateObjectKey("uploads/2026/photo.jpg"))
	assert.NoError(t, ValidateObjectKey("a/b/c.mp4"))

	assert.Error(t, ValidateObjectKey("../etc/passwd"))
	assert.Error(t, ValidateObjectKey("uploads/../../secret"))
	assert.Error(t, ValidateObjectKey("/absolute/path"))
	assert.Error(t, ValidateObjectKey("key$(rm -rf)"))
	assert.Error(t, ValidateObjectKey("key`cmd`"))
	assert.Error(t, ValidateObjectKey("a;b"))
	assert.Error(t, ValidateObjectKey("a|b"))
	assert.Error(t, ValidateObjectKey("a\nb"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello  "))
	assert.Equal(t, "ab", SanitizeString("a\x00b"))
	assert.Equal(t, "a\tb", SanitizeString("a\tb"))
	assert.Equal(t, "ab", SanitizeString("a\x07\x1bb"))
}

func TestValidateTenantID(t *testing.T) {
	assert.NoError(t, ValidateTenantID("acme"))
	assert.NoError(t, ValidateTenantID("tenant_01-a"))
	assert.Error(t, ValidateTenantID(""))
	assert.Error(t, ValidateTenantID("bad tenant"))
	assert.Error(t, ValidateTenantID(strings.Repeat("x", 65)))
}

func TestValidateLimitAndDays(t *testing.T) {
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 20, ValidateLimit(-5))
	assert.Equal(t, 50, ValidateLimit(50))
	assert.Equal(t, 100, ValidateLimit(999))

	assert.Equal(t, 7, ValidateDays(0))
	assert.Equal(t, 30, ValidateDays(30))
	assert.Equal(t, 365, ValidateDays(1000))
}
