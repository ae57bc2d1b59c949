package middleware

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

var fingerprintRe = regexp.MustCompile(`^[a-f0-9]{32}$`)

// ValidateFingerprint checks a hex MD5 content fingerprint
func ValidateFingerprint(md5 string) error {
	if md5 == "" {
		return fmt.Errorf("file_md5 cannot be empty")
	}
	if !fingerprintRe.MatchString(strings.ToLower(md5)) {
		return fmt.Errorf("invalid file_md5 format (expect 32 hex chars)")
	}
	return nil
}

// ValidateKind checks the media kind field
func ValidateKind(kind string) error {
	if kind == "" {
		return nil // Optional field, backfilled from catalog
	}
	k := strings.ToUpper(kind)
	if k != "IMAGE" && k != "VIDEO" {
		return fmt.Errorf("invalid kind: %s (allowed: IMAGE, VIDEO)", kind)
	}
	return nil
}

// ValidateObjectKey validates object storage keys (for security)
func ValidateObjectKey(key string) error {
	if key == "" {
		return nil // Optional field, backfilled from catalog
	}

	cleaned := path.Clean(key)

	// Block path traversal attempts
	if strings.Contains(cleaned, "..") {
		return fmt.Errorf("path traversal detected")
	}
	if strings.HasPrefix(cleaned, "/") {
		return fmt.Errorf("object key must be relative")
	}

	// Block dangerous patterns
	dangerous := []string{"$(", "`", "&", "|", ";", "\n", "\r"}
	for _, d := range dangerous {
		if strings.Contains(key, d) {
			return fmt.Errorf("invalid characters in object key")
		}
	}

	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}

	// Allow alphanumeric, dash, underscore (max 64 chars)
	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, tenant)
	if !matched {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateDays validates days parameter
func ValidateDays(days int) int {
	if days <= 0 {
		return 7 // default
	}
	if days > 365 {
		return 365 // max 1 year
	}
	return days
}
