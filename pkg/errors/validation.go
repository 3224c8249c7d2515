package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxIDLength bounds node and edge identifiers.
const MaxIDLength = 512

// ValidateID validates a node or edge identifier.
//
// Identifiers come from the cluster (resource UIDs, "namespace/name" pairs),
// so the rules are deliberately loose:
//   - No empty identifiers
//   - No control characters or null bytes
//   - Maximum length of MaxIDLength bytes
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidGraph, "%s id cannot be empty", kind)
	}
	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidGraph, "%s id too long (max %d characters)", kind, MaxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "%s id %q contains control characters", kind, id)
		}
	}
	return nil
}

// ValidateAspectRatio checks that a container aspect ratio (width/height) is
// a finite positive number.
func ValidateAspectRatio(ratio float64) error {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return New(ErrCodeInvalidAspectRatio, "aspect ratio must be finite")
	}
	if ratio <= 0 {
		return New(ErrCodeInvalidAspectRatio, "aspect ratio must be positive, got %g", ratio)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateFormat checks that format is one of the supported output formats.
func ValidateFormat(format string, supported ...string) error {
	for _, f := range supported {
		if format == f {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(supported, ", "))
}
