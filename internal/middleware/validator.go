package middleware

import (
	"fmt"

	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
)

// ValidateCheckID checks the format of a check id taken from a URL.
func ValidateCheckID(id string) error {
	if id == "" {
		return fmt.Errorf("check ID cannot be empty")
	}
	if !domain.CheckID(id).URLSafe() {
		return fmt.Errorf("invalid check ID format (lowercase alphanumeric, dash, underscore only, max 64 chars)")
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
