// Package revocation stores the JTIs of logged-out sessions until the
// tokens would have expired anyway.
package revocation

import (
	"fmt"
	"time"

	"inkwell/pkg/platform/sentinel"
)

// admit reports whether a revocation must be stored. Tokens without a JTI
// cannot be denied individually and are skipped.
func admit(jti string, ttl time.Duration) (bool, error) {
	if jti == "" {
		return false, nil
	}
	if ttl <= 0 {
		return false, fmt.Errorf("revocation ttl %s must be positive: %w", ttl, sentinel.ErrInvalidState)
	}
	return true, nil
}
