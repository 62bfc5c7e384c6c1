package cache

import (
	"fmt"
	"strconv"
	"time"
)

// Snapshot TTL bounds.
const (
	// DefaultTTL is the default snapshot lifetime.
	DefaultTTL = time.Hour

	// MinTTL is the smallest accepted snapshot lifetime.
	MinTTL = time.Minute

	// MaxTTL is the largest accepted snapshot lifetime (7 days).
	MaxTTL = 7 * 24 * time.Hour
)

// ErrInvalidTTL is returned for TTL values outside [MinTTL, MaxTTL].
var ErrInvalidTTL = fmt.Errorf("TTL must be between %s and %s", MinTTL, MaxTTL)

// ParseTTL parses a snapshot TTL in either format:
//   - integer seconds: "3600"
//   - duration string: "1h", "30m", "1h30m"
func ParseTTL(s string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(s); err == nil {
		ttl := time.Duration(seconds) * time.Second
		if ttl < MinTTL || ttl > MaxTTL {
			return 0, fmt.Errorf("%w: got %s", ErrInvalidTTL, ttl)
		}
		return ttl, nil
	}

	ttl, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid TTL format: %w", err)
	}
	if ttl < MinTTL || ttl > MaxTTL {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidTTL, ttl)
	}
	return ttl, nil
}
