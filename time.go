package account

import "time"

// ExpiresAt returns now plus ttl as a pointer ready to persist
func ExpiresAt(now time.Time, ttl time.Duration) *time.Time {
	t := now.Add(ttl)
	return &t
}

// IsExpired reports whether a deadline is missing or not after now.
// A missing deadline counts as expired.
func IsExpired(deadline *time.Time, now time.Time) bool {
	if deadline == nil {
		return true
	}
	return !deadline.After(now)
}
