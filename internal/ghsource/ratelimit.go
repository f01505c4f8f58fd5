package ghsource

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when the GitHub API rate limit has been exceeded.
var ErrRateLimited = errors.New("rate limited")

// rateLimitState tracks the rate limit reported by API responses. One
// instance is shared by every request going through a client's transport.
type rateLimitState struct {
	mu        sync.RWMutex
	limited   bool
	resetAt   time.Time
	remaining int
	limit     int
}

// isLimited returns true if we are currently rate limited.
func (s *rateLimitState) isLimited() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.limited {
		return false
	}

	// Check if the rate limit window has reset
	if time.Now().After(s.resetAt) {
		return false
	}

	return true
}

// setLimited marks the client as rate limited until resetAt.
func (s *rateLimitState) setLimited(resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limited = true
	s.resetAt = resetAt
}

// update records the rate limit state from response headers.
func (s *rateLimitState) update(remaining, limit int, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remaining = remaining
	s.limit = limit
	s.resetAt = resetAt

	// If remaining is 0, mark as limited
	if remaining == 0 {
		s.limited = true
	}
}
