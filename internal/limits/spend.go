package limits

import (
	"time"

	"golang.org/x/time/rate"
)

// SpendLimiter caps how many billable generation calls may start per minute.
// A nil *SpendLimiter allows everything.
type SpendLimiter struct {
	limiter *rate.Limiter
}

// NewSpendLimiter returns a limiter admitting callsPerMinute calls with the
// given burst. Returns nil (unlimited) when callsPerMinute is not positive.
func NewSpendLimiter(callsPerMinute float64, burst int) *SpendLimiter {
	if callsPerMinute <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &SpendLimiter{limiter: rate.NewLimiter(rate.Limit(callsPerMinute/60), burst)}
}

// Allow reports whether one more call may start now. It never blocks.
func (s *SpendLimiter) Allow() bool {
	return s.AllowAt(time.Now())
}

// AllowAt is Allow with an explicit clock.
func (s *SpendLimiter) AllowAt(now time.Time) bool {
	if s == nil {
		return true
	}
	return s.limiter.AllowN(now, 1)
}
