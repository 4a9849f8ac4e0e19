package limiter

import (
	"golang.org/x/time/rate"
)

type Limiter interface {
	limiterSetup()
}

// New returns a limiter allowing limit requests per second, or nil when
// limit is not positive.
func New(limit int) *rate.Limiter {
	if limit <= 0 {
		return nil
	}

	return rate.NewLimiter(rate.Limit(limit), limit)
}
