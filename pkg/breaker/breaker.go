package breaker

import (
	"time"

	"github.com/sony/gobreaker"

	"github.com/wonny/tokenscout/pkg/logger"
)

// Settings configures one provider breaker
type Settings struct {
	// ConsecutiveFailures trips the breaker
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before a trial request
	OpenTimeout time.Duration
	// HalfOpenRequests is the number of trial requests allowed while half-open
	HalfOpenRequests uint32
	// OnStateChange is called after every transition (optional)
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultSettings trips after 3 straight failures and retries after a minute
func DefaultSettings() Settings {
	return Settings{
		ConsecutiveFailures: 3,
		OpenTimeout:         60 * time.Second,
		HalfOpenRequests:    1,
	}
}

// New creates a circuit breaker that logs its state transitions
// ⭐ SSOT: 외부 프로바이더 서킷브레이커는 여기서만 생성
func New(name string, s Settings, log *logger.Logger) *gobreaker.CircuitBreaker {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 3
	}
	threshold := s.ConsecutiveFailures

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.HalfOpenRequests,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
			if s.OnStateChange != nil {
				s.OnStateChange(name, from, to)
			}
		},
	})
}

// IsOpen reports whether err was returned because the breaker rejected the call
func IsOpen(err error) bool {
	return err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests
}
