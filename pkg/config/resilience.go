package config

import (
	"fmt"
	"strings"
	"time"
)

// CircuitBreakerConfig tunes the breaker placed in front of the event publisher.
// Zero values are replaced by defaults in Validate.
type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutiveFailures"`
	ErrorRatePercent    int           `koanf:"errorRatePercent"`
	OpenTimeout         time.Duration `koanf:"openTimeout"`
}

const (
	defaultConsecutiveFailures = 5
	defaultErrorRatePercent    = 50
	defaultOpenTimeout         = 30 * time.Second
)

// String returns a string representation of the CircuitBreakerConfig.
func (c *CircuitBreakerConfig) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  circuitBreaker.consecutiveFailures: %d\n", c.ConsecutiveFailures))
	b.WriteString(fmt.Sprintf("  circuitBreaker.errorRatePercent: %d\n", c.ErrorRatePercent))
	b.WriteString(fmt.Sprintf("  circuitBreaker.openTimeout: %v\n", c.OpenTimeout))
	return b.String()
}

func (c *CircuitBreakerConfig) Validate() error {
	if c.ErrorRatePercent < 0 || c.ErrorRatePercent > 100 {
		return fmt.Errorf("circuitBreaker.errorRatePercent must be between 0 and 100")
	}
	if c.OpenTimeout < 0 {
		return fmt.Errorf("circuitBreaker.openTimeout must not be negative")
	}
	if c.ConsecutiveFailures == 0 {
		c.ConsecutiveFailures = defaultConsecutiveFailures
	}
	if c.ErrorRatePercent == 0 {
		c.ErrorRatePercent = defaultErrorRatePercent
	}
	if c.OpenTimeout == 0 {
		c.OpenTimeout = defaultOpenTimeout
	}
	return nil
}
