package config

import "fmt"

type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32 `koanf:"consecutiveFailures"`
	ErrorRatePercent    int    `koanf:"errorRatePercent"`
}

func (c *CircuitBreakerConfig) Validate() error {
	if c.ConsecutiveFailures == 0 {
		return fmt.Errorf("circuit breaker consecutive failures is not configured")
	}
	if c.ErrorRatePercent <= 0 || c.ErrorRatePercent > 100 {
		return fmt.Errorf("circuit breaker error rate percent must be in (0, 100]: %d", c.ErrorRatePercent)
	}
	return nil
}
