package messaging

import (
	"context"
	"time"

	"github.com/abgdnv/gocart/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// BreakerPublisher wraps a Publisher in a Circuit Breaker so that a broker outage
// sheds event publishing instead of stalling cart mutations behind broker timeouts.
type BreakerPublisher struct {
	next Publisher
	cb   *gobreaker.CircuitBreaker[any]
}

func NewBreakerPublisher(next Publisher, cfg config.CircuitBreakerConfig) *BreakerPublisher {
	st := gobreaker.Settings{
		Name:        "event-publisher-cb",
		MaxRequests: 3,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures ||
				(counts.TotalSuccesses+counts.TotalFailures > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(counts.TotalSuccesses+counts.TotalFailures)*100 > float64(cfg.ErrorRatePercent))
		},
	}
	return &BreakerPublisher{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](st),
	}
}

func (p *BreakerPublisher) Publish(ctx context.Context, event Event) error {
	_, err := p.cb.Execute(func() (any, error) {
		return nil, p.next.Publish(ctx, event)
	})
	return err
}
