package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/productapi/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// ErrPublisherUnavailable is returned while the breaker is open and events are being dropped.
var ErrPublisherUnavailable = errors.New("event publisher unavailable")

var _ Publisher = (*ResilientPublisher)(nil)

// ResilientPublisher bounds every publish with a timeout and stops calling the broker
// once it keeps failing, until the breaker's open timeout elapses.
type ResilientPublisher struct {
	next    Publisher
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[struct{}]
}

// NewResilientPublisher wraps next. A timeout of zero leaves the caller's deadline untouched.
func NewResilientPublisher(next Publisher, timeout time.Duration, cfg config.CircuitBreakerConfig, logger *slog.Logger) *ResilientPublisher {
	st := gobreaker.Settings{
		Name:        "event-publisher",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			// the caller giving up is not a broker failure
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &ResilientPublisher{
		next:    next,
		timeout: timeout,
		cb:      gobreaker.NewCircuitBreaker[struct{}](st),
	}
}

func (p *ResilientPublisher) Publish(ctx context.Context, event Event) error {
	_, err := p.cb.Execute(func() (struct{}, error) {
		callCtx := ctx
		if p.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}
		return struct{}{}, p.next.Publish(callCtx, event)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s: %w", ErrPublisherUnavailable, event.Subject(), err)
	}
	return err
}

// State reports the breaker state, e.g. for diagnostics.
func (p *ResilientPublisher) State() gobreaker.State {
	return p.cb.State()
}
