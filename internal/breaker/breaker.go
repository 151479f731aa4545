package breaker

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/sony/gobreaker"
)

// Settings are the transition thresholds; they come from configuration, not
// code.
type Settings struct {
	Name                string
	ConsecutiveFailures uint32
	Cooldown            time.Duration
	HalfOpenRequests    uint32
}

// Breaker wraps calls to the remote inventory owner in a three-state circuit
// breaker. Closed passes calls through and counts failures; after
// ConsecutiveFailures the circuit opens and calls fail fast without a network
// attempt; after Cooldown a half-open probe is let through, closing the
// circuit on success and reopening it on failure.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

func New(s Settings) *Breaker {
	threshold := s.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	cooldown := s.Cooldown
	if cooldown == 0 {
		cooldown = 30 * time.Second
	}
	probes := s.HalfOpenRequests
	if probes == 0 {
		probes = 1
	}

	return &Breaker{
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        s.Name,
			MaxRequests: probes,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Printf("circuit breaker %q: %s -> %s", name, from, to)
			},
			// Business rejections are answers from a healthy service, not
			// failures of it.
			IsSuccessful: func(err error) bool {
				return err == nil ||
					errors.Is(err, domain.ErrNotFound) ||
					errors.Is(err, domain.ErrInsufficientSeats) ||
					errors.Is(err, domain.ErrOverRelease)
			},
		}),
	}
}

// Execute runs fn through the breaker. When the circuit is open the fallback
// kicks in: the caller gets ErrInventoryUnavailable immediately, never a
// fabricated success.
func (b *Breaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	res, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit %q is open", domain.ErrInventoryUnavailable, b.cb.Name())
		}
		return nil, err
	}
	return res, nil
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
