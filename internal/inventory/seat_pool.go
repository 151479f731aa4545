package inventory

import (
	"fmt"
	"sync"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

// SeatPool holds the seat counters for one flight. Every mutation runs under
// a single exclusive section, so 0 <= available <= total holds at every
// observable instant and the revision moves by exactly one per successful
// mutation.
type SeatPool struct {
	mu        sync.Mutex
	total     int
	available int
	revision  int64
}

func NewSeatPool(total, available int, revision int64) (*SeatPool, error) {
	if total < 0 || available < 0 || available > total {
		return nil, fmt.Errorf("seat pool bounds violated: available=%d total=%d", available, total)
	}
	return &SeatPool{total: total, available: available, revision: revision}, nil
}

// HasCapacity reports whether n seats are currently available. No side effect;
// the answer may be stale by the time the caller acts on it.
func (p *SeatPool) HasCapacity(n int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return n >= 0 && p.available >= n
}

func (p *SeatPool) Reserve(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: reserve count must be positive", domain.ErrValidation)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.available < n {
		return fmt.Errorf("%w: requested %d, available %d", domain.ErrInsufficientSeats, n, p.available)
	}
	p.available -= n
	p.revision++
	return nil
}

// Release returns n seats to the pool, clamping at total. A release that
// would push available past total credits only up to total and reports
// ErrOverRelease.
func (p *SeatPool) Release(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: release count must be positive", domain.ErrValidation)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.available+n > p.total {
		p.available = p.total
		p.revision++
		return fmt.Errorf("%w: flight capacity %d", domain.ErrOverRelease, p.total)
	}
	p.available += n
	p.revision++
	return nil
}

// Snapshot returns the current counters in one consistent read.
func (p *SeatPool) Snapshot() (total, available int, revision int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total, p.available, p.revision
}
