package inventory

import "sync"

// Sections hands out one exclusive section per flight, so the locking
// discipline is visible at the call site: mutations against the same flight
// serialize, different flights run fully in parallel.
type Sections struct {
	mu      sync.Mutex
	flights map[int64]*sync.Mutex
}

func NewSections() *Sections {
	return &Sections{flights: make(map[int64]*sync.Mutex)}
}

// Lock enters the exclusive section for flightID and returns the leave
// function. Entries are never evicted: the map grows by one small mutex per
// distinct flight id seen over the process lifetime, and flights are never
// deleted.
func (s *Sections) Lock(flightID int64) (unlock func()) {
	s.mu.Lock()
	m, ok := s.flights[flightID]
	if !ok {
		m = &sync.Mutex{}
		s.flights[flightID] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}
