package flights

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/inventory"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

type FlightUseCase interface {
	AddFlight(ctx context.Context, input AddFlightInput) (*domain.Flight, error)
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, input SearchInput) (*SearchResult, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	ReduceSeats(ctx context.Context, id int64, count int) (*domain.Flight, error)
	IncreaseSeats(ctx context.Context, id int64, count int) (*domain.Flight, error)
}

type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

const (
	TripOneWay    = "ONE_WAY"
	TripRoundTrip = "ROUND_TRIP"
)

// SearchInput describes a route search. ReturnDate is consulted only for
// round trips.
type SearchInput struct {
	FromPlace     string    `json:"from_place"`
	ToPlace       string    `json:"to_place"`
	DepartureDate time.Time `json:"departure_date"`
	ReturnDate    time.Time `json:"return_date"`
	Seats         int       `json:"seats"`
	TripType      string    `json:"trip_type"`
}

type SearchResult struct {
	TripType string
	Outbound []domain.Flight
	Return   []domain.Flight
}

type AddFlightInput struct {
	FlightNumber string    `json:"flight_number"`
	FromPlace    string    `json:"from_place"`
	ToPlace      string    `json:"to_place"`
	DepartureAt  time.Time `json:"departure_at"`
	ArrivalAt    time.Time `json:"arrival_at"`
	FareCents    int64     `json:"fare_cents"`
	TotalSeats   int       `json:"total_seats"`
}

// FlightService owns the seat inventory. Same-flight mutations serialize on
// a per-flight exclusive section; the revision guard on the row catches
// writers outside this process.
type FlightService struct {
	repo     repository.FlightRepository
	cache    Cache
	sections *inventory.Sections
}

func NewFlightService(repo repository.FlightRepository, cache Cache) *FlightService {
	return &FlightService{repo: repo, cache: cache, sections: inventory.NewSections()}
}

func (s *FlightService) AddFlight(ctx context.Context, input AddFlightInput) (*domain.Flight, error) {
	if input.FlightNumber == "" || input.FromPlace == "" || input.ToPlace == "" {
		return nil, fmt.Errorf("%w: flight number and route are required", domain.ErrValidation)
	}
	if input.TotalSeats <= 0 {
		return nil, fmt.Errorf("%w: total seats must be positive", domain.ErrValidation)
	}
	if input.FareCents <= 0 {
		return nil, fmt.Errorf("%w: fare must be positive", domain.ErrValidation)
	}
	if input.ArrivalAt.Before(input.DepartureAt) {
		return nil, fmt.Errorf("%w: arrival cannot be before departure", domain.ErrValidation)
	}

	flight := &domain.Flight{
		FlightNumber:   input.FlightNumber,
		FromPlace:      input.FromPlace,
		ToPlace:        input.ToPlace,
		DepartureAt:    input.DepartureAt,
		ArrivalAt:      input.ArrivalAt,
		FareCents:      input.FareCents,
		TotalSeats:     input.TotalSeats,
		AvailableSeats: input.TotalSeats,
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
	log.Printf("flight %s added with %d seats", flight.FlightNumber, flight.TotalSeats)
	return flight, nil
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

// Search finds outbound flights for the route on the requested day with at
// least the requested seats, and return-leg flights for round trips.
func (s *FlightService) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	if input.FromPlace == "" || input.ToPlace == "" {
		return nil, fmt.Errorf("%w: route is required", domain.ErrValidation)
	}
	if input.FromPlace == input.ToPlace {
		return nil, fmt.Errorf("%w: departure and destination must differ", domain.ErrValidation)
	}
	if input.Seats <= 0 {
		return nil, fmt.Errorf("%w: seat count must be positive", domain.ErrValidation)
	}
	if input.DepartureDate.IsZero() {
		return nil, fmt.Errorf("%w: departure date is required", domain.ErrValidation)
	}
	if input.TripType == "" {
		input.TripType = TripOneWay
	}
	if input.TripType != TripOneWay && input.TripType != TripRoundTrip {
		return nil, fmt.Errorf("%w: unknown trip type %q", domain.ErrValidation, input.TripType)
	}
	if input.TripType == TripRoundTrip && input.ReturnDate.IsZero() {
		return nil, fmt.Errorf("%w: return date is required for a round trip", domain.ErrValidation)
	}

	outbound, err := s.searchLeg(ctx, input.FromPlace, input.ToPlace, input.DepartureDate, input.Seats)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{TripType: input.TripType, Outbound: outbound}
	if input.TripType == TripRoundTrip {
		// Обратное плечо: маршрут в обратную сторону на дату возврата
		result.Return, err = s.searchLeg(ctx, input.ToPlace, input.FromPlace, input.ReturnDate, input.Seats)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *FlightService) searchLeg(ctx context.Context, fromPlace, toPlace string, day time.Time, seats int) ([]domain.Flight, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	found, err := s.repo.Search(ctx, fromPlace, toPlace, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	matching := make([]domain.Flight, 0, len(found))
	for _, f := range found {
		if f.AvailableSeats >= seats {
			matching = append(matching, f)
		}
	}
	return matching, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) ReduceSeats(ctx context.Context, id int64, count int) (*domain.Flight, error) {
	return s.mutateSeats(ctx, id, func(pool *inventory.SeatPool) error {
		return pool.Reserve(count)
	})
}

func (s *FlightService) IncreaseSeats(ctx context.Context, id int64, count int) (*domain.Flight, error) {
	return s.mutateSeats(ctx, id, func(pool *inventory.SeatPool) error {
		return pool.Release(count)
	})
}

// mutateSeats applies one seat mutation inside the flight's exclusive
// section: read the row, enforce the pool bounds, persist under the revision
// guard. A guard miss means an external writer got in between; re-read and
// retry once.
func (s *FlightService) mutateSeats(ctx context.Context, id int64, mutate func(*inventory.SeatPool) error) (*domain.Flight, error) {
	unlock := s.sections.Lock(id)
	defer unlock()

	var updated *domain.Flight
	var overRelease error
	for attempt := 0; attempt < 2; attempt++ {
		flight, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		pool, err := inventory.NewSeatPool(flight.TotalSeats, flight.AvailableSeats, flight.Revision)
		if err != nil {
			return nil, err
		}
		if err := mutate(pool); err != nil {
			// An over-release is clamped at capacity, not dropped: the
			// clamped count is persisted and the condition surfaced.
			if !errors.Is(err, domain.ErrOverRelease) {
				return nil, err
			}
			overRelease = err
		}
		_, available, _ := pool.Snapshot()

		updated, err = s.repo.UpdateSeats(ctx, id, available, flight.Revision)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrRevisionConflict) && attempt == 0 {
			log.Printf("revision conflict on flight %d, retrying", id)
			overRelease = nil
			continue
		}
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
	if overRelease != nil {
		log.Printf("release clamped at capacity for flight %d", id)
		return updated, overRelease
	}
	return updated, nil
}

var _ FlightUseCase = (*FlightService)(nil)
