package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/client"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/pnr"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

type BookingUseCase interface {
	BookFlight(ctx context.Context, input BookFlightInput) (*domain.Booking, error)
	GetBookingByPNR(ctx context.Context, ref string) (*domain.Booking, error)
	ListBookingsForUser(ctx context.Context, email string) ([]domain.Booking, error)
	CancelBooking(ctx context.Context, ref string) (*domain.Booking, error)
	ReconcileSeatAdjustments(ctx context.Context) (int, error)
}

// InventoryClient is the remote seat-inventory boundary, already wrapped by
// the circuit breaker.
type InventoryClient interface {
	CheckAvailability(ctx context.Context, flightID int64) (*client.FlightAvailability, error)
	ReserveSeats(ctx context.Context, flightID int64, count int) error
	ReleaseSeats(ctx context.Context, flightID int64, count int) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	adjustments        repository.SeatAdjustmentRepository
	inventory          InventoryClient
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	pnrAttempts        int
}

type BookFlightInput struct {
	FlightID   int64            `json:"flight_id"`
	UserName   string           `json:"user_name"`
	UserEmail  string           `json:"user_email"`
	Seats      int              `json:"seats"`
	JourneyAt  time.Time        `json:"journey_at"`
	Passengers []PassengerInput `json:"passengers"`
}

type PassengerInput struct {
	Name       string          `json:"name"`
	Gender     domain.Gender   `json:"gender"`
	Age        int             `json:"age"`
	SeatNumber string          `json:"seat_number"`
	Meal       domain.MealType `json:"meal_type"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	adjustments repository.SeatAdjustmentRepository,
	inventory InventoryClient,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		adjustments:  adjustments,
		inventory:    inventory,
		producer:     producer,
		bookingTopic: bookingTopic,
		pnrAttempts:  3,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// BookFlight runs the booking saga: availability check through the breaker,
// price capture, PNR assignment, atomic local commit, then a best-effort
// remote seat reservation. Once the local commit succeeds the booking exists
// regardless of what the remote side does; a failed remote step is queued for
// reconciliation, never propagated to the caller.
func (s *BookingService) BookFlight(ctx context.Context, input BookFlightInput) (*domain.Booking, error) {
	if err := validateBookFlight(input); err != nil {
		return nil, err
	}

	availability, err := s.inventory.CheckAvailability(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	if availability.AvailableSeats < input.Seats {
		return nil, fmt.Errorf("%w: flight %d has %d, requested %d", domain.ErrInsufficientSeats, input.FlightID, availability.AvailableSeats, input.Seats)
	}

	// Fare is captured at this instant; later fare changes never touch an
	// existing booking.
	totalCents := availability.FareCents * int64(input.Seats)

	booking := &domain.Booking{
		FlightID:   input.FlightID,
		UserName:   input.UserName,
		UserEmail:  input.UserEmail,
		Seats:      input.Seats,
		Status:     domain.BookingStatusBooked,
		TotalCents: totalCents,
		JourneyAt:  input.JourneyAt,
		Passengers: make([]domain.Passenger, 0, len(input.Passengers)),
	}
	for _, p := range input.Passengers {
		booking.Passengers = append(booking.Passengers, domain.Passenger{
			Name:       p.Name,
			Gender:     p.Gender,
			Age:        p.Age,
			SeatNumber: p.SeatNumber,
			Meal:       p.Meal,
		})
	}

	if err := s.persistWithFreshPNR(ctx, booking); err != nil {
		return nil, err
	}
	log.Printf("booking created with pnr %s for flight %d (%d seats)", booking.PNR, booking.FlightID, booking.Seats)

	if err := s.inventory.ReserveSeats(ctx, booking.FlightID, booking.Seats); err != nil {
		// Deliberate: the committed booking is not unwound. The gap is
		// queued for the reconciliation sweep and surfaced to operators.
		log.Printf("remote seat reserve failed for pnr %s, queueing adjustment: %v", booking.PNR, err)
		s.queueAdjustment(ctx, booking, domain.AdjustReserve)
	}

	if err := s.publish(ctx, kafka.EventBookingCreated, booking); err != nil {
		log.Printf("failed to publish %s event for pnr %s: %v", kafka.EventBookingCreated, booking.PNR, err)
	}
	return booking, nil
}

func (s *BookingService) GetBookingByPNR(ctx context.Context, ref string) (*domain.Booking, error) {
	return s.bookings.GetByPNR(ctx, ref)
}

func (s *BookingService) ListBookingsForUser(ctx context.Context, email string) ([]domain.Booking, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	return s.bookings.ListByEmail(ctx, email)
}

// CancelBooking flips the status and runs the compensating seat release
// against the remote inventory, best-effort like the forward direction.
func (s *BookingService) CancelBooking(ctx context.Context, ref string) (*domain.Booking, error) {
	current, err := s.bookings.GetByPNR(ctx, ref)
	if err != nil {
		return nil, err
	}

	updated, err := s.cancelAtRevision(ctx, current)
	if errors.Is(err, repository.ErrRevisionConflict) {
		// Lost update: somebody mutated the booking in between. Re-read and
		// retry once against the fresh revision.
		current, err = s.bookings.GetByPNR(ctx, ref)
		if err != nil {
			return nil, err
		}
		updated, err = s.cancelAtRevision(ctx, current)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("booking %s cancelled", updated.PNR)

	if err := s.inventory.ReleaseSeats(ctx, updated.FlightID, updated.Seats); err != nil {
		if errors.Is(err, domain.ErrOverRelease) {
			// Inventory is already at capacity; nothing left to credit.
			log.Printf("remote release for pnr %s clamped at capacity", updated.PNR)
		} else {
			log.Printf("remote seat release failed for pnr %s, queueing adjustment: %v", updated.PNR, err)
			s.queueAdjustment(ctx, updated, domain.AdjustRelease)
		}
	}

	if err := s.publish(ctx, kafka.EventBookingCancelled, updated); err != nil {
		log.Printf("failed to publish %s event for pnr %s: %v", kafka.EventBookingCancelled, updated.PNR, err)
	}
	return updated, nil
}

func (s *BookingService) cancelAtRevision(ctx context.Context, current *domain.Booking) (*domain.Booking, error) {
	if current.Status == domain.BookingStatusCancelled {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyCancelled, current.PNR)
	}
	if !domain.CanCancelAt(time.Now(), current.JourneyAt) {
		return nil, fmt.Errorf("%w: must cancel at least %v before journey at %s",
			domain.ErrCancellationNotAllowed, domain.CancellationWindow, current.JourneyAt.Format(time.RFC3339))
	}
	return s.bookings.UpdateStatus(ctx, current.PNR, domain.BookingStatusCancelled, current.Revision)
}

// ReconcileSeatAdjustments re-drives pending remote seat mutations. Called
// periodically by the worker; returns how many were applied this sweep.
func (s *BookingService) ReconcileSeatAdjustments(ctx context.Context) (int, error) {
	pending, err := s.adjustments.ListPending(ctx, 100)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, adj := range pending {
		var callErr error
		switch adj.Direction {
		case domain.AdjustReserve:
			callErr = s.inventory.ReserveSeats(ctx, adj.FlightID, adj.Seats)
		case domain.AdjustRelease:
			callErr = s.inventory.ReleaseSeats(ctx, adj.FlightID, adj.Seats)
			if errors.Is(callErr, domain.ErrOverRelease) {
				// Capacity reached; the credit has nowhere to go.
				callErr = nil
			}
		default:
			log.Printf("skipping adjustment %s with unknown direction %q", adj.ID, adj.Direction)
			continue
		}

		if callErr != nil {
			log.Printf("adjustment %s (pnr %s) still failing: %v", adj.ID, adj.PNR, callErr)
			continue
		}
		if err := s.adjustments.MarkApplied(ctx, adj.ID); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

func (s *BookingService) queueAdjustment(ctx context.Context, booking *domain.Booking, direction domain.AdjustmentDirection) {
	adj := &domain.SeatAdjustment{
		FlightID:  booking.FlightID,
		Seats:     booking.Seats,
		Direction: direction,
		PNR:       booking.PNR,
	}
	if err := s.adjustments.Enqueue(ctx, adj); err != nil {
		log.Printf("failed to queue %s adjustment for pnr %s: %v", direction, booking.PNR, err)
	}
	if err := s.publish(ctx, kafka.EventSeatSyncFailed, booking); err != nil {
		log.Printf("failed to publish %s event for pnr %s: %v", kafka.EventSeatSyncFailed, booking.PNR, err)
	}
}

func (s *BookingService) persistWithFreshPNR(ctx context.Context, booking *domain.Booking) error {
	for attempt := 0; attempt < s.pnrAttempts; attempt++ {
		code, err := pnr.Generate()
		if err != nil {
			return err
		}
		booking.PNR = code

		err = s.bookings.Create(ctx, booking)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateReference) {
			return err
		}
		log.Printf("pnr %s already taken, regenerating", code)
	}
	return fmt.Errorf("%w: exhausted %d attempts", domain.ErrDuplicateReference, s.pnrAttempts)
}

func validateBookFlight(input BookFlightInput) error {
	if input.FlightID <= 0 {
		return fmt.Errorf("%w: flight id is required", domain.ErrValidation)
	}
	if input.UserName == "" {
		return fmt.Errorf("%w: user name is required", domain.ErrValidation)
	}
	if input.UserEmail == "" || !strings.Contains(input.UserEmail, "@") {
		return fmt.Errorf("%w: a valid email is required", domain.ErrValidation)
	}
	if input.Seats <= 0 {
		return fmt.Errorf("%w: seat count must be positive", domain.ErrValidation)
	}
	if len(input.Passengers) != input.Seats {
		return fmt.Errorf("%w: %d passengers for %d seats", domain.ErrValidation, len(input.Passengers), input.Seats)
	}
	if !input.JourneyAt.After(time.Now()) {
		return fmt.Errorf("%w: journey time must be in the future", domain.ErrValidation)
	}

	seen := make(map[string]struct{}, len(input.Passengers))
	for _, p := range input.Passengers {
		if p.Name == "" {
			return fmt.Errorf("%w: passenger name is required", domain.ErrValidation)
		}
		if p.Age <= 0 {
			return fmt.Errorf("%w: passenger age must be positive", domain.ErrValidation)
		}
		if p.SeatNumber == "" {
			return fmt.Errorf("%w: passenger seat number is required", domain.ErrValidation)
		}
		if _, dup := seen[p.SeatNumber]; dup {
			return fmt.Errorf("%w: duplicate seat number %s", domain.ErrValidation, p.SeatNumber)
		}
		seen[p.SeatNumber] = struct{}{}
		switch p.Gender {
		case domain.GenderMale, domain.GenderFemale, domain.GenderOther:
		default:
			return fmt.Errorf("%w: unknown gender %q", domain.ErrValidation, p.Gender)
		}
		switch p.Meal {
		case domain.MealVeg, domain.MealNonVeg:
		default:
			return fmt.Errorf("%w: unknown meal type %q", domain.ErrValidation, p.Meal)
		}
	}
	return nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:       eventType,
		PNR:        booking.PNR,
		FlightID:   booking.FlightID,
		Seats:      booking.Seats,
		Email:      booking.UserEmail,
		Status:     string(booking.Status),
		TotalCents: booking.TotalCents,
		JourneyAt:  booking.JourneyAt,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.PNR, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.PNR, event)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
