package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, pnr string, status domain.BookingStatus, expectedRevision int64) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const uniqueViolation = "23505"

// Create persists the booking and its passengers as one atomic unit. A PNR
// collision at the unique index surfaces as ErrDuplicateReference so the
// caller can retry with a fresh code.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (pnr, flight_id, user_name, user_email, seats, status, total_cents, journey_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING booking_id, booked_at, revision`,
		booking.PNR, booking.FlightID, booking.UserName, booking.UserEmail, booking.Seats, booking.Status, booking.TotalCents, booking.JourneyAt).
		Scan(&booking.ID, &booking.BookedAt, &booking.Revision); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: pnr %s", domain.ErrDuplicateReference, booking.PNR)
		}
		return err
	}

	for i := range booking.Passengers {
		p := &booking.Passengers[i]
		p.BookingID = booking.ID
		if err := tx.QueryRow(ctx, `INSERT INTO passengers (booking_id, name, gender, age, seat_number, meal_type)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING passenger_id`,
			p.BookingID, p.Name, p.Gender, p.Age, p.SeatNumber, p.Meal).Scan(&p.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT booking_id, pnr, flight_id, user_name, user_email, seats, status, total_cents, booked_at, journey_at, revision
		FROM bookings WHERE pnr=$1`, pnr)

	var b domain.Booking
	if err := row.Scan(&b.ID, &b.PNR, &b.FlightID, &b.UserName, &b.UserEmail, &b.Seats, &b.Status, &b.TotalCents, &b.BookedAt, &b.JourneyAt, &b.Revision); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: booking %s", domain.ErrNotFound, pnr)
		}
		return nil, err
	}

	passengers, err := r.passengersFor(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Passengers = passengers
	return &b, nil
}

func (r *PGBookingRepository) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT booking_id, pnr, flight_id, user_name, user_email, seats, status, total_cents, booked_at, journey_at, revision
		FROM bookings WHERE user_email=$1 ORDER BY booked_at DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.PNR, &b.FlightID, &b.UserName, &b.UserEmail, &b.Seats, &b.Status, &b.TotalCents, &b.BookedAt, &b.JourneyAt, &b.Revision); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// UpdateStatus flips the booking status under an optimistic revision guard.
func (r *PGBookingRepository) UpdateStatus(ctx context.Context, pnr string, status domain.BookingStatus, expectedRevision int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, revision=revision+1
		WHERE pnr=$2 AND revision=$3
		RETURNING booking_id, pnr, flight_id, user_name, user_email, seats, status, total_cents, booked_at, journey_at, revision`,
		status, pnr, expectedRevision)

	var b domain.Booking
	if err := row.Scan(&b.ID, &b.PNR, &b.FlightID, &b.UserName, &b.UserEmail, &b.Seats, &b.Status, &b.TotalCents, &b.BookedAt, &b.JourneyAt, &b.Revision); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: booking %s at revision %d", ErrRevisionConflict, pnr, expectedRevision)
		}
		return nil, err
	}

	passengers, err := r.passengersFor(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Passengers = passengers
	return &b, nil
}

func (r *PGBookingRepository) passengersFor(ctx context.Context, bookingID int64) ([]domain.Passenger, error) {
	rows, err := r.db.Query(ctx, `SELECT passenger_id, booking_id, name, gender, age, seat_number, meal_type
		FROM passengers WHERE booking_id=$1 ORDER BY passenger_id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passengers := make([]domain.Passenger, 0)
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Name, &p.Gender, &p.Age, &p.SeatNumber, &p.Meal); err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
