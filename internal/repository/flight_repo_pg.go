package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, fromPlace, toPlace string, dayStart, dayEnd time.Time) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	UpdateSeats(ctx context.Context, id int64, available int, expectedRevision int64) (*domain.Flight, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `flight_id, flight_number, from_place, to_place, departure_at, arrival_at, fare_cents, total_seats, available_seats, revision, created_at, updated_at`

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	return r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, from_place, to_place, departure_at, arrival_at, fare_cents, total_seats, available_seats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING flight_id, revision, created_at, updated_at`,
		flight.FlightNumber, flight.FromPlace, flight.ToPlace, flight.DepartureAt, flight.ArrivalAt, flight.FareCents, flight.TotalSeats, flight.AvailableSeats).
		Scan(&flight.ID, &flight.Revision, &flight.CreatedAt, &flight.UpdatedAt)
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := scanFlight(rows, &f); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

// Search returns flights for a route departing within [dayStart, dayEnd) that
// still have seats, earliest departure first.
func (r *PGFlightRepository) Search(ctx context.Context, fromPlace, toPlace string, dayStart, dayEnd time.Time) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE from_place=$1 AND to_place=$2 AND departure_at >= $3 AND departure_at < $4 AND available_seats > 0
		ORDER BY departure_at`, fromPlace, toPlace, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := scanFlight(rows, &f); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_id=$1`, id)
	var f domain.Flight
	if err := scanFlight(row, &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: flight %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return &f, nil
}

// UpdateSeats persists a new available count under an optimistic revision
// guard. A concurrent writer in between surfaces as ErrRevisionConflict.
func (r *PGFlightRepository) UpdateSeats(ctx context.Context, id int64, available int, expectedRevision int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `UPDATE flights SET available_seats=$1, revision=revision+1, updated_at=now()
		WHERE flight_id=$2 AND revision=$3
		RETURNING `+flightColumns, available, id, expectedRevision)

	var f domain.Flight
	if err := scanFlight(row, &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: flight %d at revision %d", ErrRevisionConflict, id, expectedRevision)
		}
		return nil, err
	}
	return &f, nil
}

func scanFlight(row pgx.Row, f *domain.Flight) error {
	return row.Scan(&f.ID, &f.FlightNumber, &f.FromPlace, &f.ToPlace, &f.DepartureAt, &f.ArrivalAt, &f.FareCents, &f.TotalSeats, &f.AvailableSeats, &f.Revision, &f.CreatedAt, &f.UpdatedAt)
}

var _ FlightRepository = (*PGFlightRepository)(nil)
