package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeatAdjustmentRepository records remote inventory mutations that failed
// after the local commit, so the reconciliation worker can re-drive them.
type SeatAdjustmentRepository interface {
	Enqueue(ctx context.Context, adj *domain.SeatAdjustment) error
	ListPending(ctx context.Context, limit int) ([]domain.SeatAdjustment, error)
	MarkApplied(ctx context.Context, id string) error
}

type PGSeatAdjustmentRepository struct {
	db *pgxpool.Pool
}

func NewSeatAdjustmentRepository(db *pgxpool.Pool) SeatAdjustmentRepository {
	return &PGSeatAdjustmentRepository{db: db}
}

func (r *PGSeatAdjustmentRepository) Enqueue(ctx context.Context, adj *domain.SeatAdjustment) error {
	if adj.ID == "" {
		adj.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `INSERT INTO seat_adjustments (adjustment_id, flight_id, seats, direction, pnr)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		adj.ID, adj.FlightID, adj.Seats, adj.Direction, adj.PNR).Scan(&adj.CreatedAt)
}

func (r *PGSeatAdjustmentRepository) ListPending(ctx context.Context, limit int) ([]domain.SeatAdjustment, error) {
	rows, err := r.db.Query(ctx, `SELECT adjustment_id, flight_id, seats, direction, pnr, created_at, applied_at
		FROM seat_adjustments WHERE applied_at IS NULL ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pending := make([]domain.SeatAdjustment, 0)
	for rows.Next() {
		var a domain.SeatAdjustment
		if err := rows.Scan(&a.ID, &a.FlightID, &a.Seats, &a.Direction, &a.PNR, &a.CreatedAt, &a.AppliedAt); err != nil {
			return nil, err
		}
		pending = append(pending, a)
	}
	return pending, rows.Err()
}

func (r *PGSeatAdjustmentRepository) MarkApplied(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE seat_adjustments SET applied_at=$1 WHERE adjustment_id=$2 AND applied_at IS NULL`, time.Now(), id)
	return err
}

var _ SeatAdjustmentRepository = (*PGSeatAdjustmentRepository)(nil)
