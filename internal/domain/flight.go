package domain

import "time"

type Flight struct {
	ID             int64
	FlightNumber   string
	FromPlace      string
	ToPlace        string
	DepartureAt    time.Time
	ArrivalAt      time.Time
	FareCents      int64
	TotalSeats     int
	AvailableSeats int
	Revision       int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AdjustmentDirection identifies which way a pending seat adjustment moves
// the remote inventory.
type AdjustmentDirection string

const (
	AdjustReserve AdjustmentDirection = "RESERVE"
	AdjustRelease AdjustmentDirection = "RELEASE"
)

// SeatAdjustment is a remote inventory mutation that failed after the local
// booking state was already committed. Pending rows are re-driven by the
// reconciliation worker until the inventory owner accepts them.
type SeatAdjustment struct {
	ID        string
	FlightID  int64
	Seats     int
	Direction AdjustmentDirection
	PNR       string
	CreatedAt time.Time
	AppliedAt *time.Time
}
