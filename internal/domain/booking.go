package domain

import "time"

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "BOOKED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

type MealType string

const (
	MealVeg    MealType = "VEG"
	MealNonVeg MealType = "NON_VEG"
)

type Booking struct {
	ID         int64
	PNR        string
	FlightID   int64
	UserName   string
	UserEmail  string
	Seats      int
	Status     BookingStatus
	TotalCents int64
	BookedAt   time.Time
	JourneyAt  time.Time
	Revision   int64
	Passengers []Passenger
}

type Passenger struct {
	ID         int64
	BookingID  int64
	Name       string
	Gender     Gender
	Age        int
	SeatNumber string
	Meal       MealType
}

// CancellationWindow is how long before departure a booking must be cancelled.
const CancellationWindow = 24 * time.Hour

// CanCancelAt reports whether a booking with the given journey time may still
// be cancelled at the given instant. Pure; the caller is responsible for
// checking the booking status first.
func CanCancelAt(now, journeyAt time.Time) bool {
	return now.Before(journeyAt.Add(-CancellationWindow))
}
