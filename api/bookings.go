package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type passengerResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Gender     string `json:"gender"`
	Age        int    `json:"age"`
	SeatNumber string `json:"seat_number"`
	MealType   string `json:"meal_type"`
}

type bookingResponse struct {
	ID         int64               `json:"id"`
	PNR        string              `json:"pnr"`
	FlightID   int64               `json:"flight_id"`
	UserName   string              `json:"user_name"`
	UserEmail  string              `json:"user_email"`
	Seats      int                 `json:"seats"`
	Status     string              `json:"status"`
	TotalCents int64               `json:"total_cents"`
	BookedAt   string              `json:"booked_at"`
	JourneyAt  string              `json:"journey_at"`
	Passengers []passengerResponse `json:"passengers"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:pnr", h.get)
	router.GET("/history/:email", h.history)
	router.DELETE("/:pnr", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.BookFlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.BookFlight(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) get(c *gin.Context) {
	found, err := h.service.GetBookingByPNR(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) history(c *gin.Context) {
	bookings, err := h.service.ListBookingsForUser(c.Request.Context(), c.Param("email"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	cancelled, err := h.service.CancelBooking(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(cancelled))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	passengers := make([]passengerResponse, 0, len(b.Passengers))
	for _, p := range b.Passengers {
		passengers = append(passengers, passengerResponse{
			ID:         p.ID,
			Name:       p.Name,
			Gender:     string(p.Gender),
			Age:        p.Age,
			SeatNumber: p.SeatNumber,
			MealType:   string(p.Meal),
		})
	}

	return bookingResponse{
		ID:         b.ID,
		PNR:        b.PNR,
		FlightID:   b.FlightID,
		UserName:   b.UserName,
		UserEmail:  b.UserEmail,
		Seats:      b.Seats,
		Status:     string(b.Status),
		TotalCents: b.TotalCents,
		BookedAt:   b.BookedAt.Format(time.RFC3339),
		JourneyAt:  b.JourneyAt.Format(time.RFC3339),
		Passengers: passengers,
	}
}
