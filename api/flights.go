package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

// apiResponse is the success-flagged envelope the booking side consumes.
type apiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type searchResponse struct {
	TripType        string           `json:"tripType"`
	OutboundFlights []flightResponse `json:"outboundFlights"`
	ReturnFlights   []flightResponse `json:"returnFlights,omitempty"`
}

type flightResponse struct {
	ID             int64  `json:"id"`
	FlightNumber   string `json:"flightNumber"`
	FromPlace      string `json:"fromPlace"`
	ToPlace        string `json:"toPlace"`
	DepartureAt    string `json:"departureAt"`
	ArrivalAt      string `json:"arrivalAt"`
	FareCents      int64  `json:"fareCents"`
	TotalSeats     int    `json:"totalSeats"`
	AvailableSeats int    `json:"availableSeats"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.add)
	router.GET("/search", h.search)
	router.GET("/:id", h.get)
	router.POST("/:id/reserve", h.reserve)
	router.POST("/:id/release", h.release)
}

func (h *FlightHandler) list(c *gin.Context) {
	flights, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apiResponse{Success: false, Message: err.Error()})
		return
	}

	out := make([]flightResponse, 0, len(flights))
	for i := range flights {
		out = append(out, toFlightResponse(&flights[i]))
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: out})
}

func (h *FlightHandler) add(c *gin.Context) {
	var req flights.AddFlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{Success: false, Message: err.Error()})
		return
	}

	flight, err := h.service.AddFlight(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), apiResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, apiResponse{Success: true, Data: toFlightResponse(flight)})
}

func (h *FlightHandler) search(c *gin.Context) {
	input := flights.SearchInput{
		FromPlace: c.Query("from"),
		ToPlace:   c.Query("to"),
		TripType:  c.Query("trip"),
	}

	seats, err := strconv.Atoi(c.DefaultQuery("seats", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{Success: false, Message: "seats must be an integer"})
		return
	}
	input.Seats = seats

	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apiResponse{Success: false, Message: "date must be formatted as 2006-01-02"})
			return
		}
		input.DepartureDate = day
	}
	if raw := c.Query("return_date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apiResponse{Success: false, Message: "return_date must be formatted as 2006-01-02"})
			return
		}
		input.ReturnDate = day
	}

	result, err := h.service.Search(c.Request.Context(), input)
	if err != nil {
		c.JSON(statusFor(err), apiResponse{Success: false, Message: err.Error()})
		return
	}

	out := searchResponse{TripType: result.TripType, OutboundFlights: make([]flightResponse, 0, len(result.Outbound))}
	for i := range result.Outbound {
		out.OutboundFlights = append(out.OutboundFlights, toFlightResponse(&result.Outbound[i]))
	}
	for i := range result.Return {
		out.ReturnFlights = append(out.ReturnFlights, toFlightResponse(&result.Return[i]))
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: out})
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := flightID(c)
	if !ok {
		return
	}

	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), apiResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, apiResponse{Success: true, Data: toFlightResponse(flight)})
}

func (h *FlightHandler) reserve(c *gin.Context) {
	h.mutateSeats(c, h.service.ReduceSeats)
}

func (h *FlightHandler) release(c *gin.Context) {
	h.mutateSeats(c, h.service.IncreaseSeats)
}

func (h *FlightHandler) mutateSeats(c *gin.Context, mutate func(ctx context.Context, id int64, count int) (*domain.Flight, error)) {
	id, ok := flightID(c)
	if !ok {
		return
	}

	count, err := strconv.Atoi(c.DefaultQuery("count", "1"))
	if err != nil || count <= 0 {
		c.JSON(http.StatusBadRequest, apiResponse{Success: false, Message: "count must be a positive integer"})
		return
	}

	flight, err := mutate(c.Request.Context(), id, count)
	if err != nil {
		c.JSON(statusFor(err), apiResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, apiResponse{Success: true, Data: toFlightResponse(flight)})
}

func flightID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{Success: false, Message: "invalid flight id"})
		return 0, false
	}
	return id, true
}

func toFlightResponse(f *domain.Flight) flightResponse {
	return flightResponse{
		ID:             f.ID,
		FlightNumber:   f.FlightNumber,
		FromPlace:      f.FromPlace,
		ToPlace:        f.ToPlace,
		DepartureAt:    f.DepartureAt.Format(time.RFC3339),
		ArrivalAt:      f.ArrivalAt.Format(time.RFC3339),
		FareCents:      f.FareCents,
		TotalSeats:     f.TotalSeats,
		AvailableSeats: f.AvailableSeats,
	}
}
