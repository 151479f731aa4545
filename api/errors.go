package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientSeats),
		errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrCancellationNotAllowed),
		errors.Is(err, domain.ErrDuplicateReference),
		errors.Is(err, domain.ErrOverRelease):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInventoryUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInventoryInvalid):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
