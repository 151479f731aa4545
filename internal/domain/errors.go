package domain

import "errors"

var (
	ErrValidation             = errors.New("invalid request")
	ErrInsufficientSeats      = errors.New("insufficient available seats")
	ErrInventoryUnavailable   = errors.New("flight inventory service is unavailable")
	ErrInventoryInvalid       = errors.New("flight inventory returned invalid data")
	ErrNotFound               = errors.New("not found")
	ErrAlreadyCancelled       = errors.New("booking is already cancelled")
	ErrCancellationNotAllowed = errors.New("cancellation is no longer allowed")
	ErrDuplicateReference     = errors.New("booking reference already exists")
	ErrOverRelease            = errors.New("release exceeds total seats")
)
