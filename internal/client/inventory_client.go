package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/breaker"
	"github.com/Domenick1991/flightbooking/internal/domain"
)

// FlightAvailability is what the inventory owner reports for one flight at
// the instant of the call.
type FlightAvailability struct {
	AvailableSeats int
	FareCents      int64
}

// apiEnvelope mirrors the inventory owner's response wrapper. Seat count and
// fare are pointers so a missing field is distinguishable from zero.
type apiEnvelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    *flightData `json:"data"`
}

type flightData struct {
	AvailableSeats *int   `json:"availableSeats"`
	FareCents      *int64 `json:"fareCents"`
}

// InventoryClient talks to the flight seat-inventory owner over HTTP. Every
// call goes through the circuit breaker; an open circuit fails fast with
// ErrInventoryUnavailable and no network attempt.
type InventoryClient struct {
	baseURL string
	http    *http.Client
	breaker *breaker.Breaker
}

func NewInventoryClient(baseURL string, timeout time.Duration, b *breaker.Breaker) *InventoryClient {
	return &InventoryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		breaker: b,
	}
}

func (c *InventoryClient) CheckAvailability(ctx context.Context, flightID int64) (*FlightAvailability, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchFlight(ctx, flightID)
	})
	if err != nil {
		return nil, err
	}
	return res.(*FlightAvailability), nil
}

func (c *InventoryClient) ReserveSeats(ctx context.Context, flightID int64, count int) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.postSeatChange(ctx, flightID, "reserve", count)
	})
	return err
}

func (c *InventoryClient) ReleaseSeats(ctx context.Context, flightID int64, count int) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.postSeatChange(ctx, flightID, "release", count)
	})
	return err
}

func (c *InventoryClient) fetchFlight(ctx context.Context, flightID int64) (*FlightAvailability, error) {
	url := fmt.Sprintf("%s/api/v1.0/flight/%d", c.baseURL, flightID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInventoryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: flight %d", domain.ErrNotFound, flightID)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: inventory responded with %d", domain.ErrInventoryUnavailable, resp.StatusCode)
	}

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrInventoryInvalid, err)
	}
	if !env.Success {
		return nil, fmt.Errorf("%w: %s", domain.ErrInventoryUnavailable, env.Message)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: flight %d: response without data", domain.ErrInventoryInvalid, flightID)
	}
	if env.Data.AvailableSeats == nil {
		return nil, fmt.Errorf("%w: flight %d: response without seat count", domain.ErrInventoryInvalid, flightID)
	}
	if env.Data.FareCents == nil {
		// A fare-less response would price the booking at zero.
		return nil, fmt.Errorf("%w: flight %d: response without fare", domain.ErrInventoryInvalid, flightID)
	}

	return &FlightAvailability{
		AvailableSeats: *env.Data.AvailableSeats,
		FareCents:      *env.Data.FareCents,
	}, nil
}

func (c *InventoryClient) postSeatChange(ctx context.Context, flightID int64, action string, count int) error {
	url := fmt.Sprintf("%s/api/v1.0/flight/%d/%s?count=%d", c.baseURL, flightID, action, count)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInventoryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusMultipleChoices {
		// The success flag is authoritative even on a 2xx status; a body is
		// optional on success.
		var env apiEnvelope
		err := json.NewDecoder(resp.Body).Decode(&env)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s seats: decode response: %v", domain.ErrInventoryInvalid, action, err)
		}
		if !env.Success {
			return fmt.Errorf("%w: %s seats: %s", domain.ErrInventoryUnavailable, action, env.Message)
		}
		return nil
	}

	var env apiEnvelope
	_ = json.NewDecoder(resp.Body).Decode(&env)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: flight %d", domain.ErrNotFound, flightID)
	case http.StatusConflict:
		if action == "release" {
			return fmt.Errorf("%w: flight %d", domain.ErrOverRelease, flightID)
		}
		return fmt.Errorf("%w: flight %d", domain.ErrInsufficientSeats, flightID)
	default:
		return fmt.Errorf("%w: %s seats: inventory responded with %d: %s", domain.ErrInventoryUnavailable, action, resp.StatusCode, env.Message)
	}
}
