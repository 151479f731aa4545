package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/breaker"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*InventoryClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	b := breaker.New(breaker.Settings{Name: "test", ConsecutiveFailures: 100, Cooldown: time.Minute})
	return NewInventoryClient(srv.URL, time.Second, b), srv
}

func TestCheckAvailability_Success(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1.0/flight/42", r.URL.Path)
		fmt.Fprint(w, `{"success":true,"data":{"availableSeats":10,"fareCents":10000}}`)
	})

	got, err := c.CheckAvailability(context.Background(), 42)
	assert.NoError(t, err)
	assert.Equal(t, 10, got.AvailableSeats)
	assert.Equal(t, int64(10000), got.FareCents)
}

func TestCheckAvailability_SuccessFlagFalse(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"message":"inventory offline"}`)
	})

	_, err := c.CheckAvailability(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrInventoryUnavailable)
}

func TestCheckAvailability_MissingPayload(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true}`)
	})

	_, err := c.CheckAvailability(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrInventoryInvalid)
}

func TestCheckAvailability_MissingSeatCount(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":{"fareCents":10000}}`)
	})

	_, err := c.CheckAvailability(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrInventoryInvalid)
}

func TestCheckAvailability_MissingFare(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":{"availableSeats":10}}`)
	})

	_, err := c.CheckAvailability(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrInventoryInvalid)
}

func TestCheckAvailability_MalformedBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	})

	_, err := c.CheckAvailability(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrInventoryInvalid)
}

func TestCheckAvailability_FlightUnknown(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.CheckAvailability(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckAvailability_ServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.CheckAvailability(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrInventoryUnavailable)
}

func TestReserveSeats_Success(t *testing.T) {
	var gotPath, gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"success":true}`)
	})

	err := c.ReserveSeats(context.Background(), 42, 3)
	assert.NoError(t, err)
	assert.Equal(t, "/api/v1.0/flight/42/reserve", gotPath)
	assert.Equal(t, "count=3", gotQuery)
}

// Флаг success важнее HTTP-статуса: 200 с success=false - это отказ
func TestReserveSeats_SuccessFlagFalseOn200(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"message":"seats not reserved"}`)
	})

	err := c.ReserveSeats(context.Background(), 42, 3)
	assert.ErrorIs(t, err, domain.ErrInventoryUnavailable)
}

func TestReleaseSeats_SuccessFlagFalseOn200(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"message":"seats not released"}`)
	})

	err := c.ReleaseSeats(context.Background(), 42, 3)
	assert.ErrorIs(t, err, domain.ErrInventoryUnavailable)
}

func TestReserveSeats_EmptyBodyOn200(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	err := c.ReserveSeats(context.Background(), 42, 3)
	assert.NoError(t, err)
}

func TestReserveSeats_Insufficient(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"success":false,"message":"insufficient available seats"}`)
	})

	err := c.ReserveSeats(context.Background(), 42, 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientSeats)
}

func TestReleaseSeats_OverReleaseClamped(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"success":false,"message":"release exceeds total seats"}`)
	})

	err := c.ReleaseSeats(context.Background(), 42, 30)
	assert.ErrorIs(t, err, domain.ErrOverRelease)
}

func TestClient_OpenCircuitSkipsNetwork(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	b := breaker.New(breaker.Settings{Name: "test", ConsecutiveFailures: 2, Cooldown: time.Minute})
	c := NewInventoryClient(srv.URL, time.Second, b)

	for i := 0; i < 2; i++ {
		_, err := c.CheckAvailability(context.Background(), 1)
		assert.ErrorIs(t, err, domain.ErrInventoryUnavailable)
	}
	assert.Equal(t, 2, calls)

	// Цепь открыта: вызов падает сразу, без обращения к серверу
	_, err := c.CheckAvailability(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrInventoryUnavailable)
	assert.Equal(t, 2, calls)
}
