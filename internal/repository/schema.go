package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS flights (
	flight_id       BIGSERIAL PRIMARY KEY,
	flight_number   TEXT        NOT NULL,
	from_place      TEXT        NOT NULL,
	to_place        TEXT        NOT NULL,
	departure_at    TIMESTAMPTZ NOT NULL,
	arrival_at      TIMESTAMPTZ NOT NULL,
	fare_cents      BIGINT      NOT NULL,
	total_seats     INT         NOT NULL,
	available_seats INT         NOT NULL CHECK (available_seats >= 0 AND available_seats <= total_seats),
	revision        BIGINT      NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (flight_number, departure_at)
);

CREATE TABLE IF NOT EXISTS bookings (
	booking_id  BIGSERIAL PRIMARY KEY,
	pnr         TEXT        NOT NULL UNIQUE,
	flight_id   BIGINT      NOT NULL,
	user_name   TEXT        NOT NULL,
	user_email  TEXT        NOT NULL,
	seats       INT         NOT NULL CHECK (seats > 0),
	status      TEXT        NOT NULL,
	total_cents BIGINT      NOT NULL,
	booked_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	journey_at  TIMESTAMPTZ NOT NULL,
	revision    BIGINT      NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_bookings_user_email ON bookings (user_email, booked_at DESC);

CREATE TABLE IF NOT EXISTS passengers (
	passenger_id BIGSERIAL PRIMARY KEY,
	booking_id   BIGINT NOT NULL REFERENCES bookings (booking_id),
	name         TEXT   NOT NULL,
	gender       TEXT   NOT NULL,
	age          INT    NOT NULL CHECK (age > 0),
	seat_number  TEXT   NOT NULL,
	meal_type    TEXT   NOT NULL,
	UNIQUE (booking_id, seat_number)
);

CREATE TABLE IF NOT EXISTS seat_adjustments (
	adjustment_id UUID PRIMARY KEY,
	flight_id     BIGINT      NOT NULL,
	seats         INT         NOT NULL,
	direction     TEXT        NOT NULL,
	pnr           TEXT        NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	applied_at    TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_seat_adjustments_pending ON seat_adjustments (created_at) WHERE applied_at IS NULL;
`

// InitSchema creates the tables on startup when they do not exist yet.
func InitSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schema)
	return err
}
