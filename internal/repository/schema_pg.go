package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS time_slots (
		id            TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL,
		slot_date     TEXT NOT NULL,
		slot_time     TEXT NOT NULL,
		total_seats   INTEGER NOT NULL CHECK (total_seats > 0),
		booked_seats  INTEGER NOT NULL DEFAULT 0 CHECK (booked_seats >= 0 AND booked_seats <= total_seats),
		version       INTEGER NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT time_slots_restaurant_date_time_key UNIQUE (restaurant_id, slot_date, slot_time)
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id                  TEXT PRIMARY KEY,
		confirmation_code   TEXT NOT NULL,
		user_id             TEXT NOT NULL,
		restaurant_id       TEXT NOT NULL,
		time_slot_id        TEXT NOT NULL REFERENCES time_slots (id),
		slot_date           TEXT NOT NULL,
		slot_time           TEXT NOT NULL,
		guests              INTEGER NOT NULL CHECK (guests > 0),
		customer_name       TEXT NOT NULL DEFAULT '',
		customer_email      TEXT NOT NULL DEFAULT '',
		customer_phone      TEXT NOT NULL DEFAULT '',
		status              TEXT NOT NULL,
		special_request     TEXT NOT NULL DEFAULT '',
		cancellation_reason TEXT NOT NULL DEFAULT '',
		cancelled_at        TIMESTAMPTZ,
		version             INTEGER NOT NULL DEFAULT 0,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS reservations_confirmation_code_key ON reservations (confirmation_code)`,
	`CREATE INDEX IF NOT EXISTS reservations_user_idx ON reservations (user_id)`,
	`CREATE INDEX IF NOT EXISTS reservations_restaurant_idx ON reservations (restaurant_id, slot_date, slot_time)`,
	`CREATE INDEX IF NOT EXISTS reservations_status_idx ON reservations (status, slot_date, slot_time)`,
}

// EnsureSchema creates the tables and indexes used by the postgres repositories.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
