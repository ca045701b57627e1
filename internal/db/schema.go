package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema holds the full DDL for the service. ApplySchema is idempotent so
// the seed tool can run it against a fresh or existing database.
//
// The partial unique index on appointments is the double-booking backstop:
// only rows with status 'booked' participate, so a cancelled appointment
// does not block the same doctor/instant from being booked again.
const Schema = `
CREATE TABLE IF NOT EXISTS doctors (
    id               UUID PRIMARY KEY,
    name             TEXT NOT NULL,
    email            TEXT NOT NULL UNIQUE,
    password_hash    TEXT NOT NULL,
    specialty        TEXT NOT NULL DEFAULT '',
    qualifications   TEXT[] NOT NULL DEFAULT '{}',
    bio              TEXT NOT NULL DEFAULT '',
    clinic_address   TEXT NOT NULL DEFAULT '',
    phone            TEXT NOT NULL DEFAULT '',
    experience_years INT  NOT NULL DEFAULT 0,
    fee              NUMERIC(10,2) NOT NULL DEFAULT 0,
    status           TEXT NOT NULL DEFAULT 'offline'
                     CHECK (status IN ('available', 'busy', 'offline')),
    lat              DOUBLE PRECISION NOT NULL DEFAULT 0,
    lng              DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS doctors_specialty_idx ON doctors (specialty);

CREATE TABLE IF NOT EXISTS patients (
    id            UUID PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    date_of_birth DATE,
    gender        TEXT NOT NULL DEFAULT '',
    phone         TEXT NOT NULL DEFAULT '',
    address       TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS weekly_schedules (
    doctor_id  UUID PRIMARY KEY,
    week       JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS appointments (
    id            UUID PRIMARY KEY,
    patient_id    UUID NOT NULL,
    doctor_id     UUID NOT NULL,
    scheduled_for TIMESTAMP NOT NULL,
    status        TEXT NOT NULL DEFAULT 'booked'
                  CHECK (status IN ('booked', 'cancelled', 'completed')),
    notes         TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS appointments_active_slot_idx
    ON appointments (doctor_id, scheduled_for)
    WHERE status = 'booked';

CREATE INDEX IF NOT EXISTS appointments_patient_idx ON appointments (patient_id);
CREATE INDEX IF NOT EXISTS appointments_doctor_day_idx ON appointments (doctor_id, scheduled_for);
`

func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
