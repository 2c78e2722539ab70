// internal/datasource/postgres.go
package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	phoneQuery = `SELECT phone FROM phone_directory WHERE key = $1`
	slotQuery  = `SELECT label FROM schedule_slots WHERE schedule = $1 AND day = $2 AND slot_key = $3`
)

// PostgresDirectory reads the phone_directory table.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) Phone(ctx context.Context, key string) (string, error) {
	var phone sql.NullString
	err := d.db.QueryRowContext(ctx, phoneQuery, key).Scan(&phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: directory key %s", ErrNotFound, key)
		}
		return "", fmt.Errorf("query phone_directory: %w", err)
	}
	if !phone.Valid || phone.String == "" {
		return "", fmt.Errorf("%w: directory key %s", ErrNotFound, key)
	}
	return phone.String, nil
}

// PostgresSchedule reads one schedule out of the schedule_slots table.
type PostgresSchedule struct {
	db       *sql.DB
	schedule string
}

func NewPostgresSchedule(db *sql.DB, schedule string) *PostgresSchedule {
	return &PostgresSchedule{db: db, schedule: schedule}
}

func (s *PostgresSchedule) Slot(ctx context.Context, day, key string) (string, error) {
	var label sql.NullString
	err := s.db.QueryRowContext(ctx, slotQuery, s.schedule, day, key).Scan(&label)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s slot %s on %s", ErrNotFound, s.schedule, key, day)
		}
		return "", fmt.Errorf("query schedule_slots: %w", err)
	}
	if !label.Valid || label.String == "" {
		return "", fmt.Errorf("%w: %s slot %s on %s", ErrNotFound, s.schedule, key, day)
	}
	return label.String, nil
}
