// internal/datasource/datasource.go

// Package datasource provides the phone directory and the daily schedules
// (menu, events) the dialog rules read from.
package datasource

import (
	"context"
	"errors"
)

// Schedule names used as the schedule column in Postgres and in cache keys.
const (
	ScheduleMenu   = "menu"
	ScheduleEvents = "events"
)

// DayLayout is the format of the day argument passed to Schedule.Slot.
const DayLayout = "2006-01-02"

var (
	// ErrNotFound is returned when a source answers but holds no value for the key.
	ErrNotFound = errors.New("DATA_NOT_FOUND")
)

// Directory resolves phone directory keys to display strings.
type Directory interface {
	Phone(ctx context.Context, key string) (string, error)
}

// Schedule resolves a slot of one day to its label.
type Schedule interface {
	Slot(ctx context.Context, day, key string) (string, error)
}

// Sources groups everything the dispatcher reads from.
type Sources struct {
	Directory Directory
	Menu      Schedule
	Events    Schedule
}
