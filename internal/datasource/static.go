// internal/datasource/static.go
package datasource

import (
	"context"
	"fmt"
	"strings"
)

// StaticDirectory serves phone numbers from configuration. Keys read through
// viper arrive lower-cased, so a lookup falls back to the lower-cased key.
type StaticDirectory map[string]string

func (d StaticDirectory) Phone(_ context.Context, key string) (string, error) {
	v := lookupFold(d, key)
	if v == "" {
		return "", fmt.Errorf("%w: directory key %s", ErrNotFound, key)
	}
	return v, nil
}

// StaticSchedule serves the same slot labels for every day.
type StaticSchedule map[string]string

func (s StaticSchedule) Slot(_ context.Context, _ string, key string) (string, error) {
	v := lookupFold(s, key)
	if v == "" {
		return "", fmt.Errorf("%w: slot %s", ErrNotFound, key)
	}
	return v, nil
}

func lookupFold(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return m[strings.ToLower(key)]
}
