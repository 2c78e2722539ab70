// internal/session/store.go

// Package session keeps last-turn memory between the turns of a conversation.
package session

import (
	"context"
	"fmt"

	"kiosk-dialog/internal/common/config"
	"kiosk-dialog/internal/common/logger"
	"kiosk-dialog/internal/dialog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store loads and saves the memory of one session. Loading an unknown or
// expired session yields empty memory, not an error.
type Store interface {
	Load(ctx context.Context, id string) (dialog.Memory, error)
	Save(ctx context.Context, id string, mem dialog.Memory) error
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// New builds the configured store. rdb is required for the redis driver.
func New(cfg config.SessionConfig, rdb *redis.Client, log logger.Logger) (Store, error) {
	ttl := config.GetDuration(cfg.TTL)

	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(ttl), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("redis session store requires a redis client")
		}
		return NewRedisStore(rdb, ttl, log), nil
	default:
		return nil, fmt.Errorf("unknown session driver %q", cfg.Driver)
	}
}
