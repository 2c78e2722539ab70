// internal/session/redis.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "kiosk-dialog/internal/common/errors"
	"kiosk-dialog/internal/common/logger"
	"kiosk-dialog/internal/dialog"
	"kiosk-dialog/internal/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore keeps sessions as JSON under session:<id>, expiring after ttl.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
	now    func() time.Time
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration, log logger.Logger) *RedisStore {
	return &RedisStore{
		redis: rdb,
		ttl:   ttl,
		logger: log.With(map[string]interface{}{
			"component": "session-store",
		}),
		now: time.Now,
	}
}

func (s *RedisStore) Load(ctx context.Context, id string) (dialog.Memory, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return dialog.Memory{}, err
	}
	if sess == nil {
		return dialog.Memory{}, nil
	}
	return dialog.Memory{Last: sess.LastTurn}, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, mem dialog.Memory) error {
	sess, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if sess == nil {
		sess = &models.Session{ID: id}
	}
	sess.LastTurn = mem.Last
	sess.UpdateActivity(s.now())

	data, err := json.Marshal(sess)
	if err != nil {
		return apperrors.NewSessionStoreFailedError("encode", err)
	}
	if err := s.redis.Set(ctx, keyPrefix+id, data, s.ttl).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError("save", err)
	}
	return nil
}

// get returns nil without error when the session does not exist.
func (s *RedisStore) get(ctx context.Context, id string) (*models.Session, error) {
	val, err := s.redis.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError("load", err)
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		// A corrupt entry is treated as a fresh session.
		s.logger.Warn("discarding undecodable session", map[string]interface{}{
			"sessionId": id,
			"error":     err.Error(),
		})
		return nil, nil
	}
	return &sess, nil
}
