package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"NewsPoster/internal/domain"
	"NewsPoster/internal/ports"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call('get', KEYS[1]) == ARGV[1] then
  return redis.call('del', KEYS[1])
end
return 0
`)

// RedisLock is a lease shared by every poster instance pointing at the same Redis.
type RedisLock struct {
	client goredis.UniversalClient
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.Locker = (*RedisLock)(nil)

// NewRedisLock builds a lease on key; ttl defaults to 10 minutes.
func NewRedisLock(client goredis.UniversalClient, key string, ttl time.Duration, logger *slog.Logger) *RedisLock {
	if key == "" {
		key = "newsposter:run-lock"
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisLock{client: client, key: key, ttl: ttl, logger: logger}
}

// Acquire sets the key if absent; an existing key means another run is active.
func (l *RedisLock) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire redis lease: %w", err)
	}
	if !ok {
		return nil, domain.ErrLockHeld
	}

	return func() {
		// The run context may already be done; release on a short fresh deadline.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{l.key}, token).Err(); err != nil && l.logger != nil {
			l.logger.Warn("release redis lease failed", "key", l.key, "error", err)
		}
	}, nil
}
