package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"litoralnorte/imovelworker/logger"
)

// releaseScript deletes the lease only when the caller still owns it
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// RedisLocker implements Locker using a redis SET NX PX lease
type RedisLocker struct {
	client *redis.Client
}

// NewRedisLocker creates a new redis-backed locker
func NewRedisLocker(addr string, db int) *RedisLocker {
	return &RedisLocker{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
	}
}

// Acquire takes the lease for name with the given TTL
func (l *RedisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	token := newToken()

	ok, err := l.client.SetNX(ctx, name, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyHeld
	}

	release := func() {
		if err := l.client.Eval(context.Background(), releaseScript, []string{name}, token).Err(); err != nil {
			logger.ForPipeline().Warn().Err(err).Str("lock", name).Msg("Failed to release run lock")
		}
	}
	return release, nil
}

// Close closes the redis connection
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

func newToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return time.Now().Format(time.RFC3339Nano)
	}
	return hex.EncodeToString(buf)
}
