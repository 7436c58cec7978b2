// README: Redis-backed lock for deployments running more than one API instance.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "reclaim:lock:"

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker holds locks as SET NX PX keys. The TTL bounds how long a
// crashed holder can block others.
type RedisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	retry  time.Duration
	log    *zap.Logger
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration, log *zap.Logger) *RedisLocker {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisLocker{client: client, ttl: ttl, retry: 25 * time.Millisecond, log: log}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, timeout time.Duration) (Release, error) {
	redisKey := redisKeyPrefix + key
	token := uuid.NewString()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, waitErr(ctx, key)
			}
			return nil, fmt.Errorf("acquiring lock %s: %w", key, err)
		}
		if ok {
			return l.releaser(redisKey, token), nil
		}

		wait := time.NewTimer(l.retry)
		select {
		case <-wait.C:
		case <-expired:
			wait.Stop()
			return nil, fmt.Errorf("%w: %s", ErrTimeout, key)
		case <-ctx.Done():
			wait.Stop()
			return nil, waitErr(ctx, key)
		}
	}
}

// releaser returns a Release that is safe to call more than once, from any goroutine.
func (l *RedisLocker) releaser(redisKey, token string) Release {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
				l.log.Warn("release lock", zap.String("key", redisKey), zap.Error(err))
			}
		})
	}
}
