package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"gdprkv/pkg/platform/sentinel"
)

const (
	redisKeyPrefix     = "gdprkv:audit:lock:"
	defaultLockTTL     = 5 * time.Second
	defaultRetryDelay  = 10 * time.Millisecond
	defaultMaxWaitTime = 3 * time.Second
)

// releaseScript deletes the key only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a per-subject lock shared by every replica using the same Redis.
// The TTL bounds how long a crashed holder can block a subject.
type Redis struct {
	client     redis.UniversalClient
	ttl        time.Duration
	retryDelay time.Duration
	maxWait    time.Duration
	logger     *slog.Logger
}

type RedisOption func(*Redis)

func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithMaxWait(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.maxWait = d
		}
	}
}

func WithLogger(logger *slog.Logger) RedisOption {
	return func(r *Redis) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client:     client,
		ttl:        defaultLockTTL,
		retryDelay: defaultRetryDelay,
		maxWait:    defaultMaxWaitTime,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lock acquires the subject's lock with SET NX PX, polling until maxWait.
// It returns sentinel.ErrUnavailable if the lock stays held.
func (r *Redis) Lock(ctx context.Context, subjectID string) (func(), error) {
	key := redisKeyPrefix + subjectID
	token := uuid.NewString()
	deadline := time.Now().Add(r.maxWait)

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire audit lock for %s: %w", subjectID, err)
		}
		if ok {
			return func() {
				// release on a fresh context so a cancelled request still unlocks
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := releaseScript.Run(releaseCtx, r.client, []string{key}, token).Err(); err != nil {
					r.logger.Error("failed to release audit lock, key held until ttl",
						"subject_id", subjectID,
						"key", key,
						"ttl", r.ttl,
						"error", err,
					)
				}
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("acquire audit lock for %s: %w", subjectID, sentinel.ErrUnavailable)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire audit lock for %s: %w", subjectID, ctx.Err())
		case <-time.After(r.retryDelay):
		}
	}
}
