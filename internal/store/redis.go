package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

const (
	lockTTL       = 10 * time.Second
	lockRetryWait = 50 * time.Millisecond
)

// releaseScript deletes the lock key only if it still holds our lease value,
// so an expired lease can never release a lock taken over by another holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGroupLock serializes per-group writes across server instances using
// a SET NX lease. It backs the scheduler's check-then-create sequence.
type RedisGroupLock struct {
	rdb *redis.Client
}

func NewRedisGroupLock(rdb *redis.Client) *RedisGroupLock {
	return &RedisGroupLock{rdb: rdb}
}

// Acquire blocks until the lease for groupID is held or ctx is done, and
// returns a release function.
func (l *RedisGroupLock) Acquire(ctx context.Context, groupID string) (func(), error) {
	key := "lock:group:" + groupID
	lease := uuid.NewString()

	for {
		ok, err := l.rdb.SetNX(ctx, key, lease, lockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryWait):
		}
	}

	release := func() {
		// best effort; an expired lease has already been released by TTL
		_ = releaseScript.Run(context.Background(), l.rdb, []string{key}, lease).Err()
	}
	return release, nil
}
