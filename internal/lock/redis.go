package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker serializes bookings per calendar day. The holder of a date's lock
// is the only request allowed through the availability re-check and insert
// for that day; everyone else backs off and retries.
type Locker interface {
	LockDate(ctx context.Context, date string, ttl time.Duration) (bool, error)
	UnlockDate(ctx context.Context, date string) error
}

const bookingKeyPrefix = "lock:booking:"

// RedisLock implements Locker with SetNX. The TTL caps how long a crashed
// holder can keep a date unbookable.
type RedisLock struct {
	client *redis.Client
}

func NewRedisLock(redisAddr string) (*RedisLock, error) {
	const op = "lock.NewRedisLock"

	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisLock{client: client}, nil
}

func (r *RedisLock) LockDate(ctx context.Context, date string, ttl time.Duration) (bool, error) {
	const op = "lock.RedisLock.LockDate"

	ok, err := r.client.SetNX(ctx, bookingKeyPrefix+date, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

func (r *RedisLock) UnlockDate(ctx context.Context, date string) error {
	const op = "lock.RedisLock.UnlockDate"

	if err := r.client.Del(ctx, bookingKeyPrefix+date).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisLock) Close() error {
	return r.client.Close()
}
