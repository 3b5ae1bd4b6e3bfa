package kvcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key layout for the flat mirrored state. All values are JSON strings or
// plain members; there is no schema versioning.
const (
	KeyPostsSnapshot    = "posts:snapshot"
	KeyLastNotification = "notify:last_sent"
	KeyNotifiedUpdates  = "notify:updates_sent"
)

func KeyLastSeenPost(userID string) string {
	return fmt.Sprintf("posts:last_seen:%s", userID)
}

func KeyBookmarks(userID string) string {
	return fmt.Sprintf("posts:bookmarks:%s", userID)
}

// Cache is the read-mostly key-value mirror used for offline display state
// and notification bookkeeping.
type Cache struct {
	client *redis.Client
}

func New(redisAddr string) (*Cache, error) {
	const op = "kvcache.New"

	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Cache{client: client}, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	const op = "kvcache.Cache.SetJSON"

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.client.Set(ctx, key, b, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// GetJSON reports found=false when the key does not exist.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	const op = "kvcache.Cache.GetJSON"

	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := json.Unmarshal(b, dest); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}

func (c *Cache) SetString(ctx context.Context, key, value string) error {
	const op = "kvcache.Cache.SetString"

	if err := c.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Cache) GetString(ctx context.Context, key string) (string, bool, error) {
	const op = "kvcache.Cache.GetString"

	v, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	return v, true, nil
}

func (c *Cache) AddToSet(ctx context.Context, key, member string) error {
	const op = "kvcache.Cache.AddToSet"

	if err := c.client.SAdd(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Cache) RemoveFromSet(ctx context.Context, key, member string) error {
	const op = "kvcache.Cache.RemoveFromSet"

	if err := c.client.SRem(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Cache) InSet(ctx context.Context, key, member string) (bool, error) {
	const op = "kvcache.Cache.InSet"

	ok, err := c.client.SIsMember(ctx, key, member).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

func (c *Cache) SetMembers(ctx context.Context, key string) ([]string, error) {
	const op = "kvcache.Cache.SetMembers"

	members, err := c.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return members, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
