package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// UnreadCountPrefix is the key prefix for per-user unread badge counters
	UnreadCountPrefix = "notifications:unread:"

	// UnreadCountTTL bounds staleness if an invalidation is ever missed
	UnreadCountTTL = time.Hour
)

// UnreadCounts caches the unread-notification badge count per user. The
// database stays the source of truth; entries are invalidated on every write
// that could change the count.
type UnreadCounts interface {
	// Get returns the cached count. found=false on a miss.
	Get(ctx context.Context, userID string) (count int, found bool, err error)

	// Set stores the count with a TTL.
	Set(ctx context.Context, userID string, count int) error

	// Invalidate drops the cached count for a user.
	Invalidate(ctx context.Context, userID string) error
}

// RedisUnreadCounts implements UnreadCounts on Redis strings.
type RedisUnreadCounts struct {
	client *redis.Client
}

// NewUnreadCounts creates an UnreadCounts cache backed by Redis.
func NewUnreadCounts(client *redis.Client) UnreadCounts {
	return &RedisUnreadCounts{client: client}
}

func unreadKey(userID string) string {
	return UnreadCountPrefix + userID
}

func (c *RedisUnreadCounts) Get(ctx context.Context, userID string) (int, bool, error) {
	val, err := c.client.Get(ctx, unreadKey(userID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get unread count: %w", err)
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("parse unread count: %w", err)
	}
	return count, true, nil
}

func (c *RedisUnreadCounts) Set(ctx context.Context, userID string, count int) error {
	if err := c.client.Set(ctx, unreadKey(userID), count, UnreadCountTTL).Err(); err != nil {
		return fmt.Errorf("set unread count: %w", err)
	}
	return nil
}

func (c *RedisUnreadCounts) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, unreadKey(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate unread count: %w", err)
	}
	return nil
}
