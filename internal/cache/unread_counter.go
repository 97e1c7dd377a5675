package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const unreadKeyPrefix = "helpdesk:notifications:unread:"

// UnreadCounter caches per-user unread notification counts.
type UnreadCounter struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUnreadCounter creates a counter cache. A zero ttl keeps entries until invalidated.
func NewUnreadCounter(client *redis.Client, ttl time.Duration) *UnreadCounter {
	return &UnreadCounter{client: client, ttl: ttl}
}

func unreadKey(userID string) string {
	return unreadKeyPrefix + userID
}

// Get returns the cached count. The bool is false on a cache miss.
func (c *UnreadCounter) Get(ctx context.Context, userID string) (int64, bool, error) {
	val, err := c.client.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get unread count: %w", err)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse unread count: %w", err)
	}
	return count, true, nil
}

// Set stores the count for a user.
func (c *UnreadCounter) Set(ctx context.Context, userID string, count int64) error {
	if err := c.client.Set(ctx, unreadKey(userID), strconv.FormatInt(count, 10), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save unread count: %w", err)
	}
	return nil
}

// Invalidate drops the cached count so the next read recomputes it.
func (c *UnreadCounter) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, unreadKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate unread count: %w", err)
	}
	return nil
}
