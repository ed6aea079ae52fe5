package attendance

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DayCache is an optional redis marker for "user already timed in on
// day". Entries expire at the next local midnight so a stale marker can
// never outlive the day it describes. The ledger stays authoritative:
// every method degrades to a no-op on a nil cache or a redis error.
type DayCache struct {
	client *redis.Client
	prefix string
}

// NewDayCache wraps a redis client. A nil client yields a disabled cache.
func NewDayCache(client *redis.Client) *DayCache {
	return &DayCache{client: client, prefix: "rollcall:timein:"}
}

// Marked reports whether the marker for (userID, day) exists.
func (c *DayCache) Marked(ctx context.Context, userID, day string) bool {
	if c == nil || c.client == nil {
		return false
	}
	n, err := c.client.Exists(ctx, c.key(userID, day)).Result()
	return err == nil && n > 0
}

// Mark sets the marker with the remaining lifetime of the day.
func (c *DayCache) Mark(ctx context.Context, userID, day string, ttl time.Duration) {
	if c == nil || c.client == nil || ttl <= 0 {
		return
	}
	c.client.Set(ctx, c.key(userID, day), "1", ttl)
}

func (c *DayCache) key(userID, day string) string {
	return c.prefix + userID + ":" + day
}
