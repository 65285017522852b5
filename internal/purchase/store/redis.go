package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// purchaseKeyTTL bounds how long a processed idempotency key blocks a
// resubmit.
const purchaseKeyTTL = 24 * time.Hour

// RedisGuard implements the purchase idempotency check with SET NX: the first
// writer of a key proceeds, later writers are duplicates.
type RedisGuard struct {
	client redis.Cmdable
}

func NewRedisGuard(client redis.Cmdable) *RedisGuard {
	return &RedisGuard{client: client}
}

// Begin claims the key. Returns false when another request already claimed it.
func (g *RedisGuard) Begin(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, "purchase:"+key, 1, purchaseKeyTTL).Result()
	if err != nil {
		return false, fmt.Errorf("claim purchase key: %w", err)
	}
	return ok, nil
}

// Release frees the key so a failed purchase can be retried immediately.
func (g *RedisGuard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, "purchase:"+key).Err()
}
