package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "bundle-sync:webhook:"

// RedisStore records delivery ids in Redis with SET NX and a TTL, so the set
// is shared across replicas and survives restarts
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed delivery-id set
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Seen implements Store. SET NX is atomic, so concurrent deliveries of the
// same id resolve to exactly one first-seen.
func (r *RedisStore) Seen(ctx context.Context, deliveryID string) (bool, error) {
	set, err := r.client.SetNX(ctx, keyPrefix+deliveryID, 1, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup: recording delivery %s: %w", deliveryID, err)
	}
	return !set, nil
}
