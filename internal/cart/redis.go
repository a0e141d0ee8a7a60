package cart

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	pkgredis "github.com/epartnic/epartnic-backend/pkg/redis"
)

// Carts are kept for 90 days of inactivity, matching how long the legacy
// storefront kept them client-side.
const cartTTL = 90 * 24 * time.Hour

type cartKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(ownerID string) string
}

type redisPersistence struct {
	kv cartKV
}

// NewRedisPersistence adapts the shared redis client to the cart port.
func NewRedisPersistence(client *pkgredis.Client) Persistence {
	return &redisPersistence{kv: client}
}

func (r *redisPersistence) Load(ctx context.Context, ownerID string) (string, bool, error) {
	payload, err := r.kv.Get(ctx, r.kv.CartKey(ownerID))
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return payload, true, nil
}

func (r *redisPersistence) Save(ctx context.Context, ownerID string, payload string) error {
	return r.kv.Set(ctx, r.kv.CartKey(ownerID), payload, cartTTL)
}

func (r *redisPersistence) Delete(ctx context.Context, ownerID string) error {
	return r.kv.Del(ctx, r.kv.CartKey(ownerID))
}
