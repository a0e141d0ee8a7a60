package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgredis "github.com/epartnic/epartnic-backend/pkg/redis"
)

type sessionKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CheckoutSessionKey(ownerID string) string
}

type redisSessionStore struct {
	kv  sessionKV
	ttl time.Duration
}

// NewRedisSessionStore adapts the shared redis client to the session port.
// Every save refreshes the TTL, so an active checkout never expires mid-flow.
func NewRedisSessionStore(client *pkgredis.Client, ttl time.Duration) SessionStore {
	return &redisSessionStore{kv: client, ttl: ttl}
}

func (r *redisSessionStore) Load(ctx context.Context, ownerID uuid.UUID) (*Session, bool, error) {
	payload, err := r.kv.Get(ctx, r.kv.CheckoutSessionKey(ownerID.String()))
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var session Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, false, err
	}
	return &session, true, nil
}

func (r *redisSessionStore) Save(ctx context.Context, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, r.kv.CheckoutSessionKey(session.OwnerID.String()), string(payload), r.ttl)
}

func (r *redisSessionStore) Delete(ctx context.Context, ownerID uuid.UUID) error {
	return r.kv.Del(ctx, r.kv.CheckoutSessionKey(ownerID.String()))
}
