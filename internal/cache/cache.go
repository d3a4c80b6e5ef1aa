// Package cache keeps read-mostly data, currently the public menu, in Redis
// so the register and the menu board do not hit PostgreSQL on every load.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store holds serialized payloads under short keys. Load reports a miss
// with ok=false and a nil error.
type Store interface {
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Save(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Drop(ctx context.Context, key string) error
}

// RedisStore namespaces every key as "<namespace>:<key>" so several
// deployments can share one Redis.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

func NewRedisStore(addr, namespace string) *RedisStore {
	return NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: addr}), namespace)
}

func NewRedisStoreFromClient(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(key), value, ttl).Err()
}

func (s *RedisStore) Drop(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

// Ping checks the connection; main only warns on failure since every cache
// miss falls back to the database.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(k string) string {
	return s.namespace + ":" + k
}

// Nop is used when no Redis address is configured; every Load is a miss.
type Nop struct{}

func (Nop) Load(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Nop) Save(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Drop(context.Context, string) error                        { return nil }
