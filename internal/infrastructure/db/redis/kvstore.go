package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/omnibus/ticket-checkout/internal/core/ports"
)

// KVStore implements ports.KeyValueStore on Redis. Entries never expire; the
// session monitor decides when a credential is stale.
// Key format: <prefix>:kv:<key>
type KVStore struct {
	client redis.Cmdable
	prefix string
}

// NewKVStore creates a KVStore. An empty prefix defaults to "checkout".
func NewKVStore(client redis.Cmdable, prefix string) *KVStore {
	if prefix == "" {
		prefix = "checkout"
	}
	return &KVStore{client: client, prefix: prefix}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ports.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("kv get %s: %w", key, err)
	}
	return v, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("kv delete: %w", err)
	}
	return nil
}

func (s *KVStore) key(k string) string {
	return fmt.Sprintf("%s:kv:%s", s.prefix, k)
}
