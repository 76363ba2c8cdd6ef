package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage persists entries as plain Redis keys "<prefix>:<namespace>:<key>".
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage constructs a Redis backed storage.
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

func (r *RedisStorage) key(namespace, key string) string {
	if r.prefix == "" {
		return namespace + ":" + key
	}
	return r.prefix + ":" + namespace + ":" + key
}

// Read fetches keys with a single MGET.
func (r *RedisStorage) Read(ctx context.Context, namespace string, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = r.key(namespace, key)
	}

	values, err := r.client.MGet(ctx, full...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget %s: %w", namespace, err)
	}
	for i, value := range values {
		if s, ok := value.(string); ok {
			out[keys[i]] = s
		}
	}
	return out, nil
}

// Write sets every entry inside one MULTI/EXEC.
func (r *RedisStorage) Write(ctx context.Context, namespace string, entries map[string]string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range entries {
			pipe.Set(ctx, r.key(namespace, key), value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis write %s: %w", namespace, err)
	}
	return nil
}

// Remove deletes keys with a single DEL.
func (r *RedisStorage) Remove(ctx context.Context, namespace string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = r.key(namespace, key)
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", namespace, err)
	}
	return nil
}
