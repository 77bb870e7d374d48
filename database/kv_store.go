package database

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KVStore holds string values per session namespace. It is the server-side
// stand-in for the browser's localStorage.
type KVStore interface {
	// Get returns the value and whether it exists.
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	Set(ctx context.Context, namespace, key, value string) error
	// SetMany writes several keys of one namespace atomically.
	SetMany(ctx context.Context, namespace string, values map[string]string) error
	Delete(ctx context.Context, namespace string, keys ...string) error
}

type RedisKVStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisKVStore stores values under "<prefix><namespace>:<key>" and
// refreshes the TTL on every write. A zero ttl means no expiry.
func NewRedisKVStore(client *redis.Client, prefix string, ttl time.Duration) *RedisKVStore {
	return &RedisKVStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisKVStore) key(namespace, key string) string {
	return r.prefix + namespace + ":" + key
}

func (r *RedisKVStore) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.key(namespace, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisKVStore) Set(ctx context.Context, namespace, key, value string) error {
	return r.client.Set(ctx, r.key(namespace, key), value, r.ttl).Err()
}

func (r *RedisKVStore) SetMany(ctx context.Context, namespace string, values map[string]string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, r.key(namespace, k), v, r.ttl)
		}
		return nil
	})
	return err
}

func (r *RedisKVStore) Delete(ctx context.Context, namespace string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(namespace, k)
	}
	return r.client.Del(ctx, full...).Err()
}

// MemoryKVStore keeps values in process memory. It is used for local runs
// (STORE_DRIVER=memory) and tests; values never expire.
type MemoryKVStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{data: make(map[string]map[string]string)}
}

func (m *MemoryKVStore) Get(_ context.Context, namespace, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[namespace][key]
	return val, ok, nil
}

func (m *MemoryKVStore) Set(ctx context.Context, namespace, key, value string) error {
	return m.SetMany(ctx, namespace, map[string]string{key: value})
}

func (m *MemoryKVStore) SetMany(_ context.Context, namespace string, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string]string)
		m.data[namespace] = ns
	}
	for k, v := range values {
		ns[k] = v
	}
	return nil
}

func (m *MemoryKVStore) Delete(_ context.Context, namespace string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[namespace]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(ns, k)
	}
	if len(ns) == 0 {
		delete(m.data, namespace)
	}
	return nil
}
