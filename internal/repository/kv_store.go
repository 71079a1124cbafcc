package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrKeyNotFound signals a missing key in the store.
var ErrKeyNotFound = errors.New("kv: key not found")

// Store is the persistence contract: a key-value store whose only query
// primitive is a prefix scan.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
	ScanByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error)
}

// OperationObserver receives the timing of each store operation.
type OperationObserver interface {
	ObserveStoreOperation(op string, duration time.Duration)
}

// RedisStore implements Store on top of a Redis client.
type RedisStore struct {
	client   *redis.Client
	logger   *zap.Logger
	observer OperationObserver
}

// NewRedisStore constructs a RedisStore. A nil observer disables timing.
func NewRedisStore(client *redis.Client, observer OperationObserver, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, logger: logger, observer: observer}
}

// observe times one operation; call it with the start time via defer.
func (s *RedisStore) observe(op string, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveStoreOperation(op, time.Since(start))
	}
}

// Get retrieves and unmarshals the value into the provided destination.
func (s *RedisStore) Get(ctx context.Context, key string, dest interface{}) error {
	defer s.observe("get", time.Now())

	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrKeyNotFound
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal value for %s: %w", key, err)
	}

	return nil
}

// Set marshals the provided value and stores it without expiry.
func (s *RedisStore) Set(ctx context.Context, key string, value interface{}) error {
	defer s.observe("set", time.Now())

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value for %s: %w", key, err)
	}

	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	defer s.observe("delete", time.Now())

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// ScanByPrefix returns the raw values stored under keys matching the prefix.
func (s *RedisStore) ScanByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error) {
	defer s.observe("scan_prefix", time.Now())

	values := make([]json.RawMessage, 0)

	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				// Key expired between scan and get.
				continue
			}
			return nil, fmt.Errorf("redis get %s: %w", key, err)
		}
		values = append(values, json.RawMessage(raw))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan prefix %s: %w", prefix, err)
	}

	return values, nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
