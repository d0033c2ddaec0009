package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"mail-dispatch-service/internal/config"
)

// txRetries bounds the optimistic-concurrency retry loop.
const txRetries = 5

// NewRedisClient builds the redis client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisStore implements Store on a redis keyspace, one JSON document per key.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, path string, dest any) error {
	b, err := s.rdb.Get(ctx, path).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("docstore: get %s: %w", path, err)
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("docstore: decode %s: %w", path, err)
	}
	return nil
}

func (s *RedisStore) Set(ctx context.Context, path string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("docstore: encode %s: %w", path, err)
	}
	if err := s.rdb.Set(ctx, path, b, 0).Err(); err != nil {
		return fmt.Errorf("docstore: set %s: %w", path, err)
	}
	return nil
}

// Update merges through the optimistic transaction so two updaters
// touching different fields of the same document never erase each
// other's writes.
func (s *RedisStore) Update(ctx context.Context, path string, fields map[string]any) error {
	return s.RunTransaction(ctx, path, func(current []byte) (any, error) {
		if current == nil {
			return nil, ErrNotFound
		}
		var doc map[string]any
		if err := json.Unmarshal(current, &doc); err != nil {
			return nil, fmt.Errorf("docstore: decode %s: %w", path, err)
		}
		applyFields(doc, fields)
		return doc, nil
	})
}

func (s *RedisStore) RunTransaction(ctx context.Context, path string, update func(current []byte) (any, error)) error {
	for i := 0; i < txRetries; i++ {
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			var current []byte
			b, err := tx.Get(ctx, path).Bytes()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if err == nil {
				current = b
			}

			next, err := update(current)
			if err != nil {
				return err
			}

			encoded, err := json.Marshal(next)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, path, encoded, 0)
				return nil
			})
			return err
		}, path)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("docstore: transaction on %s: %w", path, err)
		}
		return nil
	}
	return fmt.Errorf("docstore: transaction on %s: exhausted %d retries", path, txRetries)
}
