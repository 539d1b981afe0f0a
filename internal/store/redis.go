package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/salesops/crm-import/internal/core"
)

const resultKeyPrefix = "import:result:"

// Redis retains import results in Redis with a TTL.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed store and verifies connectivity.
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{client: client}, nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Save stores a result as JSON under import:result:<id> with the given TTL.
func (r *Redis) Save(ctx context.Context, id string, result core.ImportResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := r.client.Set(ctx, resultKeyPrefix+id, data, ttl).Err(); err != nil {
		return fmt.Errorf("set result: %w", err)
	}
	return nil
}

// Get loads a stored result, reporting false when the key is gone.
func (r *Redis) Get(ctx context.Context, id string) (core.ImportResult, bool, error) {
	data, err := r.client.Get(ctx, resultKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return core.ImportResult{}, false, nil
	}
	if err != nil {
		return core.ImportResult{}, false, fmt.Errorf("get result: %w", err)
	}

	var result core.ImportResult
	if err := json.Unmarshal(data, &result); err != nil {
		return core.ImportResult{}, false, fmt.Errorf("unmarshal result: %w", err)
	}
	return result, true, nil
}
