package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gleamhq/estimator/internal/models"
)

// RedisStore keeps hand-off records in redis with per-record TTLs.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a store on a fresh redis client.
func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// NewRedisStoreWithClient wraps an existing client, used in tests.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Close releases the underlying client.
func (s *RedisStore) Close() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

func handoffKey(sessionID string) string {
	return "handoff:" + sessionID
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, record models.HandoffRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal handoff record: %w", err)
	}
	if err := s.client.Set(ctx, handoffKey(record.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("save handoff record: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*models.HandoffRecord, error) {
	data, err := s.client.Get(ctx, handoffKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load handoff record: %w", err)
	}

	var record models.HandoffRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal handoff record: %w", err)
	}
	return &record, nil
}

// Ping implements Store.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
