package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"snakes-arrows/internal/room"
)

// RedisStore persists room aggregates as JSON blobs so rooms survive process
// restarts. Keys: room:{id} for the aggregate, roomcode:{code} for the code
// index. A zero TTL keeps rooms until explicitly deleted.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// NewRedisStoreFromURL dials redis from a redis:// URL.
func NewRedisStoreFromURL(url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisStore(redis.NewClient(opts), ttl), nil
}

func keyRoom(id string) string   { return "room:" + id }
func keyCode(code string) string { return "roomcode:" + code }

func (s *RedisStore) Load(ctx context.Context, id string) (*room.GameRoom, bool, error) {
	raw, err := s.rdb.Get(ctx, keyRoom(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load room %s: %w", id, err)
	}
	var r room.GameRoom
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, false, fmt.Errorf("decode room %s: %w", id, err)
	}
	return &r, true, nil
}

func (s *RedisStore) IDByCode(ctx context.Context, code string) (string, bool, error) {
	id, err := s.rdb.Get(ctx, keyCode(code)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup code %s: %w", code, err)
	}
	return id, true, nil
}

func (s *RedisStore) Save(ctx context.Context, r *room.GameRoom) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", r.ID, err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, keyRoom(r.ID), raw, s.ttl)
	pipe.Set(ctx, keyCode(r.Code), r.ID, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save room %s: %w", r.ID, err)
	}
	return nil
}
