package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	dom "github.com/Sebastian-411/microservice-app-example/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "todos:user:"

// RedisStore keeps each user's todo list as a JSON blob in Redis.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore returns a Redis-backed store. ttl <= 0 means no expiry.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, username string) (dom.TodoList, bool, error) {
	b, err := s.rdb.Get(ctx, keyPrefix+username).Bytes()
	if err == redis.Nil {
		return dom.TodoList{}, false, nil
	}
	if err != nil {
		return dom.TodoList{}, false, fmt.Errorf("redis get: %w", err)
	}
	var list dom.TodoList
	if err := json.Unmarshal(b, &list); err != nil {
		return dom.TodoList{}, false, fmt.Errorf("decode todo list: %w", err)
	}
	if list.Items == nil {
		list.Items = make(map[string]dom.TodoItem)
	}
	return list, true, nil
}

func (s *RedisStore) Put(ctx context.Context, username string, list dom.TodoList) error {
	b, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode todo list: %w", err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+username, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
