package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "propdesk:session:"

// RedisStore keeps each session as a hash with the three entries as fields.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(sid string) string {
	return redisKeyPrefix + sid
}

func (s *RedisStore) Load(ctx context.Context, sid string) (Values, error) {
	m, err := s.client.HGetAll(ctx, redisKey(sid)).Result()
	if err != nil {
		return Values{}, fmt.Errorf("load session: %w", err)
	}
	return valuesFrom(m), nil
}

func (s *RedisStore) Save(ctx context.Context, sid string, v Values) error {
	key := redisKey(sid)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		fields := make(map[string]interface{}, 3)
		for k, val := range v.entries() {
			fields[k] = val
		}
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, redisKey(sid)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
