package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/meetsik24/Split-Bill-Platform-Backend/model"
)

const redisKeyPrefix = "billsplit:session:"

var ctx = context.Background()

// RedisStore keeps sessions in a shared cache with a per-key TTL, for
// deployments running more than one service instance. Same contract as
// MemoryStore; expiry is handled by redis itself.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) GetOrCreate(sessionId string, phoneNumber string) (*model.Session, error) {
	sess, err := s.Get(sessionId)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return newSession(sessionId, phoneNumber), nil
	}
	return sess, nil
}

func (s *RedisStore) Get(sessionId string) (*model.Session, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+sessionId).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	sess := model.Session{}
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	sess.Id = sessionId
	return &sess, nil
}

func (s *RedisStore) Put(sessionId string, sess *model.Session) error {
	stored := *sess
	stored.Id = sessionId
	stored.LastTouched = time.Now()
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+sessionId, data, s.ttl).Err()
}

func (s *RedisStore) Remove(sessionId string) error {
	return s.client.Del(ctx, redisKeyPrefix+sessionId).Err()
}

func (s *RedisStore) Count() (int, error) {
	count := 0
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	return count, iter.Err()
}

func (s *RedisStore) Clear() error {
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
