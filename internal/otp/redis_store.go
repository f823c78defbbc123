package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "otp:v1:"

// RedisStore keeps challenges in Redis. Challenges with an expiry get a matching
// key TTL so Redis drops them on its own.
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisStore builds a Redis-backed challenge store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Put(ctx context.Context, challenge Challenge) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("encode otp challenge: %w", err)
	}
	var ttl time.Duration
	if !challenge.ExpiresAt.IsZero() {
		ttl = challenge.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.Delete(ctx, challenge.Phone)
		}
	}
	return s.client.Set(ctx, redisKeyPrefix+challenge.Phone, payload, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, phone string) (Challenge, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+phone).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Challenge{}, ErrNotFound
		}
		return Challenge{}, err
	}
	var ch Challenge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return Challenge{}, fmt.Errorf("decode otp challenge: %w", err)
	}
	return ch, nil
}

func (s *RedisStore) Delete(ctx context.Context, phone string) error {
	return s.client.Del(ctx, redisKeyPrefix+phone).Err()
}
