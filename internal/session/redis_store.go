package session

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const redisKeyPrefix = "session:v1:"

// RedisStore keeps sessions in Redis without expiry. Keys are blake2b digests of
// the token so a dump of the keyspace does not hand out live bearer tokens.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, session Session) error {
	if session.Token == "" {
		return errors.New("session token is required")
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ok, err := s.client.SetNX(ctx, tokenKey(session.Token), payload, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("session token already issued")
	}
	return nil
}

func (s *RedisStore) Lookup(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNotFound
	}
	raw, err := s.client.Get(ctx, tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	sess.Token = token
	return sess, nil
}

func tokenKey(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return redisKeyPrefix + hex.EncodeToString(sum[:])
}
