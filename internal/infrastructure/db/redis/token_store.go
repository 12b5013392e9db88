package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenPrefix = "token:"

// TokenStore keeps opaque tokens as Redis keys with an expiry, so that every
// instance behind the load balancer accepts the same tokens.
// Key format: token:<token>
type TokenStore struct {
	client *redis.Client
}

// NewTokenStore creates a TokenStore wrapping the given Redis client.
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// Put records token until ttl elapses.
func (s *TokenStore) Put(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("token put: %w", err)
	}
	return nil
}

// Exists reports whether token was stored and has not expired.
func (s *TokenStore) Exists(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("token exists: %w", err)
	}
	return n > 0, nil
}

func (s *TokenStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("token delete: %w", err)
	}
	return nil
}

func (s *TokenStore) key(token string) string {
	return tokenPrefix + token
}
