package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	windowPrefix = "window:"
	lockPrefix   = "lock:"
)

// WindowStore keeps sliding-window timestamps in one sorted set per key,
// scored by microseconds since the epoch. Locks are plain string keys with
// a TTL holding the lock time.
// Key format: window:<key>, lock:<key>
type WindowStore struct {
	client *redis.Client
}

// NewWindowStore creates a WindowStore wrapping the given Redis client.
func NewWindowStore(client *redis.Client) *WindowStore {
	return &WindowStore{client: client}
}

// Get returns the timestamps for key, oldest first.
func (s *WindowStore) Get(ctx context.Context, key string) ([]time.Time, error) {
	zs, err := s.client.ZRangeWithScores(ctx, windowPrefix+key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("window get: %w", err)
	}
	out := make([]time.Time, 0, len(zs))
	for _, z := range zs {
		out = append(out, time.UnixMicro(int64(z.Score)).UTC())
	}
	return out, nil
}

// Append adds t to key and refreshes the key's expiry to ttl. Both commands
// run in one transaction so a key is never left without a TTL.
func (s *WindowStore) Append(ctx context.Context, key string, t time.Time, ttl time.Duration) error {
	k := windowPrefix + key
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, k, redis.Z{Score: float64(t.UnixMicro()), Member: uuid.NewString()})
		if ttl > 0 {
			p.Expire(ctx, k, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("window append: %w", err)
	}
	return nil
}

// Prune removes every timestamp strictly before cutoff.
func (s *WindowStore) Prune(ctx context.Context, key string, cutoff time.Time) error {
	upper := "(" + strconv.FormatInt(cutoff.UnixMicro(), 10)
	if err := s.client.ZRemRangeByScore(ctx, windowPrefix+key, "-inf", upper).Err(); err != nil {
		return fmt.Errorf("window prune: %w", err)
	}
	return nil
}

func (s *WindowStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, windowPrefix+key).Err(); err != nil {
		return fmt.Errorf("window delete: %w", err)
	}
	return nil
}

func (s *WindowStore) SetLock(ctx context.Context, key string, lockedAt time.Time, ttl time.Duration) error {
	v := strconv.FormatInt(lockedAt.UnixMicro(), 10)
	if err := s.client.Set(ctx, lockPrefix+key, v, ttl).Err(); err != nil {
		return fmt.Errorf("lock set: %w", err)
	}
	return nil
}

func (s *WindowStore) GetLock(ctx context.Context, key string) (time.Time, bool, error) {
	v, err := s.client.Get(ctx, lockPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("lock get: %w", err)
	}
	us, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("lock get: corrupt value %q", v)
	}
	return time.UnixMicro(us).UTC(), true, nil
}

func (s *WindowStore) ClearLock(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, lockPrefix+key).Err(); err != nil {
		return fmt.Errorf("lock clear: %w", err)
	}
	return nil
}
