package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const leaderboardKey = "stats:postal_codes"

var ErrCacheMiss = errors.New("cache miss")

// StatsCacheRepo caches the serialized postal-code leaderboard. A miss
// or a redis failure always falls through to postgres in the caller.
type StatsCacheRepo struct {
	client *goredis.Client
}

func NewStatsCacheRepo(client *goredis.Client) *StatsCacheRepo {
	return &StatsCacheRepo{client: client}
}

func (r *StatsCacheRepo) GetLeaderboard(ctx context.Context) ([]byte, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}

	payload, err := r.client.Get(ctx, leaderboardKey).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("get leaderboard cache: %w", err)
	}

	return payload, nil
}

func (r *StatsCacheRepo) SetLeaderboard(ctx context.Context, payload []byte, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if len(payload) == 0 || ttl <= 0 {
		return fmt.Errorf("invalid leaderboard cache payload")
	}

	if err := r.client.Set(ctx, leaderboardKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("set leaderboard cache: %w", err)
	}

	return nil
}
