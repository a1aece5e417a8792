package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jserwatka/network/internal/domain"
)

const (
	countsKeyPrefix  = "network:counts:"
	hotKeyScoresKey  = "network:hotkey:scores"
	fieldFollowers   = "followers"
	fieldFollowing   = "following"
	defaultCountsTTL = 10 * time.Minute
)

// CounterStore caches follower/following counts and tracks hot profiles.
type CounterStore interface {
	// GetCounts returns (counts, true, nil) on hit and (nil, false, nil) on miss.
	GetCounts(ctx context.Context, userID uint) (*domain.FollowCounts, bool, error)
	SetCounts(ctx context.Context, userID uint, counts domain.FollowCounts) error
	Invalidate(ctx context.Context, userIDs ...uint) error
	RecordAccess(ctx context.Context, userID uint) error
	GetTopHotKeys(ctx context.Context, n int64) ([]uint, error)
	ResetHotKeyScores(ctx context.Context) error
	Close() error
}

// RedisCounterStore implements CounterStore backed by Redis hashes.
type RedisCounterStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCounterStore connects to Redis and verifies the connection.
func NewRedisCounterStore(address, password string, db int, ttl time.Duration) (*RedisCounterStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisCounterStoreFromClient(client, ttl), nil
}

// NewRedisCounterStoreFromClient wraps an existing client.
func NewRedisCounterStoreFromClient(client *redis.Client, ttl time.Duration) *RedisCounterStore {
	if ttl <= 0 {
		ttl = defaultCountsTTL
	}
	return &RedisCounterStore{client: client, ttl: ttl}
}

func countsKey(userID uint) string {
	return countsKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// GetCounts returns the cached counts for a user.
func (s *RedisCounterStore) GetCounts(ctx context.Context, userID uint) (*domain.FollowCounts, bool, error) {
	vals, err := s.client.HMGet(ctx, countsKey(userID), fieldFollowers, fieldFollowing).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get counts: %w", err)
	}

	followers, ok1 := parseCount(vals[0])
	following, ok2 := parseCount(vals[1])
	if !ok1 || !ok2 {
		return nil, false, nil
	}
	return &domain.FollowCounts{Followers: followers, Following: following}, true, nil
}

func parseCount(v interface{}) (int64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetCounts stores both counts with the configured TTL.
func (s *RedisCounterStore) SetCounts(ctx context.Context, userID uint, counts domain.FollowCounts) error {
	key := countsKey(userID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldFollowers, counts.Followers, fieldFollowing, counts.Following)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set counts: %w", err)
	}
	return nil
}

// Invalidate drops cached counts so the next read goes to the database.
func (s *RedisCounterStore) Invalidate(ctx context.Context, userIDs ...uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, countsKey(id))
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis invalidate counts: %w", err)
	}
	return nil
}

// RecordAccess increments the access score for a user in the hot key sorted set.
func (s *RedisCounterStore) RecordAccess(ctx context.Context, userID uint) error {
	err := s.client.ZIncrBy(ctx, hotKeyScoresKey, 1, strconv.FormatUint(uint64(userID), 10)).Err()
	if err != nil {
		return fmt.Errorf("redis record access: %w", err)
	}
	return nil
}

// GetTopHotKeys returns the top-n most accessed user IDs.
func (s *RedisCounterStore) GetTopHotKeys(ctx context.Context, n int64) ([]uint, error) {
	members, err := s.client.ZRevRange(ctx, hotKeyScoresKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get top hot keys: %w", err)
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// ResetHotKeyScores deletes the hot key scores sorted set.
func (s *RedisCounterStore) ResetHotKeyScores(ctx context.Context) error {
	if err := s.client.Del(ctx, hotKeyScoresKey).Err(); err != nil {
		return fmt.Errorf("redis reset hot key scores: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisCounterStore) Close() error {
	return s.client.Close()
}

var _ CounterStore = (*RedisCounterStore)(nil)
