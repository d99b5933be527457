package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	KeyPrefixStripeEvent = "dedup:stripe_event:"
	DefaultTTL           = 72 * time.Hour
)

var ErrEmptyKey = errors.New("empty dedup key")

// Store 基于 SETNX 的一次性标记。rdb 为 nil 时每次 Claim 都成功
type Store struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewStore(rdb *redis.Client, prefix string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Claim 首次出现的 key 返回 true，TTL 内重复出现返回 false
func (s *Store) Claim(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	if s == nil || s.rdb == nil {
		return true, nil
	}

	ok, err := s.rdb.SetNX(ctx, s.prefix+key, time.Now().UTC().Unix(), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim %s: %w", key, err)
	}
	return ok, nil
}

// Release 处理失败时释放标记，允许上游重试
func (s *Store) Release(ctx context.Context, key string) error {
	if s == nil || s.rdb == nil || key == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release %s: %w", key, err)
	}
	return nil
}
