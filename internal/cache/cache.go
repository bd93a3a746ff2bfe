package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultTTL = 10 * time.Minute

// NewRedisClient builds a pooled client. An empty addr disables caching and
// returns nil.
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 2 * time.Second,
	})
}

// Store is a best-effort byte cache. A Store over a nil client is a no-op, so
// every method is safe to call when Redis is not configured.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func New(client *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl, logger: logger}
}

func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	if !s.Enabled() {
		return nil, false
	}
	b, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warnw("cache get failed", "key", key, "error", err.Error())
		}
		return nil, false
	}
	return b, len(b) > 0
}

func (s *Store) Set(ctx context.Context, key string, value []byte) {
	if !s.Enabled() {
		return
	}
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		s.logger.Warnw("cache set failed", "key", key, "error", err.Error())
	}
}

// Invalidate drops every key cached under namespace.
func (s *Store) Invalidate(ctx context.Context, namespace string) error {
	if !s.Enabled() {
		return nil
	}

	pattern := fmt.Sprintf("cache:%s:*", namespace)
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", pattern, err)
	}

	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("delete cached keys: %w", err)
		}
		s.logger.Infow("cache invalidated", "namespace", namespace, "count", len(keys))
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Ping(ctx).Err()
}

// Key derives a namespaced key from the request shape.
func Key(namespace, method, path, rawQuery string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s", method, path, rawQuery)))
	return fmt.Sprintf("cache:%s:%s", namespace, hex.EncodeToString(hash[:]))
}
