package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheDisabled = errors.New("cache disabled")

func blacklistKey(jti string) string {
	return "blacklist:" + jti
}

// Revoke marks a token id as unusable until it would have expired anyway.
func (s *Store) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if !s.Enabled() {
		return ErrCacheDisabled
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, blacklistKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether jti was revoked. Without Redis nothing is.
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	n, err := s.client.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
