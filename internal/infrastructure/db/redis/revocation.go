package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList remembers revoked refresh tokens backed by Redis. Entries
// expire together with the token they block.
// Key format: revoked_refresh:<jti>
type RevocationList struct {
	client *redis.Client
}

// NewRevocationList creates a RevocationList wrapping the given Redis client.
func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{client: client}
}

// Revoke blocks jti for ttl. A non-positive ttl means the token has already
// expired, so nothing is stored.
func (l *RevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := l.client.Set(ctx, l.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was revoked and has not yet expired.
func (l *RevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, l.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (l *RevocationList) key(jti string) string {
	return "revoked_refresh:" + jti
}
