package ports

import (
	"context"
	"time"
)

// RevocationStore remembers revoked refresh tokens by their jti until they
// would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
