package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "kazilink:revoked:"

// Revoker tracks revoked token IDs so logout invalidates tokens
// before their natural expiry. Entries live in Redis with a TTL
// matching the token lifetime, after which the token is expired anyway.
type Revoker struct {
	client *redis.Client
}

// NewRevoker creates a Revoker backed by the given Redis client
func NewRevoker(client *redis.Client) *Revoker {
	return &Revoker{client: client}
}

// Revoke marks a token ID as revoked until the token would expire on its own
func (r *Revoker) Revoke(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		return fmt.Errorf("empty token ID")
	}
	if err := r.client.Set(ctx, revokedKeyPrefix+tokenID, "1", TokenLifetime).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token ID has been revoked.
// Redis being unreachable fails closed: the token is treated as revoked.
func (r *Revoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return true, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// Ping verifies the Redis connection during startup
func (r *Revoker) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.client.Ping(ctx).Err()
}
