package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenKeyPrefix = "trl:jti:"

// RedisList stores revoked token ids as expiring Redis keys, shared by every
// API instance.
type RedisList struct {
	client redis.UniversalClient
}

func NewRedisList(client redis.UniversalClient) *RedisList {
	return &RedisList{client: client}
}

func (l *RedisList) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	if err := l.client.Set(ctx, revokedTokenKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (l *RedisList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	_, err := l.client.Get(ctx, revokedTokenKeyPrefix+tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return true, nil
}
