package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRepo keeps revoked refresh-token JTIs until their natural expiry.
type TokenRepo struct {
	client *redis.Client
}

func NewTokenRepo(client *redis.Client) *TokenRepo {
	return &TokenRepo{client: client}
}

func (r *TokenRepo) Revoke(ctx context.Context, jti string, exp time.Time) error {
	return r.client.Set(ctx, "revoked:"+jti, 1, safeTTL(exp)).Err()
}

func (r *TokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, "revoked:"+jti).Result()
	if err != nil {
		// Fail closed: an unreachable list treats the token as revoked.
		return true, err
	}
	return n > 0, nil
}

func safeTTL(exp time.Time) time.Duration {
	ttl := time.Until(exp)
	if ttl <= 0 {
		// Minimal TTL so the key still disappears on its own.
		return time.Minute
	}
	return ttl
}
