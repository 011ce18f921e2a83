package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"restaurant-waste/internal/shared/apperrors"
)

const sessionPrefix = "auth:refresh:"

// RedisSessions stores refresh sessions under auth:refresh:<jti> with the
// token's lifetime as TTL.
type RedisSessions struct {
	client *redis.Client
}

func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

func (s *RedisSessions) Save(ctx context.Context, tokenID, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionPrefix+tokenID, userID, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Consume uses GETDEL so that a refresh token can be rotated only once.
func (s *RedisSessions) Consume(ctx context.Context, tokenID string) (string, error) {
	userID, err := s.client.GetDel(ctx, sessionPrefix+tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: session expired or revoked", apperrors.ErrUnauthorized)
	}
	if err != nil {
		return "", fmt.Errorf("consume session: %w", err)
	}
	return userID, nil
}

func (s *RedisSessions) Delete(ctx context.Context, tokenID string) error {
	return s.client.Del(ctx, sessionPrefix+tokenID).Err()
}
