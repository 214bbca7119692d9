package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RefreshStore keeps hashed refresh tokens.
type RefreshStore interface {
	Save(ctx context.Context, tokenHash string, merchantID uuid.UUID, ttl time.Duration) error
	Lookup(ctx context.Context, tokenHash string) (uuid.UUID, error)
	Delete(ctx context.Context, tokenHash string) error
}

type redisRefreshStore struct {
	client *redis.Client // nil if Redis disabled
}

// NewRedisRefreshStore stores refresh tokens under "refresh:<sha256>".
// With a nil client tokens are not persisted and refresh always fails.
func NewRedisRefreshStore(client *redis.Client) RefreshStore {
	return &redisRefreshStore{client: client}
}

func (s *redisRefreshStore) Save(ctx context.Context, tokenHash string, merchantID uuid.UUID, ttl time.Duration) error {
	if s.client == nil {
		return nil
	}
	return s.client.Set(ctx, "refresh:"+tokenHash, merchantID.String(), ttl).Err()
}

func (s *redisRefreshStore) Lookup(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	if s.client == nil {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	val, err := s.client.Get(ctx, "refresh:"+tokenHash).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrInvalidRefreshToken
		}
		return uuid.Nil, err
	}
	return uuid.Parse(val)
}

func (s *redisRefreshStore) Delete(ctx context.Context, tokenHash string) error {
	if s.client == nil {
		return nil
	}
	return s.client.Del(ctx, "refresh:"+tokenHash).Err()
}
