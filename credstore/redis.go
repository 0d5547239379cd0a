package credstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	credentialKeyPrefix = "sfcred"

	fieldAccessToken  = "access_token"
	fieldRefreshToken = "refresh_token"
	fieldProfile      = "user_data"
)

// RedisStore persists credentials in Redis, one hash per profile. A non-zero
// TTL bounds how long an abandoned profile survives; every Save resets it.
type RedisStore struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed credential store.
func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		redis:  redisClient,
		prefix: credentialKeyPrefix,
		ttl:    ttl,
	}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) key(profileID string) string {
	return s.prefix + ":" + profileID
}

// Save writes all three credential values for the profile in one round trip.
func (s *RedisStore) Save(ctx context.Context, profileID string, creds Credentials) error {
	if profileID == "" {
		return fmt.Errorf("profileID is required")
	}

	key := s.key(profileID)
	pipe := s.redis.TxPipeline()
	pipe.HSet(ctx, key,
		fieldAccessToken, creds.AccessToken,
		fieldRefreshToken, creds.RefreshToken,
		fieldProfile, creds.ProfileJSON,
	)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("credstore redis save: %w", err)
	}
	return nil
}

// Load retrieves the stored credentials. A missing key yields zero-value
// Credentials.
func (s *RedisStore) Load(ctx context.Context, profileID string) (Credentials, error) {
	if profileID == "" {
		return Credentials{}, fmt.Errorf("profileID is required")
	}

	values, err := s.redis.HGetAll(ctx, s.key(profileID)).Result()
	if err != nil {
		return Credentials{}, fmt.Errorf("credstore redis load: %w", err)
	}

	return Credentials{
		AccessToken:  values[fieldAccessToken],
		RefreshToken: values[fieldRefreshToken],
		ProfileJSON:  values[fieldProfile],
	}, nil
}

// Clear removes the profile's credentials. Deleting a missing key is a no-op.
func (s *RedisStore) Clear(ctx context.Context, profileID string) error {
	if profileID == "" {
		return fmt.Errorf("profileID is required")
	}

	if err := s.redis.Del(ctx, s.key(profileID)).Err(); err != nil {
		return fmt.Errorf("credstore redis clear: %w", err)
	}
	return nil
}
