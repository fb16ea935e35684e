package session

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tasktracker/domain"
)

const keyPrefix = "session:"

// DefaultTTL is how long a session stays valid without renewal.
const DefaultTTL = 24 * time.Hour

// Store maps opaque session tokens to authenticated identities in Redis.
// Tokens expire after the configured TTL; expired or unknown tokens simply
// report no session.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a session store using the provided Redis client and TTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

// Create mints a fresh opaque token for user.
func (s *Store) Create(ctx context.Context, user domain.User) (string, error) {
	token := uuid.NewString()
	data, err := sonic.Marshal(user)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, keyPrefix+token, data, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Get resolves a token to its identity. The second return value is false when
// the token is unknown or expired.
func (s *Store) Get(ctx context.Context, token string) (domain.User, bool, error) {
	data, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	var user domain.User
	if err := sonic.Unmarshal(data, &user); err != nil {
		return domain.User{}, false, err
	}
	return user, true, nil
}

// Delete invalidates a token. Deleting an unknown token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}
