package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ticket-bot/internal/models"
)

// RedisStore keeps user states as JSON under prefix+userID. States expire
// after ttl of inactivity; a zero ttl keeps them until the scenario ends.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisStore keeps each user state as JSON under prefix+userID. A zero ttl
// keeps states until they are deleted.
func NewRedisStore(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + userID
}

// Get reports ok=false for users without a stored state.
func (s *RedisStore) Get(ctx context.Context, userID string) (*models.UserState, bool, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get %s: %v", ErrStoreFailed, userID, err)
	}

	var state models.UserState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, false, fmt.Errorf("%w: decode %s: %v", ErrStoreFailed, userID, err)
	}
	return &state, true, nil
}

// Set writes the state and renews its expiry.
func (s *RedisStore) Set(ctx context.Context, userID string, state *models.UserState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStoreFailed, userID, err)
	}
	if err := s.client.Set(ctx, s.key(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrStoreFailed, userID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrStoreFailed, userID, err)
	}
	return nil
}
