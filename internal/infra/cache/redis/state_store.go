package redis

import (
	"context"
	"time"

	"authsvc/internal/domain/service"
	"authsvc/internal/errors"

	goredis "github.com/redis/go-redis/v9"
)

const stateKeyPrefix = "oauth:state:"

// stateStore implements service.StateStore on Redis keys with a TTL.
type stateStore struct {
	client *goredis.Client
}

// NewStateStore is the constructor for stateStore.
func NewStateStore(client *goredis.Client) service.StateStore {
	return &stateStore{client: client}
}

// Save records state for ttl.
func (s *stateStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	if state == "" {
		return errors.New("state must not be empty")
	}

	if err := s.client.Set(ctx, stateKeyPrefix+state, 1, ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to save oauth state")
	}

	return nil
}

// Consume atomically deletes state and reports whether it existed.
func (s *stateStore) Consume(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}

	err := s.client.GetDel(ctx, stateKeyPrefix+state).Err()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to consume oauth state")
	}

	return true, nil
}
