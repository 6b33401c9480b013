package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// stateTTL bounds how long an OAuth round trip may take before the state
// nonce expires.
const stateTTL = 10 * time.Minute

// ErrStateNotFound is returned when a callback presents a state nonce that
// was never issued or has already been consumed.
var ErrStateNotFound = errors.New("oauth state not found or already used")

// Store keeps short-lived OAuth state nonces in redis, on a dedicated
// database separate from the task queue.
type Store struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

// NewStore creates a session store on the given redis address and database.
func NewStore(addr string, db int, logger zerolog.Logger) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
		logger: logger,
	}
}

// SaveState records a state nonce for a shop's OAuth round trip.
func (s *Store) SaveState(ctx context.Context, state string, shopDomain string) error {
	if err := s.rdb.Set(ctx, stateKey(state), shopDomain, stateTTL).Err(); err != nil {
		return fmt.Errorf("failed to save oauth state: %w", err)
	}
	return nil
}

// ConsumeState atomically fetches and deletes a state nonce, returning the
// shop domain it was issued for. Each nonce is valid exactly once.
func (s *Store) ConsumeState(ctx context.Context, state string) (string, error) {
	shopDomain, err := s.rdb.GetDel(ctx, stateKey(state)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrStateNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return shopDomain, nil
}

// Close releases the underlying redis connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func stateKey(state string) string {
	return "oauth:state:" + state
}
