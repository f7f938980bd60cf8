package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/theerakarnm/ekoe-checkout/internal/cart"
)

var _ cart.Store = (*CartSessionStore)(nil)

// CartSessionStore persists carts in Redis keyed by session ID, with a
// sliding TTL refreshed on every save.
type CartSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartSessionStore returns a Redis-backed cart.Store. Each saved cart
// expires ttl after its last write.
func NewCartSessionStore(client *redis.Client, ttl time.Duration) *CartSessionStore {
	return &CartSessionStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *CartSessionStore) key(sessionID string) string {
	return "cart:sess:" + sessionID
}

// Get loads the cart for a session. A session with no stored cart gets a
// fresh empty cart, matching in-memory store semantics.
func (s *CartSessionStore) Get(ctx context.Context, sessionID string) (*cart.Cart, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &cart.Cart{}, nil
		}
		return nil, fmt.Errorf("loading cart session %q: %w", sessionID, err)
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding cart session %q: %w", sessionID, err)
	}
	return &c, nil
}

// Save stores the cart for a session and refreshes its TTL.
func (s *CartSessionStore) Save(ctx context.Context, sessionID string, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding cart session %q: %w", sessionID, err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving cart session %q: %w", sessionID, err)
	}
	return nil
}

// Delete removes the stored cart for a session. Deleting a session that was
// never saved is not an error.
func (s *CartSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("deleting cart session %q: %w", sessionID, err)
	}
	return nil
}

// Ping verifies the Redis connection. Used by readiness checks.
func (s *CartSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
