package cart

import (
	"context"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-process Store used in tests and single-node
// development setups. Carts are copied on Get and Save so callers never
// share slices with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]Cart
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]Cart)}
}

// Get returns the cart for the given session. A session without a cart
// gets a fresh empty cart rather than an error, mirroring first-visit
// hydration.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[sessionID]
	if !ok {
		return &Cart{}, nil
	}
	cp := c
	cp.Items = append([]LineItem(nil), c.Items...)
	return &cp, nil
}

// Save stores a copy of the cart under the given session ID.
func (s *MemoryStore) Save(_ context.Context, sessionID string, c *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	cp.Items = append([]LineItem(nil), c.Items...)
	s.carts[sessionID] = cp
	return nil
}

// Delete removes the cart for the given session, if any.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}
