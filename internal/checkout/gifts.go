package checkout

import (
	"context"
	"sync"

	"github.com/go-faster/errors"

	"github.com/theerakarnm/ekoe-checkout/internal/cart"
)

// GiftSource evaluates which promotional gifts a cart qualifies for.
// Satisfied by promo.Engine.
type GiftSource interface {
	EligibleGifts(ctx context.Context, c *cart.Cart) ([]cart.FreeGift, error)
}

// GiftFetcher refreshes a session's eligible-gift list against a
// GiftSource while guarding against stale responses: an evaluation that
// finishes after the cart's contents have changed is discarded instead
// of overwriting the newer state. Cached results are keyed by the cart's
// content fingerprint, which also makes repeated refreshes for an
// unchanged cart idempotent.
type GiftFetcher struct {
	store  cart.Store
	source GiftSource

	mu     sync.Mutex
	cached map[string]sessionGifts // sessionID -> last accepted result
}

type sessionGifts struct {
	fingerprint string
	gifts       []cart.FreeGift
}

// NewGiftFetcher creates a GiftFetcher over the given store and source.
func NewGiftFetcher(store cart.Store, source GiftSource) *GiftFetcher {
	return &GiftFetcher{
		store:  store,
		source: source,
		cached: make(map[string]sessionGifts),
	}
}

// Refresh evaluates the session's current cart and returns the gift list.
// If the cart changed while the evaluation was in flight the result is
// dropped and the previously accepted list is returned; the caller's next
// refresh will pick up the new contents. Evaluation failures leave the
// cached state untouched.
func (f *GiftFetcher) Refresh(ctx context.Context, sessionID string) ([]cart.FreeGift, error) {
	c, err := f.store.Get(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	fingerprint := c.Fingerprint()

	if cached, ok := f.lookup(sessionID); ok && cached.fingerprint == fingerprint {
		return cached.gifts, nil
	}

	gifts, err := f.source.EligibleGifts(ctx, c)
	if err != nil {
		return nil, errors.Wrap(err, "evaluate gifts")
	}

	// Re-read the cart: a concurrent mutation means this result describes
	// contents that no longer exist.
	current, err := f.store.Get(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "reload cart")
	}
	if current.Fingerprint() != fingerprint {
		if cached, ok := f.lookup(sessionID); ok {
			return cached.gifts, nil
		}
		return nil, nil
	}

	f.mu.Lock()
	f.cached[sessionID] = sessionGifts{fingerprint: fingerprint, gifts: gifts}
	f.mu.Unlock()
	return gifts, nil
}

// Cached returns the last accepted gift list for the session without
// evaluating anything.
func (f *GiftFetcher) Cached(sessionID string) []cart.FreeGift {
	if g, ok := f.lookup(sessionID); ok {
		return g.gifts
	}
	return nil
}

func (f *GiftFetcher) lookup(sessionID string) (sessionGifts, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.cached[sessionID]
	return g, ok
}
