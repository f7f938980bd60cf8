package promo

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/theerakarnm/ekoe-checkout/internal/cart"
)

// Applier commits validated discount codes to a cart session. It is the
// only path that writes discount state, so the cart can never hold an
// unvalidated code: validation and commit are two distinct phases and a
// refusal leaves the stored cart untouched.
type Applier struct {
	store     cart.Store
	validator *Validator
	repo      Repository
}

// NewApplier creates an Applier over the given store, validator and rule
// repository.
func NewApplier(store cart.Store, validator *Validator, repo Repository) *Applier {
	return &Applier{store: store, validator: validator, repo: repo}
}

// ApplyCode validates the code against the session's current cart and,
// only on a valid result, records the code and resolved amount and
// increments the rule's usage counter. The returned Validation carries
// the classified rejection otherwise.
func (a *Applier) ApplyCode(ctx context.Context, sessionID, code string) (*Validation, error) {
	c, err := a.store.Get(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	v, err := a.validator.Validate(ctx, code, c.Items)
	if err != nil {
		return nil, errors.Wrap(err, "validate code")
	}
	if !v.Valid {
		return v, nil
	}

	c.ApplyDiscount(v.Code, v.Amount)
	if err := a.store.Save(ctx, sessionID, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}

	if err := a.repo.IncrementUses(ctx, v.Code); err != nil {
		return nil, errors.Wrap(err, "increment rule uses")
	}

	return v, nil
}

// RemoveCode clears the session's discount state. Purely local: the rule
// set is consulted again only on the next apply.
func (a *Applier) RemoveCode(ctx context.Context, sessionID string) error {
	c, err := a.store.Get(ctx, sessionID)
	if err != nil {
		return errors.Wrap(err, "load cart")
	}

	c.RemoveDiscount()
	if err := a.store.Save(ctx, sessionID, c); err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}
