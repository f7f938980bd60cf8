package promo

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/theerakarnm/ekoe-checkout/internal/cart"
)

// Pricing is the authoritative breakdown for a cart. The engine maintains
// TotalAmount == Subtotal + ShippingCost - DiscountAmount.
type Pricing struct {
	Subtotal       int64 `json:"subtotal"`
	ShippingCost   int64 `json:"shippingCost"`
	DiscountAmount int64 `json:"discountAmount"`
	TotalAmount    int64 `json:"totalAmount"`
}

// CartResult is the server-computed evaluation of a cart: the pricing
// breakdown plus the promotional gifts the cart qualifies for. When
// present it supersedes any locally derived figures.
type CartResult struct {
	Pricing   Pricing         `json:"pricing"`
	FreeGifts []cart.FreeGift `json:"freeGifts"`
}

// Engine evaluates carts against the promotion rule set.
type Engine struct {
	repo Repository
}

// NewEngine creates an Engine backed by the given Repository.
func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo}
}

// Evaluate computes the pricing breakdown and promotional gifts for the
// cart. The cart's committed discount is re-resolved against the current
// rule so the amount cannot drift from what the rule now grants; a code
// whose rule has since disappeared contributes no discount. The discount
// is clamped so the total identity holds with a non-negative total.
func (e *Engine) Evaluate(ctx context.Context, c *cart.Cart, shippingCost int64) (*CartResult, error) {
	subtotal := c.Subtotal()

	var discount int64
	if c.DiscountCode != "" {
		rule, err := e.repo.FindByCode(ctx, c.DiscountCode)
		switch {
		case errors.Is(err, ErrRuleNotFound):
			discount = 0
		case err != nil:
			return nil, errors.Wrap(err, "resolve committed discount")
		default:
			discount = DiscountAmount(rule, subtotal)
		}
	}
	if max := subtotal + shippingCost; discount > max {
		discount = max
	}

	gifts, err := e.EligibleGifts(ctx, c)
	if err != nil {
		return nil, err
	}

	return &CartResult{
		Pricing: Pricing{
			Subtotal:       subtotal,
			ShippingCost:   shippingCost,
			DiscountAmount: discount,
			TotalAmount:    subtotal + shippingCost - discount,
		},
		FreeGifts: gifts,
	}, nil
}

// EligibleGifts returns the promotional gifts whose spend threshold the
// cart's subtotal reaches, in repository order. Safe to call repeatedly
// for the same cart contents.
func (e *Engine) EligibleGifts(ctx context.Context, c *cart.Cart) ([]cart.FreeGift, error) {
	promos, err := e.repo.ActiveGiftPromotions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list gift promotions")
	}

	subtotal := c.Subtotal()
	var gifts []cart.FreeGift
	for _, p := range promos {
		if subtotal < p.Threshold {
			continue
		}
		gifts = append(gifts, cart.FreeGift{
			ID:       "promo-" + p.ProductID,
			Name:     p.GiftName,
			ImageURL: p.ImageURL,
			Value:    p.Value,
		})
	}
	return gifts, nil
}
