// Package checkout derives the figures and gift list shown on the
// checkout summary. A server-computed promo.CartResult always takes
// precedence; local derivation is the fallback for standalone usage.
package checkout

import (
	"github.com/theerakarnm/ekoe-checkout/internal/cart"
	"github.com/theerakarnm/ekoe-checkout/internal/promo"
)

// Summary is what the checkout page displays.
type Summary struct {
	Subtotal       int64           `json:"subtotal"`
	ShippingCost   int64           `json:"shippingCost"`
	DiscountAmount int64           `json:"discountAmount"`
	TotalAmount    int64           `json:"totalAmount"`
	Gifts          []cart.FreeGift `json:"gifts"`
}

// Summarize builds the checkout summary for a cart.
//
// When result is non-nil every figure is read verbatim from it and the
// gift list comes solely from its FreeGifts; no local arithmetic happens,
// so client and server rounding can never drift. When result is nil the
// figures derive locally (shippingCost is 0 until a method is chosen)
// and the gift list is the dedup-by-name union of complimentary and
// eligible gifts, complimentary first.
func Summarize(c *cart.Cart, result *promo.CartResult, shippingCost int64, complimentary, eligible []cart.FreeGift) Summary {
	if result != nil {
		return Summary{
			Subtotal:       result.Pricing.Subtotal,
			ShippingCost:   result.Pricing.ShippingCost,
			DiscountAmount: result.Pricing.DiscountAmount,
			TotalAmount:    result.Pricing.TotalAmount,
			Gifts:          result.FreeGifts,
		}
	}

	subtotal := c.Subtotal()
	return Summary{
		Subtotal:       subtotal,
		ShippingCost:   shippingCost,
		DiscountAmount: c.DiscountAmount,
		TotalAmount:    subtotal + shippingCost - c.DiscountAmount,
		Gifts:          cart.MergeGifts(complimentary, eligible),
	}
}
