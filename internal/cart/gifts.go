package cart

import "context"

// FreeGift is the normalized display shape for a gift, regardless of
// whether it originates from a cart-wide promotion or from a product's
// bundled complimentary gift. IDs are namespaced by origin:
// "promo-<productID>" or "complimentary-<productID>".
type FreeGift struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl"`
	Value       int64  `json:"value"`
}

// GiftRule binds a complimentary gift to the purchase of a specific
// product, as opposed to a cart-wide promotional gift.
type GiftRule struct {
	ProductID   string
	Name        string
	Description string
	ImageURL    string
	Value       int64
}

// RuleRepository lists the active complimentary gift rules.
type RuleRepository interface {
	ListGiftRules(ctx context.Context) ([]GiftRule, error)
}

// MergeGifts unions two gift lists, deduplicating by gift name. The first
// occurrence wins; order within each source is preserved.
func MergeGifts(primary, secondary []FreeGift) []FreeGift {
	seen := make(map[string]struct{}, len(primary)+len(secondary))
	merged := make([]FreeGift, 0, len(primary)+len(secondary))

	for _, g := range append(append([]FreeGift(nil), primary...), secondary...) {
		if _, ok := seen[g.Name]; ok {
			continue
		}
		seen[g.Name] = struct{}{}
		merged = append(merged, g)
	}
	return merged
}

// ComplimentaryGifts derives the gifts bundled with products currently in
// the cart. Rules for products not in the cart are ignored; one gift per
// matching rule regardless of quantity.
func (c *Cart) ComplimentaryGifts(rules []GiftRule) []FreeGift {
	inCart := make(map[string]struct{}, len(c.Items))
	for _, li := range c.Items {
		inCart[li.ProductID] = struct{}{}
	}

	var gifts []FreeGift
	for _, r := range rules {
		if _, ok := inCart[r.ProductID]; !ok {
			continue
		}
		gifts = append(gifts, FreeGift{
			ID:          "complimentary-" + r.ProductID,
			Name:        r.Name,
			Description: r.Description,
			ImageURL:    r.ImageURL,
			Value:       r.Value,
		})
	}
	return gifts
}
