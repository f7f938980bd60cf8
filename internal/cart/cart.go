// Package cart holds the shopper's working set of line items and the
// locally-applied discount state. All monetary values are int64 minor
// currency units (satang).
package cart

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/go-faster/errors"
)

// ErrSessionNotFound is returned when no cart exists for a session ID.
var ErrSessionNotFound = errors.New("cart session not found")

// Key identifies a line item within a cart. Two items with the same
// product and variant are the same line.
type Key struct {
	ProductID string
	VariantID string
}

func (k Key) String() string {
	if k.VariantID == "" {
		return k.ProductID
	}
	return k.ProductID + ":" + k.VariantID
}

// ParseKey splits a "<productID>:<variantID>" key back into its parts.
func ParseKey(s string) Key {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return Key{ProductID: s[:i], VariantID: s[i+1:]}
	}
	return Key{ProductID: s}
}

// LineItem is one product+variant+quantity entry in the cart.
// VariantID is composite when multiple variant axes are selected
// (e.g. "30ml:unscented").
type LineItem struct {
	ProductID   string `json:"productId"`
	VariantID   string `json:"variantId,omitempty"`
	ProductName string `json:"productName"`
	VariantName string `json:"variantName,omitempty"`
	Image       string `json:"image"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
}

// Key returns the identity of this line within the cart.
func (li LineItem) Key() Key {
	return Key{ProductID: li.ProductID, VariantID: li.VariantID}
}

// Cart is the working set for one shopper session. DiscountCode and
// DiscountAmount are always set and cleared together; there is no state
// where a code is recorded without its resolved amount.
type Cart struct {
	Items          []LineItem `json:"items"`
	DiscountCode   string     `json:"discountCode,omitempty"`
	DiscountAmount int64      `json:"discountAmount,omitempty"`
}

// AddItem merges the given item into the cart. An item with an existing
// (productID, variantID) key increments that line's quantity instead of
// appending a duplicate row. Quantity is coerced to at least 1.
func (c *Cart) AddItem(item LineItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	key := item.Key()
	for i := range c.Items {
		if c.Items[i].Key() == key {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// Subtotal returns the sum of price*quantity over all line items.
func (c *Cart) Subtotal() int64 {
	var sum int64
	for _, li := range c.Items {
		sum += li.Price * int64(li.Quantity)
	}
	return sum
}

// TotalItems returns the sum of quantities, used for the header badge.
// An empty (or not yet hydrated) cart reports 0.
func (c *Cart) TotalItems() int {
	total := 0
	for _, li := range c.Items {
		total += li.Quantity
	}
	return total
}

// ApplyDiscount records a validated discount code and its resolved amount.
// Codes are normalized to upper case. Both fields change together.
func (c *Cart) ApplyDiscount(code string, amount int64) {
	c.DiscountCode = strings.ToUpper(code)
	c.DiscountAmount = amount
}

// RemoveDiscount clears the discount code and amount together.
func (c *Cart) RemoveDiscount() {
	c.DiscountCode = ""
	c.DiscountAmount = 0
}

// Fingerprint returns a stable digest of the cart's content, keyed by line
// identity and quantity. Two carts with the same lines in any order produce
// the same fingerprint. Used to discard stale async gift evaluations.
func (c *Cart) Fingerprint() string {
	lines := make([]string, len(c.Items))
	for i, li := range c.Items {
		lines[i] = fmt.Sprintf("%s=%d", li.Key(), li.Quantity)
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Store persists carts per shopper session. The cart survives navigation
// (and, with the Redis implementation, process restarts) but is never
// shared across sessions.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, c *Cart) error
	Delete(ctx context.Context, sessionID string) error
}
