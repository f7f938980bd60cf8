// Package product defines the catalog types consumed by the cart and
// order flows. Prices are int64 minor currency units.
package product

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog item available for purchase.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       int64
	Category    string
	Image       string
	Stock       int
	Variants    []Variant
}

// Variant is one selectable option of a product. When multiple variant
// axes are selected the ID is composite, e.g. "30ml:unscented". A zero
// Price means the variant sells at the product's base price.
type Variant struct {
	ID    string
	Name  string
	Price int64
	Stock int
}

// VariantByID returns the variant with the given composite ID, if any.
func (p *Product) VariantByID(id string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// UnitPrice resolves the effective price for the given variant ID.
// An empty or unknown variant ID falls back to the base price.
func (p *Product) UnitPrice(variantID string) int64 {
	if v, ok := p.VariantByID(variantID); ok && v.Price > 0 {
		return v.Price
	}
	return p.Price
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}
