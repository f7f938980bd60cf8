package cart

// Patch is a typed partial update for a single line item. Nil fields are
// left untouched. Setting Quantity to zero (or below) removes the line.
type Patch struct {
	Quantity    *int
	Price       *int64
	Image       *string
	VariantName *string
}

// WithPatch returns a copy of the cart with the patch applied to the line
// identified by key. The receiver is not modified. A patch for an unknown
// key is a no-op.
func (c Cart) WithPatch(key Key, p Patch) Cart {
	out := c
	out.Items = make([]LineItem, 0, len(c.Items))

	for _, li := range c.Items {
		if li.Key() != key {
			out.Items = append(out.Items, li)
			continue
		}

		if p.Quantity != nil {
			if *p.Quantity <= 0 {
				continue // quantity reached zero: drop the line
			}
			li.Quantity = *p.Quantity
		}
		if p.Price != nil {
			li.Price = *p.Price
		}
		if p.Image != nil {
			li.Image = *p.Image
		}
		if p.VariantName != nil {
			li.VariantName = *p.VariantName
		}
		out.Items = append(out.Items, li)
	}
	return out
}

// WithoutItem returns a copy of the cart with the line identified by key
// removed.
func (c Cart) WithoutItem(key Key) Cart {
	zero := 0
	return c.WithPatch(key, Patch{Quantity: &zero})
}
