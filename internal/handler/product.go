package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/theerakarnm/ekoe-checkout/internal/product"
)

// productView is the API shape of a product, with image paths resolved
// against the configured base URL.
type productView struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Price       int64         `json:"price"`
	Category    string        `json:"category,omitempty"`
	Image       string        `json:"image"`
	Stock       int           `json:"stock"`
	Variants    []variantView `json:"variants,omitempty"`
}

type variantView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

func (h *Handler) toProductView(p product.Product) productView {
	v := productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Image:       h.imageURL(p.Image),
		Stock:       p.Stock,
	}
	for _, pv := range p.Variants {
		v.Variants = append(v.Variants, variantView{
			ID:    pv.ID,
			Name:  pv.Name,
			Price: pv.Price,
		})
	}
	return v
}

// ListProducts returns the full catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	views := make([]productView, len(products))
	for i, p := range products {
		views[i] = h.toProductView(p)
	}
	writeJSON(w, r, http.StatusOK, views)
}

// GetProduct returns a single product by ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		internalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, h.toProductView(*p))
}
