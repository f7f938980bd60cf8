package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/theerakarnm/ekoe-checkout/internal/cart"
	"github.com/theerakarnm/ekoe-checkout/internal/checkout"
	"github.com/theerakarnm/ekoe-checkout/internal/product"
)

// cartView is the API shape of a session's cart, with locally derived
// figures. Figures become authoritative only at checkout, where the
// server-evaluated result takes precedence.
type cartView struct {
	Items      []cart.LineItem  `json:"items"`
	TotalItems int              `json:"totalItems"`
	Summary    checkout.Summary `json:"summary"`
}

// respondCart builds the cart view: complimentary gifts derive from the
// catalog rules, eligible gifts from the promotion engine via the
// stale-guarded fetcher.
func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, sessionID string, c *cart.Cart) {
	ctx := r.Context()

	rules, err := h.giftRules.ListGiftRules(ctx)
	if err != nil {
		internalError(w, r, err)
		return
	}

	eligible, err := h.gifts.Refresh(ctx, sessionID)
	if err != nil {
		// Gift evaluation is decorative; fall back to the last accepted
		// list rather than failing the cart read.
		zctx.From(ctx).Warn("refresh eligible gifts", zap.Error(err))
		eligible = h.gifts.Cached(sessionID)
	}

	writeJSON(w, r, http.StatusOK, cartView{
		Items:      c.Items,
		TotalItems: c.TotalItems(),
		Summary:    checkout.Summarize(c, nil, 0, c.ComplimentaryGifts(rules), eligible),
	})
}

// GetCart returns the session's cart. A first-visit session gets an
// empty cart, never an error.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	c, err := h.store.Get(r.Context(), sessionID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	h.respondCart(w, r, sessionID, c)
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// AddCartItem merges a product line into the cart. The unit price is
// resolved from the catalog, never taken from the client.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	ctx := r.Context()

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, r, http.StatusBadRequest, "productId is required")
		return
	}

	p, err := h.products.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, r, http.StatusUnprocessableEntity, "product not found: "+req.ProductID)
			return
		}
		internalError(w, r, err)
		return
	}

	item := cart.LineItem{
		ProductID:   p.ID,
		VariantID:   req.VariantID,
		ProductName: p.Name,
		Image:       h.imageURL(p.Image),
		Price:       p.UnitPrice(req.VariantID),
		Quantity:    req.Quantity,
	}
	if v, ok := p.VariantByID(req.VariantID); ok {
		item.VariantName = v.Name
	}

	c, err := h.store.Get(ctx, sessionID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	c.AddItem(item)

	if err := h.store.Save(ctx, sessionID, c); err != nil {
		internalError(w, r, err)
		return
	}
	h.respondCart(w, r, sessionID, c)
}

type patchItemRequest struct {
	Quantity *int `json:"quantity"`
}

// PatchCartItem applies a partial update to one cart line. Quantity zero
// removes the line.
func (h *Handler) PatchCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	ctx := r.Context()
	key := cart.ParseKey(r.PathValue("key"))

	var req patchItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.store.Get(ctx, sessionID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	patched := c.WithPatch(key, cart.Patch{Quantity: req.Quantity})
	if err := h.store.Save(ctx, sessionID, &patched); err != nil {
		internalError(w, r, err)
		return
	}
	h.respondCart(w, r, sessionID, &patched)
}

// RemoveCartItem deletes one cart line. Removing an unknown line is a
// no-op, not an error.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	ctx := r.Context()
	key := cart.ParseKey(r.PathValue("key"))

	c, err := h.store.Get(ctx, sessionID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	trimmed := c.WithoutItem(key)
	if err := h.store.Save(ctx, sessionID, &trimmed); err != nil {
		internalError(w, r, err)
		return
	}
	h.respondCart(w, r, sessionID, &trimmed)
}
