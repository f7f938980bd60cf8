package handler

import (
	"net/http"

	"github.com/theerakarnm/ekoe-checkout/internal/checkout"
)

// ListShippingMethods returns the available shipping methods in display
// order. An empty list is a valid response, not an error.
func (h *Handler) ListShippingMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.shipping.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, methods)
}

// CheckoutSummary returns the server-evaluated pricing for the session's
// cart. The shippingMethodId query parameter selects the shipping cost;
// when absent or unknown, shipping is priced at zero. Every figure in the
// response is authoritative: total == subtotal + shipping - discount.
func (h *Handler) CheckoutSummary(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	ctx := r.Context()

	c, err := h.store.Get(ctx, sessionID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	var shippingCost int64
	if methodID := r.URL.Query().Get("shippingMethodId"); methodID != "" {
		methods, err := h.shipping.List(ctx)
		if err != nil {
			internalError(w, r, err)
			return
		}
		for _, m := range methods {
			if m.ID == methodID {
				shippingCost = m.Cost
				break
			}
		}
	}

	result, err := h.engine.Evaluate(ctx, c, shippingCost)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, checkout.Summarize(c, result, shippingCost, nil, nil))
}
