package handler

import (
	"encoding/json"
	"net/http"
)

type applyDiscountRequest struct {
	Code string `json:"code"`
}

// discountRejection is the API shape of a refused discount code. The
// rejection code is machine-readable; message is ready for display.
type discountRejection struct {
	Code          int    `json:"code"`
	RejectionCode string `json:"rejectionCode"`
	Message       string `json:"message"`
}

// ApplyDiscount validates a discount code against the session's cart and,
// only if valid, commits it. A refused code leaves the cart untouched and
// reports the classified reason.
func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	ctx := r.Context()

	var req applyDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, r, http.StatusBadRequest, "code is required")
		return
	}

	v, err := h.applier.ApplyCode(ctx, sessionID, req.Code)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if !v.Valid {
		writeJSON(w, r, http.StatusUnprocessableEntity, discountRejection{
			Code:          http.StatusUnprocessableEntity,
			RejectionCode: string(v.Rejection.Code),
			Message:       v.Rejection.UserMessage(),
		})
		return
	}

	c, err := h.store.Get(ctx, sessionID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	h.respondCart(w, r, sessionID, c)
}

// RemoveDiscount clears the session cart's discount code and amount.
func (h *Handler) RemoveDiscount(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	ctx := r.Context()

	if err := h.applier.RemoveCode(ctx, sessionID); err != nil {
		internalError(w, r, err)
		return
	}

	c, err := h.store.Get(ctx, sessionID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	h.respondCart(w, r, sessionID, c)
}
