//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
)

var sessionSeq atomic.Int64

// newSession returns a session ID unique to this test run so cart state
// never leaks between tests.
func newSession(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("it-%s-%d", t.Name(), sessionSeq.Add(1))
}

func addItem(t *testing.T, session, productID, variantID string, quantity int) cartResponse {
	t.Helper()

	resp := doSessionPost(t, "/api/v1/cart/items", session, map[string]any{
		"productId": productID,
		"variantId": variantID,
		"quantity":  quantity,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d", resp.StatusCode)
	}
	return decodeJSON[cartResponse](t, resp)
}

func TestCart_EmptyOnFirstVisit(t *testing.T) {
	session := newSession(t)

	resp := doSessionGet(t, "/api/v1/cart", session)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	cart := decodeJSON[cartResponse](t, resp)
	if len(cart.Items) != 0 || cart.TotalItems != 0 {
		t.Errorf("expected empty cart, got %+v", cart)
	}
}

func TestCart_AddAndMerge(t *testing.T) {
	session := newSession(t)

	addItem(t, session, "vitamin-c-serum", "15ml", 1)
	cart := addItem(t, session, "vitamin-c-serum", "15ml", 2)

	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 merged line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 3 {
		t.Errorf("quantity: got %d, want 3", cart.Items[0].Quantity)
	}
	if cart.Items[0].Price != 79000 {
		t.Errorf("price: got %d, want 79000 (variant price)", cart.Items[0].Price)
	}
	if cart.Summary.Subtotal != 237000 {
		t.Errorf("subtotal: got %d, want 237000", cart.Summary.Subtotal)
	}
}

func TestCart_DifferentVariantsStaySeparate(t *testing.T) {
	session := newSession(t)

	addItem(t, session, "hyaluronic-essence", "50ml:unscented", 1)
	cart := addItem(t, session, "hyaluronic-essence", "50ml:lotus", 1)

	if len(cart.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(cart.Items))
	}
}

func TestCart_PatchQuantityAndRemove(t *testing.T) {
	session := newSession(t)
	addItem(t, session, "cleansing-balm", "", 1)

	resp := doSessionPatch(t, "/api/v1/cart/items/cleansing-balm", session, map[string]any{"quantity": 4})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d", resp.StatusCode)
	}
	cart := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if cart.Items[0].Quantity != 4 {
		t.Errorf("quantity after patch: got %d, want 4", cart.Items[0].Quantity)
	}

	resp = doSessionDelete(t, "/api/v1/cart/items/cleansing-balm", session)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}
	cart = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if len(cart.Items) != 0 {
		t.Errorf("expected empty cart after delete, got %d lines", len(cart.Items))
	}
}

func TestCart_ComplimentaryGift(t *testing.T) {
	session := newSession(t)

	cart := addItem(t, session, "ritual-set", "", 1)

	found := false
	for _, g := range cart.Summary.Gifts {
		if g.ID == "complimentary-ritual-set" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected complimentary gift for ritual-set, got %+v", cart.Summary.Gifts)
	}
}

func TestDiscount_ApplyAndRemove(t *testing.T) {
	session := newSession(t)
	addItem(t, session, "night-cream", "", 2) // 290000

	resp := doSessionPost(t, "/api/v1/cart/discount", session, map[string]string{"code": "save10"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("apply: expected 200, got %d", resp.StatusCode)
	}
	cart := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()

	if cart.Summary.DiscountAmount != 29000 {
		t.Errorf("discount: got %d, want 29000", cart.Summary.DiscountAmount)
	}
	if cart.Summary.TotalAmount != 261000 {
		t.Errorf("total: got %d, want 261000", cart.Summary.TotalAmount)
	}

	resp = doSessionDelete(t, "/api/v1/cart/discount", session)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove: expected 200, got %d", resp.StatusCode)
	}
	cart = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if cart.Summary.DiscountAmount != 0 {
		t.Errorf("discount after removal: got %d, want 0", cart.Summary.DiscountAmount)
	}
}

func TestDiscount_Rejections(t *testing.T) {
	tests := []struct {
		name          string
		productID     string
		quantity      int
		code          string
		wantRejection string
	}{
		{
			name:          "unknown code",
			productID:     "cleansing-balm",
			quantity:      1,
			code:          "NOSUCHCODE",
			wantRejection: "INVALID_CODE",
		},
		{
			name:          "below minimum purchase",
			productID:     "mineral-sunscreen", // 69000, below WELCOME150's 100000 floor
			quantity:      1,
			code:          "WELCOME150",
			wantRejection: "MIN_PURCHASE_NOT_MET",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newSession(t)
			addItem(t, session, tt.productID, "", tt.quantity)

			resp := doSessionPost(t, "/api/v1/cart/discount", session, map[string]string{"code": tt.code})
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", resp.StatusCode)
			}

			rej := decodeJSON[rejectionResponse](t, resp)
			if rej.RejectionCode != tt.wantRejection {
				t.Errorf("rejection: got %q, want %q", rej.RejectionCode, tt.wantRejection)
			}
			if rej.Message == "" {
				t.Error("rejection message is empty")
			}
		})
	}
}

func TestCheckoutSummary(t *testing.T) {
	session := newSession(t)
	addItem(t, session, "night-cream", "", 2) // 290000

	applyResp := doSessionPost(t, "/api/v1/cart/discount", session, map[string]string{"code": "GLOWUP20"})
	if applyResp.StatusCode != http.StatusOK {
		t.Fatalf("apply discount: expected 200, got %d", applyResp.StatusCode)
	}
	applyResp.Body.Close()

	resp := doSessionGet(t, "/api/v1/checkout/summary?shippingMethodId=express", session)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	s := decodeJSON[summaryResponse](t, resp)
	if s.Subtotal != 290000 {
		t.Errorf("subtotal: got %d, want 290000", s.Subtotal)
	}
	if s.ShippingCost != 12000 {
		t.Errorf("shipping: got %d, want 12000", s.ShippingCost)
	}
	if s.DiscountAmount != 58000 {
		t.Errorf("discount: got %d, want 58000", s.DiscountAmount)
	}
	if got, want := s.TotalAmount, s.Subtotal+s.ShippingCost-s.DiscountAmount; got != want {
		t.Errorf("total identity broken: got %d, want %d", got, want)
	}

	// 290000 passes the 150000 gift threshold.
	found := false
	for _, g := range s.Gifts {
		if g.Name == "Hydrating Sheet Mask Trio" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected promotional gift in summary, got %+v", s.Gifts)
	}
}

func TestShippingMethods(t *testing.T) {
	resp := doGet(t, "/api/v1/shipping/methods")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	methods := decodeJSON[[]shippingMethodResponse](t, resp)
	if len(methods) != 3 {
		t.Fatalf("expected 3 methods, got %d", len(methods))
	}
	if methods[0].ID != "standard" {
		t.Errorf("first method: got %q, want standard (display order)", methods[0].ID)
	}
}
