//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/v1/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != seededCount {
		t.Fatalf("expected %d products, got %d", seededCount, len(products))
	}

	byID := make(map[string]productResponse, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	serum, ok := byID["vitamin-c-serum"]
	if !ok {
		t.Fatal("vitamin-c-serum not in catalog")
	}
	if serum.Price != 129000 {
		t.Errorf("serum price: got %d, want 129000", serum.Price)
	}
	if len(serum.Variants) != 2 {
		t.Errorf("serum variants: got %d, want 2", len(serum.Variants))
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/v1/products/hyaluronic-essence")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	p := decodeJSON[productResponse](t, resp)
	if p.ID != "hyaluronic-essence" {
		t.Errorf("id: got %q", p.ID)
	}
	if len(p.Variants) != 2 {
		t.Fatalf("variants: got %d, want 2", len(p.Variants))
	}
	// Composite variant IDs carry both axes.
	if p.Variants[1].ID != "50ml:lotus" {
		t.Errorf("variant id: got %q, want 50ml:lotus", p.Variants[1].ID)
	}
	if p.Variants[1].Price != 104000 {
		t.Errorf("variant price: got %d, want 104000", p.Variants[1].Price)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/v1/products/snake-oil")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusNotFound {
		t.Errorf("error code: got %d, want 404", body.Code)
	}
}
