package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCart_FirstVisitIsEmpty(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeBody[cartView](t, rec)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.TotalItems)
	assert.Zero(t, view.Summary.TotalAmount)
}

func TestAddCartItem_ResolvesPriceFromCatalog(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items",
		`{"productId":"vitamin-c-serum","variantId":"30ml","quantity":2,"price":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeBody[cartView](t, rec)
	require.Len(t, view.Items, 1)
	item := view.Items[0]
	assert.Equal(t, int64(129000), item.Price, "price comes from the catalog, not the request")
	assert.Equal(t, "Vitamin C Serum", item.ProductName)
	assert.Equal(t, "30 ml", item.VariantName)
	assert.Equal(t, "https://cdn.ekoe.example/img/serum.jpg", item.Image)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, int64(258000), view.Summary.Subtotal)
}

func TestAddCartItem_MergesSameVariant(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":"cleansing-balm","quantity":1}`)
	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":"cleansing-balm","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeBody[cartView](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
}

func TestAddCartItem_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":"snake-oil","quantity":1}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAddCartItem_BadRequests(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", `{"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPatchCartItem_Quantity(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cart/items",
		`{"productId":"vitamin-c-serum","variantId":"30ml","quantity":1}`)

	rec := env.do(t, http.MethodPatch, "/api/v1/cart/items/vitamin-c-serum:30ml", `{"quantity":5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeBody[cartView](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
}

func TestPatchCartItem_ZeroQuantityRemovesLine(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":"cleansing-balm","quantity":2}`)

	rec := env.do(t, http.MethodPatch, "/api/v1/cart/items/cleansing-balm", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeBody[cartView](t, rec)
	assert.Empty(t, view.Items)
}

func TestRemoveCartItem(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":"cleansing-balm","quantity":1}`)
	env.do(t, http.MethodPost, "/api/v1/cart/items",
		`{"productId":"vitamin-c-serum","variantId":"15ml","quantity":1}`)

	rec := env.do(t, http.MethodDelete, "/api/v1/cart/items/cleansing-balm", "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeBody[cartView](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "vitamin-c-serum", view.Items[0].ProductID)
}

func TestRemoveCartItem_UnknownLineIsNoop(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":"cleansing-balm","quantity":1}`)

	rec := env.do(t, http.MethodDelete, "/api/v1/cart/items/never-added", "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeBody[cartView](t, rec)
	assert.Len(t, view.Items, 1)
}

func TestGetCart_ComplimentaryGiftAppears(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":"ritual-set","quantity":1}`)

	rec := env.do(t, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeBody[cartView](t, rec)
	require.Len(t, view.Summary.Gifts, 1)
	assert.Equal(t, "complimentary-ritual-set", view.Summary.Gifts[0].ID)
	assert.Equal(t, "Mini Cleansing Balm", view.Summary.Gifts[0].Name)
}

func TestGetCart_MintsSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}
