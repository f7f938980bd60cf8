package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/theerakarnm/ekoe-checkout/internal/cart"
	"github.com/theerakarnm/ekoe-checkout/internal/checkout"
	"github.com/theerakarnm/ekoe-checkout/internal/order"
	"github.com/theerakarnm/ekoe-checkout/internal/payment"
	"github.com/theerakarnm/ekoe-checkout/internal/product"
	"github.com/theerakarnm/ekoe-checkout/internal/promo"
	"github.com/theerakarnm/ekoe-checkout/internal/psp"
	"github.com/theerakarnm/ekoe-checkout/internal/shipping"
)

type mockProductRepo struct {
	products []product.Product
	err      error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, product.ErrNotFound
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []product.Product
	for _, id := range ids {
		for _, p := range m.products {
			if p.ID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

type mockPromoRepo struct {
	rules map[string]*promo.Rule
	gifts []promo.GiftPromotion
}

func (m *mockPromoRepo) FindByCode(_ context.Context, code string) (*promo.Rule, error) {
	if r, ok := m.rules[strings.ToUpper(code)]; ok {
		return r, nil
	}
	return nil, promo.ErrRuleNotFound
}

func (m *mockPromoRepo) IncrementUses(_ context.Context, _ string) error { return nil }

func (m *mockPromoRepo) ActiveGiftPromotions(_ context.Context) ([]promo.GiftPromotion, error) {
	return m.gifts, nil
}

type mockShippingRepo struct {
	methods []shipping.Method
	err     error
}

func (m *mockShippingRepo) List(_ context.Context) ([]shipping.Method, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.methods, nil
}

type mockOrderRepo struct {
	orders map[string]*order.Order
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	if m.orders == nil {
		m.orders = make(map[string]*order.Order)
	}
	m.orders[o.ID] = o
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, order.ErrNotFound
}

func (m *mockOrderRepo) SetPaymentStatus(_ context.Context, orderID string, status payment.Status) error {
	if o, ok := m.orders[orderID]; ok {
		o.PaymentStatus = status
	}
	return nil
}

type mockGateway struct {
	transfer *psp.Transfer
	cardURL  string
}

func (m *mockGateway) CreateTransfer(_ context.Context, _ string, _ int64) (*psp.Transfer, error) {
	return m.transfer, nil
}

func (m *mockGateway) InitiateCardPayment(_ context.Context, _ string, _ int64, _ string) (string, error) {
	return m.cardURL, nil
}

type mockGiftRuleRepo struct {
	rules []cart.GiftRule
}

func (m *mockGiftRuleRepo) ListGiftRules(_ context.Context) ([]cart.GiftRule, error) {
	return m.rules, nil
}

type stubStatusClient struct{ status payment.Status }

func (s stubStatusClient) GetPaymentStatus(_ context.Context, _ string) (payment.Status, error) {
	return s.status, nil
}

type testEnv struct {
	mux       *http.ServeMux
	store     cart.Store
	products  *mockProductRepo
	promoRepo *mockPromoRepo
	shipping  *mockShippingRepo
	orders    *mockOrderRepo
	gateway   *mockGateway
	giftRules *mockGiftRuleRepo
}

func passKey(next http.Handler) http.Handler { return next }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store: cart.NewMemoryStore(),
		products: &mockProductRepo{products: []product.Product{
			{
				ID:    "vitamin-c-serum",
				Name:  "Vitamin C Serum",
				Image: "/img/serum.jpg",
				Price: 89000,
				Variants: []product.Variant{
					{ID: "15ml", Name: "15 ml", Price: 89000},
					{ID: "30ml", Name: "30 ml", Price: 129000},
				},
			},
			{ID: "cleansing-balm", Name: "Cleansing Balm", Image: "/img/balm.jpg", Price: 85000},
			{ID: "ritual-set", Name: "Ritual Set", Price: 189000},
		}},
		promoRepo: &mockPromoRepo{rules: map[string]*promo.Rule{
			"SAVE10": {Code: "SAVE10", Kind: promo.KindPercentage, Value: decimal.NewFromInt(10)},
		}},
		shipping: &mockShippingRepo{methods: []shipping.Method{
			{ID: "standard", Name: "Standard Delivery", Cost: 5000, EstimatedDays: 5},
			{ID: "express", Name: "Express Delivery", Cost: 12000, EstimatedDays: 1},
		}},
		orders:  &mockOrderRepo{},
		gateway: &mockGateway{transfer: &psp.Transfer{
			PaymentID: "pay_abc",
			QRImage:   "data:image/png;base64,xxx",
			ExpiresAt: time.Now().Add(15 * time.Minute),
		}},
		giftRules: &mockGiftRuleRepo{rules: []cart.GiftRule{
			{ProductID: "ritual-set", Name: "Mini Cleansing Balm"},
		}},
	}

	validator := promo.NewValidator(env.promoRepo)
	engine := promo.NewEngine(env.promoRepo)
	applier := promo.NewApplier(env.store, validator, env.promoRepo)
	gifts := checkout.NewGiftFetcher(env.store, engine)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	monitor := payment.NewMonitor(ctx, stubStatusClient{status: payment.StatusCompleted}, env.orders)

	orderService := order.NewService(env.products, validator, env.shipping, env.orders, env.gateway)

	h := NewHandler(
		Config{ImageBaseURL: "https://cdn.ekoe.example"},
		env.products,
		env.store,
		env.giftRules,
		applier,
		engine,
		gifts,
		env.shipping,
		orderService,
		env.orders,
		monitor,
	)

	env.mux = http.NewServeMux()
	h.Register(env.mux, passKey)
	return env
}

// do performs a request against the handler under a fixed session.
func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(sessionHeader, "test-session")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
