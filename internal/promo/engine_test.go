package promo

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theerakarnm/ekoe-checkout/internal/cart"
)

func TestEngine_Evaluate(t *testing.T) {
	baseCart := &cart.Cart{Items: []cart.LineItem{
		{ProductID: "night-cream", Price: 95000, Quantity: 2},
	}}

	tests := []struct {
		name         string
		repo         *mockRuleRepo
		cart         *cart.Cart
		shippingCost int64
		want         Pricing
	}{
		{
			name:         "no discount code",
			repo:         &mockRuleRepo{},
			cart:         baseCart,
			shippingCost: 5000,
			want: Pricing{
				Subtotal:     190000,
				ShippingCost: 5000,
				TotalAmount:  195000,
			},
		},
		{
			name: "committed percentage re-resolved against the rule",
			repo: &mockRuleRepo{rule: &Rule{
				Code:  "SAVE10",
				Kind:  KindPercentage,
				Value: decimal.NewFromInt(10),
			}},
			cart: &cart.Cart{
				Items:          baseCart.Items,
				DiscountCode:   "SAVE10",
				DiscountAmount: 1, // stale figure, engine must recompute
			},
			shippingCost: 5000,
			want: Pricing{
				Subtotal:       190000,
				ShippingCost:   5000,
				DiscountAmount: 19000,
				TotalAmount:    176000,
			},
		},
		{
			name: "vanished rule contributes no discount",
			repo: &mockRuleRepo{err: ErrRuleNotFound},
			cart: &cart.Cart{
				Items:          baseCart.Items,
				DiscountCode:   "GONE",
				DiscountAmount: 19000,
			},
			shippingCost: 5000,
			want: Pricing{
				Subtotal:     190000,
				ShippingCost: 5000,
				TotalAmount:  195000,
			},
		},
		{
			name: "discount clamped to subtotal plus shipping",
			repo: &mockRuleRepo{rule: &Rule{
				Code:  "MEGA",
				Kind:  KindFixed,
				Value: decimal.NewFromInt(999999),
			}},
			cart: &cart.Cart{
				Items:        []cart.LineItem{{ProductID: "cleansing-balm", Price: 1000, Quantity: 1}},
				DiscountCode: "MEGA",
			},
			shippingCost: 500,
			want: Pricing{
				Subtotal:       1000,
				ShippingCost:   500,
				DiscountAmount: 1500,
				TotalAmount:    0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.repo)

			got, err := e.Evaluate(context.Background(), tt.cart, tt.shippingCost)
			require.NoError(t, err)

			assert.Equal(t, tt.want, got.Pricing)
			assert.Equal(t, got.Pricing.Subtotal+got.Pricing.ShippingCost-got.Pricing.DiscountAmount, got.Pricing.TotalAmount)
		})
	}
}

func TestEngine_Evaluate_RepositoryError(t *testing.T) {
	e := NewEngine(&mockRuleRepo{err: errors.New("connection refused")})
	c := &cart.Cart{
		Items:        []cart.LineItem{{ProductID: "night-cream", Price: 95000, Quantity: 1}},
		DiscountCode: "SAVE10",
	}

	_, err := e.Evaluate(context.Background(), c, 0)
	require.Error(t, err)
}

func TestEngine_EligibleGifts(t *testing.T) {
	repo := &mockRuleRepo{gifts: []GiftPromotion{
		{ProductID: "sheet-mask", GiftName: "Hydrating Sheet Mask Trio", Threshold: 150000, Value: 29000},
		{ProductID: "pouch", GiftName: "Travel Pouch", Threshold: 300000, Value: 45000},
	}}
	e := NewEngine(repo)

	t.Run("thresholds are inclusive", func(t *testing.T) {
		c := &cart.Cart{Items: []cart.LineItem{{ProductID: "ritual-set", Price: 150000, Quantity: 1}}}

		gifts, err := e.EligibleGifts(context.Background(), c)
		require.NoError(t, err)
		require.Len(t, gifts, 1)
		assert.Equal(t, "promo-sheet-mask", gifts[0].ID)
		assert.Equal(t, "Hydrating Sheet Mask Trio", gifts[0].Name)
	})

	t.Run("all reached thresholds grant their gifts", func(t *testing.T) {
		c := &cart.Cart{Items: []cart.LineItem{{ProductID: "ritual-set", Price: 150000, Quantity: 2}}}

		gifts, err := e.EligibleGifts(context.Background(), c)
		require.NoError(t, err)
		require.Len(t, gifts, 2)
	})

	t.Run("below every threshold", func(t *testing.T) {
		c := &cart.Cart{Items: []cart.LineItem{{ProductID: "cleansing-balm", Price: 85000, Quantity: 1}}}

		gifts, err := e.EligibleGifts(context.Background(), c)
		require.NoError(t, err)
		assert.Empty(t, gifts)
	})
}
