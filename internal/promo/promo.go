// Package promo implements discount-code validation and promotional cart
// evaluation: the pricing breakdown and free-gift set the storefront
// treats as authoritative.
package promo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RuleKind enumerates the supported discount strategies for a code.
type RuleKind string

const (
	// KindPercentage discounts the subtotal by Value percent.
	KindPercentage RuleKind = "percentage"
	// KindFixed discounts a fixed minor-unit amount, capped at the subtotal.
	KindFixed RuleKind = "fixed"
)

// Rule defines a discount code's behaviour and eligibility constraints.
// Value is a percentage for KindPercentage and a minor-unit amount for
// KindFixed; it is stored as NUMERIC and carried as a decimal so
// fractional percentages survive intact.
type Rule struct {
	Code               string
	Kind               RuleKind
	Value              decimal.Decimal
	MinPurchase        int64
	ApplicableProducts []string
	ValidFrom          *time.Time
	ValidUntil         *time.Time
	MaxUses            int
	Uses               int
	Description        string
}

// GiftPromotion grants a free gift to every cart whose subtotal reaches
// the threshold.
type GiftPromotion struct {
	ID        string
	Name      string
	Threshold int64
	ProductID string
	GiftName  string
	ImageURL  string
	Value     int64
}

// Repository provides lookup and mutation of promotion rules.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
	IncrementUses(ctx context.Context, code string) error
	ActiveGiftPromotions(ctx context.Context) ([]GiftPromotion, error)
}
