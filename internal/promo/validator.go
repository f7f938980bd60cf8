package promo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/theerakarnm/ekoe-checkout/internal/cart"
)

// ErrRuleNotFound is returned by Repository.FindByCode when no active
// rule exists for a code.
var ErrRuleNotFound = errors.New("promotion rule not found")

var hundred = decimal.NewFromInt(100)

// Validation is the outcome of checking a discount code against a cart.
// Exactly one of (Valid, Rejection) carries information: a valid result
// has the normalized code and resolved amount, an invalid one the reason.
type Validation struct {
	Valid     bool
	Code      string
	Amount    int64
	Rejection *Rejection
}

// Validator checks discount codes against promotion rules. It classifies
// refusals rather than returning bare errors so the storefront can map
// them to user-facing messages.
type Validator struct {
	repo Repository
	now  func() time.Time
}

// NewValidator creates a Validator backed by the given Repository.
func NewValidator(repo Repository) *Validator {
	return &Validator{repo: repo, now: time.Now}
}

// Validate checks the code against the rule set and the cart's line
// items. A classified refusal is reported in the returned Validation;
// the error return is reserved for infrastructure failures.
func (v *Validator) Validate(ctx context.Context, code string, items []cart.LineItem) (*Validation, error) {
	rule, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			return reject(RejectInvalidCode), nil
		}
		return nil, errors.Wrap(err, "lookup rule")
	}

	now := v.now()
	if rule.ValidFrom != nil && now.Before(*rule.ValidFrom) {
		return reject(RejectNotStarted), nil
	}
	if rule.ValidUntil != nil && now.After(*rule.ValidUntil) {
		return reject(RejectExpired), nil
	}
	if rule.MaxUses > 0 && rule.Uses >= rule.MaxUses {
		return reject(RejectUsageLimitReached), nil
	}

	subtotal := subtotalOf(items)
	if rule.MinPurchase > 0 && subtotal < rule.MinPurchase {
		return reject(RejectMinPurchaseNotMet), nil
	}
	if len(rule.ApplicableProducts) > 0 && !anyApplicable(rule.ApplicableProducts, items) {
		return reject(RejectNotApplicable), nil
	}

	return &Validation{
		Valid:  true,
		Code:   rule.Code,
		Amount: DiscountAmount(rule, subtotal),
	}, nil
}

// DiscountAmount resolves the rule's discount in minor units for the
// given subtotal. Percentage values go through decimal arithmetic and
// round half-up to a whole minor unit; fixed amounts are capped at the
// subtotal so a discount can never exceed what it discounts.
func DiscountAmount(rule *Rule, subtotal int64) int64 {
	switch rule.Kind {
	case KindPercentage:
		amount := decimal.NewFromInt(subtotal).Mul(rule.Value).Div(hundred)
		return amount.Round(0).IntPart()
	case KindFixed:
		amount := rule.Value.Round(0).IntPart()
		if amount > subtotal {
			return subtotal
		}
		return amount
	default:
		return 0
	}
}

func reject(code RejectionCode) *Validation {
	return &Validation{Rejection: &Rejection{Code: code}}
}

func subtotalOf(items []cart.LineItem) int64 {
	var sum int64
	for _, li := range items {
		sum += li.Price * int64(li.Quantity)
	}
	return sum
}

func anyApplicable(products []string, items []cart.LineItem) bool {
	applicable := make(map[string]struct{}, len(products))
	for _, p := range products {
		applicable[p] = struct{}{}
	}
	for _, li := range items {
		if _, ok := applicable[li.ProductID]; ok {
			return true
		}
	}
	return false
}
