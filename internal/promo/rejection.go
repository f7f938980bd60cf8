package promo

// RejectionCode is the closed set of reasons a discount code can be
// refused. Adding a server-side reason means adding a constant here and
// extending UserMessage, which the exhaustiveness test guards.
type RejectionCode string

const (
	RejectInvalidCode       RejectionCode = "INVALID_CODE"
	RejectExpired           RejectionCode = "EXPIRED"
	RejectNotStarted        RejectionCode = "NOT_STARTED"
	RejectUsageLimitReached RejectionCode = "USAGE_LIMIT_REACHED"
	RejectMinPurchaseNotMet RejectionCode = "MIN_PURCHASE_NOT_MET"
	RejectNotApplicable     RejectionCode = "NOT_APPLICABLE"
)

// AllRejectionCodes lists every defined rejection code.
var AllRejectionCodes = []RejectionCode{
	RejectInvalidCode,
	RejectExpired,
	RejectNotStarted,
	RejectUsageLimitReached,
	RejectMinPurchaseNotMet,
	RejectNotApplicable,
}

// Rejection is a classified refusal of a discount code. Message, when
// non-empty, is a server-provided free-text reason that takes precedence
// over the code-derived message.
type Rejection struct {
	Code    RejectionCode
	Message string
}

func (r *Rejection) Error() string {
	return "discount code rejected: " + string(r.Code)
}

// UserMessage returns the text to surface for this rejection. Free-text
// Message wins; otherwise the code maps to a fixed message, and an
// unrecognized code falls back to a generic one.
func (r *Rejection) UserMessage() string {
	if r.Message != "" {
		return r.Message
	}
	switch r.Code {
	case RejectInvalidCode:
		return "This discount code is not valid."
	case RejectExpired:
		return "This discount code has expired."
	case RejectNotStarted:
		return "This discount code is not active yet."
	case RejectUsageLimitReached:
		return "This discount code has reached its usage limit."
	case RejectMinPurchaseNotMet:
		return "Your order does not meet the minimum purchase for this code."
	case RejectNotApplicable:
		return "This discount code does not apply to the items in your cart."
	default:
		return "Unable to apply this discount code."
	}
}
