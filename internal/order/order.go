// Package order implements order placement on top of the catalog,
// promotion and shipping domains.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/theerakarnm/ekoe-checkout/internal/payment"
)

// PaymentMethod selects how an order is paid.
type PaymentMethod string

const (
	// PayQRTransfer issues a QR bank-transfer with a scan deadline.
	PayQRTransfer PaymentMethod = "qr"
	// PayCard redirects the shopper to the provider's card page.
	PayCard PaymentMethod = "card"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = fmt.Errorf("order not found")

// Sentinel errors for order validation.
var (
	ErrEmptyItems            = fmt.Errorf("items required")
	ErrUnknownShippingMethod = fmt.Errorf("unknown shipping method")
	ErrUnknownPaymentMethod  = fmt.Errorf("unknown payment method")
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// Item is a single line of an order. UnitPrice is the resolved
// per-unit price in minor units at placement time.
type Item struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// Order is a placed customer order with its authoritative pricing.
type Order struct {
	ID               string
	SessionID        string
	Items            []Item
	Subtotal         int64
	ShippingCost     int64
	Discount         int64
	Total            int64
	DiscountCode     string
	ShippingMethodID string
	PaymentMethod    PaymentMethod
	PaymentID        string
	PaymentStatus    payment.Status
	CreatedAt        time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	SetPaymentStatus(ctx context.Context, orderID string, status payment.Status) error
}
