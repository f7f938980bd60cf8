package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/theerakarnm/ekoe-checkout/internal/cart"
	"github.com/theerakarnm/ekoe-checkout/internal/payment"
	"github.com/theerakarnm/ekoe-checkout/internal/product"
	"github.com/theerakarnm/ekoe-checkout/internal/promo"
	"github.com/theerakarnm/ekoe-checkout/internal/psp"
	"github.com/theerakarnm/ekoe-checkout/internal/shipping"
)

// DiscountRejectedError carries the classified refusal of the order's
// discount code.
type DiscountRejectedError struct {
	Rejection *promo.Rejection
}

func (e *DiscountRejectedError) Error() string {
	return e.Rejection.Error()
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	SessionID        string
	Items            []RequestItem
	DiscountCode     string
	ShippingMethodID string
	PaymentMethod    PaymentMethod
	ReturnURL        string
}

// RequestItem is an order line as submitted by the client. The price is
// never taken from the client; it is resolved from the catalog.
type RequestItem struct {
	ProductID string
	VariantID string
	Quantity  int
}

// PlaceOrderResult holds the output of a successfully placed order.
// Exactly one of QR and PaymentURL is set, per the payment method.
type PlaceOrderResult struct {
	Order      *Order
	Products   []product.Product
	QR         *psp.Transfer
	PaymentURL string
}

// Gateway initiates payments with the external provider.
// Satisfied by psp.Client.
type Gateway interface {
	CreateTransfer(ctx context.Context, orderID string, amount int64) (*psp.Transfer, error)
	InitiateCardPayment(ctx context.Context, orderID string, amount int64, returnURL string) (string, error)
}

// Service encapsulates order placement business logic.
type Service struct {
	products  product.Repository
	validator *promo.Validator
	shipping  shipping.Repository
	orders    Repository
	gateway   Gateway
}

// NewService creates an order Service with the required domain
// dependencies.
func NewService(
	products product.Repository,
	validator *promo.Validator,
	shippingRepo shipping.Repository,
	orders Repository,
	gateway Gateway,
) *Service {
	return &Service{
		products:  products,
		validator: validator,
		shipping:  shippingRepo,
		orders:    orders,
		gateway:   gateway,
	}
}

// PlaceOrder validates items, resolves prices from the catalog in one
// batch, re-validates the discount code, prices shipping, persists the
// order, and initiates payment with the provider.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if req.PaymentMethod != PayQRTransfer && req.PaymentMethod != PayCard {
		return nil, ErrUnknownPaymentMethod
	}

	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	productMap := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	// Resolve prices and build the pricing lines the validator sees.
	products := make([]product.Product, 0, len(req.Items))
	items := make([]Item, len(req.Items))
	lines := make([]cart.LineItem, len(req.Items))
	var subtotal int64
	for i, item := range req.Items {
		p, ok := productMap[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		products = append(products, p)

		unit := p.UnitPrice(item.VariantID)
		items[i] = Item{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: unit,
		}
		lines[i] = cart.LineItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Price:     unit,
			Quantity:  item.Quantity,
		}
		subtotal += unit * int64(item.Quantity)
	}

	var (
		discount     int64
		discountCode string
	)
	if req.DiscountCode != "" {
		v, err := s.validator.Validate(ctx, req.DiscountCode, lines)
		if err != nil {
			return nil, fmt.Errorf("validate discount: %w", err)
		}
		if !v.Valid {
			return nil, &DiscountRejectedError{Rejection: v.Rejection}
		}
		discount = v.Amount
		discountCode = v.Code
	}

	shippingCost, err := s.shippingCost(ctx, req.ShippingMethodID)
	if err != nil {
		return nil, err
	}

	if max := subtotal + shippingCost; discount > max {
		discount = max
	}

	o := &Order{
		ID:               uuid.New().String(),
		SessionID:        req.SessionID,
		Items:            items,
		Subtotal:         subtotal,
		ShippingCost:     shippingCost,
		Discount:         discount,
		Total:            subtotal + shippingCost - discount,
		DiscountCode:     discountCode,
		ShippingMethodID: req.ShippingMethodID,
		PaymentMethod:    req.PaymentMethod,
		PaymentStatus:    payment.StatusPending,
	}

	result := &PlaceOrderResult{Order: o, Products: products}
	switch req.PaymentMethod {
	case PayQRTransfer:
		transfer, err := s.gateway.CreateTransfer(ctx, o.ID, o.Total)
		if err != nil {
			return nil, fmt.Errorf("create transfer: %w", err)
		}
		o.PaymentID = transfer.PaymentID
		result.QR = transfer
	case PayCard:
		url, err := s.gateway.InitiateCardPayment(ctx, o.ID, o.Total, req.ReturnURL)
		if err != nil {
			return nil, fmt.Errorf("initiate card payment: %w", err)
		}
		result.PaymentURL = url
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return result, nil
}

func (s *Service) shippingCost(ctx context.Context, methodID string) (int64, error) {
	if methodID == "" {
		return 0, ErrUnknownShippingMethod
	}
	methods, err := s.shipping.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list shipping methods: %w", err)
	}
	for _, m := range methods {
		if m.ID == methodID {
			return m.Cost, nil
		}
	}
	return 0, ErrUnknownShippingMethod
}
