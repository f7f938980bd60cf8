package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/theerakarnm/ekoe-checkout/internal/order"
	"github.com/theerakarnm/ekoe-checkout/internal/payment"
)

const (
	createOrderSQL = `INSERT INTO orders (id, session_id, items, subtotal, shipping_cost,
		discount, total, discount_code, shipping_method_id, payment_method, payment_id, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	getOrderByIDSQL = `SELECT id, session_id, items, subtotal, shipping_cost,
		discount, total, discount_code, shipping_method_id, payment_method,
		payment_id, payment_status, created_at
		FROM orders WHERE id = $1`

	setPaymentStatusSQL = `UPDATE orders SET payment_status = $2 WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. The order items are serialized to JSON
// for storage in the JSONB column.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.SessionID, itemsJSON, o.Subtotal, o.ShippingCost,
		o.Discount, o.Total, o.DiscountCode, o.ShippingMethodID,
		string(o.PaymentMethod), o.PaymentID, string(o.PaymentStatus),
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var (
		o             order.Order
		itemsJSON     []byte
		paymentMethod string
		paymentStatus string
	)
	err := r.pool.QueryRow(ctx, getOrderByIDSQL, id).Scan(
		&o.ID, &o.SessionID, &itemsJSON, &o.Subtotal, &o.ShippingCost,
		&o.Discount, &o.Total, &o.DiscountCode, &o.ShippingMethodID,
		&paymentMethod, &o.PaymentID, &paymentStatus, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshaling items for order %q: %w", id, err)
	}
	o.PaymentMethod = order.PaymentMethod(paymentMethod)
	o.PaymentStatus = payment.Status(paymentStatus)
	return &o, nil
}

// SetPaymentStatus records the payment lifecycle status for an order.
func (r *OrderRepository) SetPaymentStatus(ctx context.Context, orderID string, status payment.Status) error {
	_, err := r.pool.Exec(ctx, setPaymentStatusSQL, orderID, string(status))
	if err != nil {
		return fmt.Errorf("setting payment status for order %q: %w", orderID, err)
	}
	return nil
}
