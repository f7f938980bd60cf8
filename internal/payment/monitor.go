package payment

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// StatusRecorder persists the final status of a watched payment.
// Satisfied by the order repository.
type StatusRecorder interface {
	SetPaymentStatus(ctx context.Context, orderID string, status Status) error
}

// Monitor owns a poller per pending QR payment and records the outcome
// on the order once a terminal status is reached. Watch is called after
// order placement; all pollers stop when the monitor's context is
// cancelled at shutdown.
type Monitor struct {
	ctx     context.Context
	client  StatusClient
	orders  StatusRecorder
	timeout time.Duration

	mu      sync.Mutex
	pollers map[string]*Poller // orderID -> poller
}

// NewMonitor creates a Monitor bound to ctx. The context's lifetime
// bounds every poller started through Watch.
func NewMonitor(ctx context.Context, client StatusClient, orders StatusRecorder) *Monitor {
	return &Monitor{
		ctx:     ctx,
		client:  client,
		orders:  orders,
		timeout: 5 * time.Second,
		pollers: make(map[string]*Poller),
	}
}

// Watch starts polling the given payment and records terminal statuses
// on the order. Watching an order that is already being watched replaces
// the previous poller.
func (m *Monitor) Watch(orderID, paymentID string, expiresAt time.Time) {
	lg := zctx.From(m.ctx).With(
		zap.String("order_id", orderID),
		zap.String("payment_id", paymentID),
	)

	p := StartPoller(m.ctx, PollerConfig{
		Client:    m.client,
		PaymentID: paymentID,
		ExpiresAt: expiresAt,
		OnStatus: func(s Status) {
			if !s.Terminal() {
				return
			}
			lg.Info("Payment reached terminal status", zap.String("status", string(s)))
			m.record(orderID, s)
		},
		OnError: func(err error) {
			// Transport hiccups are non-fatal; the next poll is on schedule.
			lg.Warn("Payment status poll failed", zap.Error(err))
		},
	})

	m.mu.Lock()
	if prev, ok := m.pollers[orderID]; ok {
		prev.Stop()
	}
	m.pollers[orderID] = p
	m.mu.Unlock()
}

// Stop cancels the poller for the given order, if any.
func (m *Monitor) Stop(orderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.pollers[orderID]; ok {
		p.Stop()
		delete(m.pollers, orderID)
	}
}

func (m *Monitor) record(orderID string, s Status) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(m.ctx), m.timeout)
	defer cancel()

	if err := m.orders.SetPaymentStatus(ctx, orderID, s); err != nil {
		zctx.From(m.ctx).Error("Record payment status",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	}
}
