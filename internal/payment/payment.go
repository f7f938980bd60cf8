// Package payment tracks the lifecycle of QR bank-transfer payments
// against the external payment provider.
package payment

import "context"

// Status is a payment's lifecycle state. The provider reports pending,
// completed or failed; expired is derived locally from the QR deadline
// and never waits for server confirmation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
)

// Terminal reports whether no further status transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusExpired
}

// StatusClient fetches a payment's current status from the provider.
// Satisfied by psp.Client.
type StatusClient interface {
	GetPaymentStatus(ctx context.Context, paymentID string) (Status, error)
}
