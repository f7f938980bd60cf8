// Package shipping defines delivery methods and the selection state
// machine the checkout flow drives.
package shipping

import "context"

// Method is one available delivery option. Cost is int64 minor currency
// units; EstimatedDays is at least 1.
type Method struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Carrier       string `json:"carrier,omitempty"`
	Cost          int64  `json:"cost"`
	EstimatedDays int    `json:"estimatedDays"`
}

// Repository defines read operations for shipping methods.
type Repository interface {
	List(ctx context.Context) ([]Method, error)
}
