package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/theerakarnm/ekoe-checkout/internal/shipping"
)

const (
	listShippingMethodsSQL = `SELECT id, name, description, carrier, cost, estimated_days
		FROM shipping_methods WHERE active = TRUE ORDER BY position, id`

	upsertShippingMethodSQL = `INSERT INTO shipping_methods (id, name, description, carrier, cost, estimated_days, position, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description,
			carrier = EXCLUDED.carrier, cost = EXCLUDED.cost,
			estimated_days = EXCLUDED.estimated_days,
			position = EXCLUDED.position, active = TRUE`
)

var _ shipping.Repository = (*ShippingRepository)(nil)

// ShippingRepository implements shipping.Repository backed by PostgreSQL.
type ShippingRepository struct {
	pool *pgxpool.Pool
}

// NewShippingRepository returns a ShippingRepository that uses the given pool.
func NewShippingRepository(pool *pgxpool.Pool) *ShippingRepository {
	return &ShippingRepository{pool: pool}
}

// List returns all active shipping methods in display order.
func (r *ShippingRepository) List(ctx context.Context) ([]shipping.Method, error) {
	rows, err := r.pool.Query(ctx, listShippingMethodsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing shipping methods: %w", err)
	}
	return pgx.CollectRows(rows, scanShippingMethod)
}

// Upsert inserts or refreshes a shipping method at the given display
// position. Used by the seeder.
func (r *ShippingRepository) Upsert(ctx context.Context, m shipping.Method, position int) error {
	var carrier *string
	if m.Carrier != "" {
		carrier = &m.Carrier
	}
	_, err := r.pool.Exec(ctx, upsertShippingMethodSQL,
		m.ID, m.Name, m.Description, carrier, m.Cost, m.EstimatedDays, position,
	)
	if err != nil {
		return fmt.Errorf("upserting shipping method %q: %w", m.ID, err)
	}
	return nil
}

func scanShippingMethod(row pgx.CollectableRow) (shipping.Method, error) {
	var (
		m       shipping.Method
		carrier *string
	)
	err := row.Scan(&m.ID, &m.Name, &m.Description, &carrier, &m.Cost, &m.EstimatedDays)
	if carrier != nil {
		m.Carrier = *carrier
	}
	return m, err
}
