package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/theerakarnm/ekoe-checkout/internal/cart"
)

const (
	listGiftRulesSQL = `SELECT product_id, name, description, image_url, value
		FROM gift_rules WHERE active = TRUE ORDER BY product_id`

	upsertGiftRuleSQL = `INSERT INTO gift_rules (product_id, name, description, image_url, value, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (product_id, name) DO UPDATE SET
			description = EXCLUDED.description, image_url = EXCLUDED.image_url,
			value = EXCLUDED.value, active = TRUE`
)

var _ cart.RuleRepository = (*GiftRuleRepository)(nil)

// GiftRuleRepository provides complimentary gift rules from PostgreSQL.
type GiftRuleRepository struct {
	pool *pgxpool.Pool
}

// NewGiftRuleRepository returns a GiftRuleRepository using the given pool.
func NewGiftRuleRepository(pool *pgxpool.Pool) *GiftRuleRepository {
	return &GiftRuleRepository{pool: pool}
}

// ListGiftRules returns all active complimentary gift rules.
func (r *GiftRuleRepository) ListGiftRules(ctx context.Context) ([]cart.GiftRule, error) {
	rows, err := r.pool.Query(ctx, listGiftRulesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing gift rules: %w", err)
	}

	rules, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (cart.GiftRule, error) {
		var g cart.GiftRule
		err := row.Scan(&g.ProductID, &g.Name, &g.Description, &g.ImageURL, &g.Value)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning gift rules: %w", err)
	}
	return rules, nil
}

// Upsert inserts or refreshes a gift rule. Used by the seeder.
func (r *GiftRuleRepository) Upsert(ctx context.Context, g cart.GiftRule) error {
	_, err := r.pool.Exec(ctx, upsertGiftRuleSQL,
		g.ProductID, g.Name, g.Description, g.ImageURL, g.Value,
	)
	if err != nil {
		return fmt.Errorf("upserting gift rule for product %q: %w", g.ProductID, err)
	}
	return nil
}
