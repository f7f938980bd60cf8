package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/theerakarnm/ekoe-checkout/internal/promo"
)

const (
	getRuleByCodeSQL = `SELECT code, kind, value, min_purchase, applicable_products,
		valid_from, valid_until, max_uses, uses, description
		FROM promotions WHERE UPPER(code) = UPPER($1) AND active = TRUE`

	incrementRuleUsesSQL = `UPDATE promotions SET uses = uses + 1 WHERE UPPER(code) = UPPER($1)`

	upsertRuleSQL = `INSERT INTO promotions (code, kind, value, min_purchase, description, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (code) DO UPDATE SET
			kind = EXCLUDED.kind, value = EXCLUDED.value,
			min_purchase = EXCLUDED.min_purchase,
			description = EXCLUDED.description, active = TRUE`

	activeGiftPromotionsSQL = `SELECT id, name, threshold, product_id, gift_name, image_url, value
		FROM gift_promotions WHERE active = TRUE ORDER BY threshold, id`

	upsertGiftPromotionSQL = `INSERT INTO gift_promotions (id, name, threshold, product_id, gift_name, image_url, value, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, threshold = EXCLUDED.threshold,
			product_id = EXCLUDED.product_id, gift_name = EXCLUDED.gift_name,
			image_url = EXCLUDED.image_url, value = EXCLUDED.value, active = TRUE`
)

var _ promo.Repository = (*PromotionRepository)(nil)

// PromotionRepository implements promo.Repository backed by PostgreSQL.
type PromotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository returns a PromotionRepository that uses the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// FindByCode looks up an active promotion rule by its code
// (case-insensitive). Returns promo.ErrRuleNotFound when no matching
// active rule exists.
func (r *PromotionRepository) FindByCode(ctx context.Context, code string) (*promo.Rule, error) {
	rows, err := r.pool.Query(ctx, getRuleByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding rule by code %q: %w", code, err)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, scanRule)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promo.ErrRuleNotFound
		}
		return nil, fmt.Errorf("finding rule by code %q: %w", code, err)
	}
	return &rule, nil
}

// IncrementUses atomically increments the usage counter for the given code.
func (r *PromotionRepository) IncrementUses(ctx context.Context, code string) error {
	_, err := r.pool.Exec(ctx, incrementRuleUsesSQL, code)
	if err != nil {
		return fmt.Errorf("incrementing uses for rule %q: %w", code, err)
	}
	return nil
}

// Upsert inserts or reactivates a promotion rule. Used by the bulk code
// ingest and the seeder.
func (r *PromotionRepository) Upsert(ctx context.Context, rule *promo.Rule) error {
	_, err := r.pool.Exec(ctx, upsertRuleSQL,
		rule.Code, string(rule.Kind), rule.Value, rule.MinPurchase, rule.Description,
	)
	if err != nil {
		return fmt.Errorf("upserting rule %q: %w", rule.Code, err)
	}
	return nil
}

// ActiveGiftPromotions returns all active cart-wide gift promotions
// ordered by spend threshold.
func (r *PromotionRepository) ActiveGiftPromotions(ctx context.Context) ([]promo.GiftPromotion, error) {
	rows, err := r.pool.Query(ctx, activeGiftPromotionsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing gift promotions: %w", err)
	}
	return pgx.CollectRows(rows, scanGiftPromotion)
}

// UpsertGiftPromotion inserts or refreshes a cart-wide gift promotion.
// Used by the seeder.
func (r *PromotionRepository) UpsertGiftPromotion(ctx context.Context, g promo.GiftPromotion) error {
	_, err := r.pool.Exec(ctx, upsertGiftPromotionSQL,
		g.ID, g.Name, g.Threshold, g.ProductID, g.GiftName, g.ImageURL, g.Value,
	)
	if err != nil {
		return fmt.Errorf("upserting gift promotion %q: %w", g.ID, err)
	}
	return nil
}

func scanRule(row pgx.CollectableRow) (promo.Rule, error) {
	var (
		rule        promo.Rule
		kind        string
		value       decimal.Decimal
		validFrom   *time.Time
		validUntil  *time.Time
		maxUses     int32
		uses        int32
		minPurchase int64
	)
	err := row.Scan(
		&rule.Code, &kind, &value, &minPurchase, &rule.ApplicableProducts,
		&validFrom, &validUntil, &maxUses, &uses, &rule.Description,
	)
	rule.Kind = promo.RuleKind(kind)
	rule.Value = value
	rule.MinPurchase = minPurchase
	rule.ValidFrom = validFrom
	rule.ValidUntil = validUntil
	rule.MaxUses = int(maxUses)
	rule.Uses = int(uses)
	return rule, err
}

func scanGiftPromotion(row pgx.CollectableRow) (promo.GiftPromotion, error) {
	var g promo.GiftPromotion
	err := row.Scan(
		&g.ID, &g.Name, &g.Threshold, &g.ProductID, &g.GiftName, &g.ImageURL, &g.Value,
	)
	return g, err
}
