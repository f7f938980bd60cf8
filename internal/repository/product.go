package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/theerakarnm/ekoe-checkout/internal/product"
)

const (
	listProductsSQL = `SELECT id, name, description, price, category, image, stock
		FROM products ORDER BY id`

	getProductByIDSQL = `SELECT id, name, description, price, category, image, stock
		FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT id, name, description, price, category, image, stock
		FROM products WHERE id = ANY($1)`

	listVariantsSQL = `SELECT product_id, id, name, price, stock
		FROM product_variants WHERE product_id = ANY($1) ORDER BY product_id, position`

	upsertProductSQL = `INSERT INTO products (id, name, description, price, category, image, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description,
			price = EXCLUDED.price, category = EXCLUDED.category,
			image = EXCLUDED.image, stock = EXCLUDED.stock`

	upsertVariantSQL = `INSERT INTO product_variants (product_id, id, name, price, stock, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (product_id, id) DO UPDATE SET
			name = EXCLUDED.name, price = EXCLUDED.price,
			stock = EXCLUDED.stock, position = EXCLUDED.position`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products from the catalog ordered by ID, with their
// variants attached.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return r.attachVariants(ctx, products)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	withVariants, err := r.attachVariants(ctx, []product.Product{p})
	if err != nil {
		return nil, err
	}
	return &withVariants[0], nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return r.attachVariants(ctx, products)
}

// attachVariants loads variants for all given products in one query.
func (r *ProductRepository) attachVariants(ctx context.Context, products []product.Product) ([]product.Product, error) {
	if len(products) == 0 {
		return products, nil
	}

	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	rows, err := r.pool.Query(ctx, listVariantsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("listing variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID string
			v         product.Variant
		)
		if err := rows.Scan(&productID, &v.ID, &v.Name, &v.Price, &v.Stock); err != nil {
			return nil, fmt.Errorf("scanning variant: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing variants: %w", err)
	}
	return products, nil
}

// Upsert inserts or updates a product and its variants. Used by the
// seeder.
func (r *ProductRepository) Upsert(ctx context.Context, p product.Product) error {
	_, err := r.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.Image, p.Stock,
	)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}

	for i, v := range p.Variants {
		_, err := r.pool.Exec(ctx, upsertVariantSQL,
			p.ID, v.ID, v.Name, v.Price, v.Stock, i,
		)
		if err != nil {
			return fmt.Errorf("upserting variant %q of product %q: %w", v.ID, p.ID, err)
		}
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Image, &p.Stock,
	)
	return p, err
}
