// Command seed-db prepares a development database: it runs migrations,
// loads the product catalog from JSON, and seeds promotions, gift rules,
// shipping methods and a default API key.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/theerakarnm/ekoe-checkout/internal/auth"
	"github.com/theerakarnm/ekoe-checkout/internal/cart"
	"github.com/theerakarnm/ekoe-checkout/internal/product"
	"github.com/theerakarnm/ekoe-checkout/internal/promo"
	"github.com/theerakarnm/ekoe-checkout/internal/repository"
	"github.com/theerakarnm/ekoe-checkout/internal/shipping"
)

type productJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Stock       int    `json:"stock"`
	Variants    []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Price int64  `json:"price"`
		Stock int    `json:"stock"`
	} `json:"variants"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or EKOE_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or EKOE_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("EKOE_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or EKOE_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("EKOE_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, repository.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedPromotions(ctx, repository.NewPromotionRepository(pool)); err != nil {
		return errors.Wrap(err, "seed promotions")
	}
	if err := seedGiftRules(ctx, repository.NewGiftRuleRepository(pool)); err != nil {
		return errors.Wrap(err, "seed gift rules")
	}
	if err := seedShippingMethods(ctx, repository.NewShippingRepository(pool)); err != nil {
		return errors.Wrap(err, "seed shipping methods")
	}
	if err := seedAPIKey(ctx, repository.NewAPIKeyRepository(pool), apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedProducts(ctx context.Context, repo *repository.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, pj := range products {
		p := product.Product{
			ID:          pj.ID,
			Name:        pj.Name,
			Description: pj.Description,
			Price:       pj.Price,
			Category:    pj.Category,
			Image:       pj.Image,
			Stock:       pj.Stock,
		}
		for _, v := range pj.Variants {
			p.Variants = append(p.Variants, product.Variant{
				ID:    v.ID,
				Name:  v.Name,
				Price: v.Price,
				Stock: v.Stock,
			})
		}
		if err := repo.Upsert(ctx, p); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedPromotions(ctx context.Context, repo *repository.PromotionRepository) error {
	slog.Info("seeding promotions")

	rules := []promo.Rule{
		{
			Code:        "SAVE10",
			Kind:        promo.KindPercentage,
			Value:       decimal.NewFromInt(10),
			Description: "10% off entire order",
		},
		{
			Code:        "WELCOME150",
			Kind:        promo.KindFixed,
			Value:       decimal.NewFromInt(15000),
			MinPurchase: 100000,
			Description: "150 baht off orders over 1,000",
		},
		{
			Code:        "GLOWUP20",
			Kind:        promo.KindPercentage,
			Value:       decimal.NewFromInt(20),
			MinPurchase: 200000,
			Description: "20% off orders over 2,000",
		},
	}

	for i := range rules {
		if err := repo.Upsert(ctx, &rules[i]); err != nil {
			return errors.Wrapf(err, "upsert promotion %s", rules[i].Code)
		}

		slog.Info("upserted promotion",
			slog.String("code", rules[i].Code),
			slog.String("description", rules[i].Description),
		)
	}

	gifts := []promo.GiftPromotion{
		{
			ID:        "spend-1500-mask",
			Name:      "Free sheet mask set over 1,500",
			Threshold: 150000,
			ProductID: "sheet-mask-trio",
			GiftName:  "Hydrating Sheet Mask Trio",
			ImageURL:  "/images/gifts/sheet-mask-trio.jpg",
			Value:     29000,
		},
		{
			ID:        "spend-3000-pouch",
			Name:      "Free travel pouch over 3,000",
			Threshold: 300000,
			ProductID: "travel-pouch",
			GiftName:  "Linen Travel Pouch",
			ImageURL:  "/images/gifts/travel-pouch.jpg",
			Value:     45000,
		},
	}

	for _, g := range gifts {
		if err := repo.UpsertGiftPromotion(ctx, g); err != nil {
			return errors.Wrapf(err, "upsert gift promotion %s", g.ID)
		}

		slog.Info("upserted gift promotion", slog.String("id", g.ID))
	}

	return nil
}

func seedGiftRules(ctx context.Context, repo *repository.GiftRuleRepository) error {
	slog.Info("seeding complimentary gift rules")

	rules := []cart.GiftRule{
		{
			ProductID:   "ritual-set",
			Name:        "Mini Cleansing Balm",
			Description: "Complimentary with the Night Ritual Set",
			ImageURL:    "/images/gifts/mini-cleansing-balm.jpg",
			Value:       19000,
		},
		{
			ProductID:   "vitamin-c-serum",
			Name:        "Hydrating Sheet Mask Trio",
			Description: "Complimentary with the Vitamin C Serum",
			ImageURL:    "/images/gifts/sheet-mask-trio.jpg",
			Value:       29000,
		},
	}

	for _, r := range rules {
		if err := repo.Upsert(ctx, r); err != nil {
			return errors.Wrapf(err, "upsert gift rule for %s", r.ProductID)
		}

		slog.Info("upserted gift rule",
			slog.String("product_id", r.ProductID),
			slog.String("gift", r.Name),
		)
	}

	return nil
}

func seedShippingMethods(ctx context.Context, repo *repository.ShippingRepository) error {
	slog.Info("seeding shipping methods")

	methods := []shipping.Method{
		{
			ID:            "standard",
			Name:          "Standard Delivery",
			Description:   "Delivered within 3-5 business days",
			Carrier:       "Kerry Express",
			Cost:          5000,
			EstimatedDays: 5,
		},
		{
			ID:            "express",
			Name:          "Express Delivery",
			Description:   "Delivered next business day in Bangkok",
			Carrier:       "Flash Express",
			Cost:          12000,
			EstimatedDays: 1,
		},
		{
			ID:            "pickup",
			Name:          "Store Pickup",
			Description:   "Collect at our Thonglor flagship store",
			Cost:          0,
			EstimatedDays: 1,
		},
	}

	for i, m := range methods {
		if err := repo.Upsert(ctx, m, i); err != nil {
			return errors.Wrapf(err, "upsert shipping method %s", m.ID)
		}

		slog.Info("upserted shipping method", slog.String("id", m.ID))
	}

	return nil
}

func seedAPIKey(ctx context.Context, repo *repository.APIKeyRepository, apiKey, pepper string) error {
	slog.Info("seeding default API key")

	info := &auth.APIKeyInfo{
		ID:      "default",
		KeyHash: auth.HashKey([]byte(pepper), apiKey),
		Name:    "Default storefront key",
		Scopes:  []string{"place_order"},
	}
	if err := repo.Upsert(ctx, info, true); err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("id", info.ID), slog.String("name", info.Name))

	return nil
}
