// Command seed applies the database schema and upserts the product catalogue.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"shopstream/internal/config"
	"shopstream/internal/model"
	"shopstream/internal/repository"

	"github.com/shopspring/decimal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	catalogFile := flag.String("file", "", "JSON array of products; the built-in sample catalogue when empty")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)

	products := sampleCatalogue()
	if *catalogFile != "" {
		if products, err = readCatalogue(*catalogFile); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := repository.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialise database: %w", err)
	}
	defer pool.Close()

	if err := repository.ApplySchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	if err := repository.NewProductRepository(pool, logger).Upsert(ctx, products); err != nil {
		return fmt.Errorf("failed to seed catalogue: %w", err)
	}

	logger.Info().Int("product_count", len(products)).Msg("catalogue seeded")
	return nil
}

func readCatalogue(path string) ([]model.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue %s: %w", path, err)
	}
	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalogue %s: %w", path, err)
	}
	return products, nil
}

func sampleCatalogue() []model.Product {
	price := decimal.RequireFromString
	was := func(s string) *decimal.Decimal {
		d := price(s)
		return &d
	}
	pct := func(n int) *int { return &n }

	return []model.Product{
		{
			ID: "1", Name: "Wireless Noise-Cancelling Headphones", Price: price("249.99"),
			OriginalPrice: was("299.99"), Discount: pct(17),
			Description: "Over-ear headphones with 30 hour battery life.",
			Images:      []string{"/images/headphones-1.jpg", "/images/headphones-2.jpg"},
			Category:    "Electronics", Brand: "SoundMax", Rating: 4.7, Reviews: 1284, InStock: true,
		},
		{
			ID: "2", Name: "Smart Fitness Watch", Price: price("179.00"),
			Description: "Heart-rate, GPS and sleep tracking.",
			Images:      []string{"/images/watch-1.jpg"},
			Category:    "Electronics", Brand: "FitPulse", Rating: 4.4, Reviews: 862, InStock: true, IsNew: true,
		},
		{
			ID: "3", Name: "Organic Cotton T-Shirt", Price: price("24.99"),
			Description: "Relaxed fit, heavyweight cotton.",
			Images:      []string{"/images/tshirt-1.jpg"},
			Category:    "Clothing", Brand: "Evergreen", Rating: 4.2, Reviews: 311, InStock: true,
		},
		{
			ID: "4", Name: "Ceramic Pour-Over Coffee Set", Price: price("42.50"),
			OriginalPrice: was("50.00"), Discount: pct(15),
			Description: "Dripper, carafe and two cups.",
			Images:      []string{"/images/coffee-1.jpg"},
			Category:    "Home", Brand: "Kiln & Co", Rating: 4.8, Reviews: 97, InStock: true,
		},
		{
			ID: "5", Name: "Trail Running Shoes", Price: price("129.95"),
			Description: "Grippy outsole for wet rock.",
			Images:      []string{"/images/shoes-1.jpg", "/images/shoes-2.jpg"},
			Category:    "Sports", Brand: "Ridgeline", Rating: 4.5, Reviews: 540, InStock: false,
		},
		{
			ID: "6", Name: "Paperback Notebook Set", Price: price("9.99"),
			Description: "Three dotted A5 notebooks.",
			Images:      []string{},
			Category:    "Stationery", Brand: "Leaflet", Rating: 4.1, Reviews: 58, InStock: true, IsNew: true,
		},
	}
}
