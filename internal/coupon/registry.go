package coupon

import (
	"context"
	"fmt"
	"sync"

	"shopstream/internal/pricing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RegistryConfig holds configuration for the promo registry.
type RegistryConfig struct {
	// Defaults seeds the registry before any file is applied.
	Defaults pricing.PromoTable

	// FilePaths lists promo files to load. Later files override earlier ones.
	FilePaths []string
}

// DefaultRegistryConfig returns the built-in promo table with no extra files.
func DefaultRegistryConfig() *RegistryConfig {
	return &RegistryConfig{
		Defaults: pricing.DefaultPromos,
	}
}

// Registry merges the default promo table with loaded promo files and
// answers discount-rate lookups. It is read-only after construction.
type Registry struct {
	rates  map[string]decimal.Decimal
	logger zerolog.Logger
}

// NewRegistry loads every configured promo file concurrently and merges them.
// Any file that fails to load fails construction.
func NewRegistry(ctx context.Context, cfg *RegistryConfig, loader Loader, logger zerolog.Logger) (*Registry, error) {
	if cfg == nil {
		cfg = DefaultRegistryConfig()
	}

	logger = logger.With().Str("component", "promo-registry").Logger()
	logger.Info().
		Int("default_count", len(cfg.Defaults)).
		Int("file_count", len(cfg.FilePaths)).
		Msg("initialising promo registry")

	r := &Registry{
		rates:  make(map[string]decimal.Decimal, len(cfg.Defaults)),
		logger: logger,
	}
	for code, rate := range cfg.Defaults {
		r.rates[pricing.NormaliseCode(code)] = rate
	}

	type loadResult struct {
		set Set
		err error
	}

	results := make([]loadResult, len(cfg.FilePaths))
	var wg sync.WaitGroup

	for i, path := range cfg.FilePaths {
		wg.Add(1)
		go func(index int, p string) {
			defer wg.Done()
			set, err := loader.Load(ctx, p)
			results[index] = loadResult{set: set, err: err}
		}(i, path)
	}
	wg.Wait()

	// merge in configuration order so later files win
	for i, result := range results {
		if result.err != nil {
			logger.Error().
				Err(result.err).
				Str("file", cfg.FilePaths[i]).
				Msg("failed to load promo file")
			return nil, fmt.Errorf("failed to load promo file %s: %w", cfg.FilePaths[i], result.err)
		}
		for _, code := range result.set.Codes() {
			rate, _ := result.set.Rate(code)
			r.rates[code] = rate
		}
		logger.Info().
			Str("file", cfg.FilePaths[i]).
			Int("size", result.set.Size()).
			Msg("promo file merged")
	}

	logger.Info().Int("total_codes", len(r.rates)).Msg("promo registry initialised")

	return r, nil
}

// DiscountRate implements pricing.RateLookup. Unknown codes return zero.
func (r *Registry) DiscountRate(code string) decimal.Decimal {
	normalised := pricing.NormaliseCode(code)
	rate, ok := r.rates[normalised]
	if !ok {
		r.logger.Debug().Str("promo_code", normalised).Msg("unknown promo code")
		return decimal.Zero
	}
	return rate
}

// Size returns the number of known codes.
func (r *Registry) Size() int {
	return len(r.rates)
}
