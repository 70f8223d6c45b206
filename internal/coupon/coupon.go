// Package coupon loads promo-code tables and resolves codes to discount rates.
package coupon

import (
	"context"

	"github.com/shopspring/decimal"
)

// Set is a read-only table of promo codes and their discount rates.
type Set interface {
	// Rate returns the discount rate for an upper-case code.
	Rate(code string) (decimal.Decimal, bool)

	// Size returns the number of codes in the set.
	Size() int

	// Codes returns every code in the set.
	Codes() []string
}

// Loader defines the interface for loading promo files.
type Loader interface {
	// Load reads a gzipped promo file and returns its Set.
	Load(ctx context.Context, path string) (Set, error)
}
