package coupon

import (
	"sort"

	"shopstream/internal/pricing"

	"github.com/shopspring/decimal"
)

// mapSet implements Set using a map for O(1) lookups.
type mapSet struct {
	rates map[string]decimal.Decimal
}

// NewMapSet creates a new, empty map-based promo set.
func NewMapSet(capacity int) Set {
	return newMapSet(capacity)
}

func newMapSet(capacity int) *mapSet {
	return &mapSet{
		rates: make(map[string]decimal.Decimal, capacity),
	}
}

// NewSetFromTable copies a pricing.PromoTable into a Set.
func NewSetFromTable(table pricing.PromoTable) Set {
	s := newMapSet(len(table))
	for code, rate := range table {
		s.Add(code, rate)
	}
	return s
}

func (s *mapSet) Rate(code string) (decimal.Decimal, bool) {
	rate, ok := s.rates[code]
	return rate, ok
}

func (s *mapSet) Size() int {
	return len(s.rates)
}

func (s *mapSet) Codes() []string {
	codes := make([]string, 0, len(s.rates))
	for code := range s.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Add stores code under its normalised form.
func (s *mapSet) Add(code string, rate decimal.Decimal) {
	s.rates[pricing.NormaliseCode(code)] = rate
}
