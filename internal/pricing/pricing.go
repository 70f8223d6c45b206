// Package pricing computes cart totals: subtotal, promo discount, shipping and tax.
// Every function here is pure.
package pricing

import (
	"strings"

	"shopstream/internal/model"

	"github.com/shopspring/decimal"
)

var (
	// FreeShippingThreshold is the subtotal that must be exceeded for free shipping.
	FreeShippingThreshold = decimal.RequireFromString("50.00")

	// FlatShippingFee is charged when the subtotal does not exceed the threshold.
	FlatShippingFee = decimal.RequireFromString("9.99")

	// TaxRate applies to the discounted subtotal.
	TaxRate = decimal.RequireFromString("0.08")
)

// RateLookup resolves a promo code to a discount rate in [0,1].
// Unknown codes resolve to zero.
type RateLookup interface {
	DiscountRate(code string) decimal.Decimal
}

// PromoTable maps upper-case promo codes to discount rates.
type PromoTable map[string]decimal.Decimal

// DefaultPromos is the built-in promo table.
var DefaultPromos = PromoTable{
	"SAVE10":    decimal.RequireFromString("0.10"),
	"WELCOME20": decimal.RequireFromString("0.20"),
	"FIRST15":   decimal.RequireFromString("0.15"),
}

// DiscountRate returns the rate for code, matching case-insensitively.
func (t PromoTable) DiscountRate(code string) decimal.Decimal {
	if rate, ok := t[NormaliseCode(code)]; ok {
		return rate
	}
	return decimal.Zero
}

// NormaliseCode trims and upper-cases a user-entered promo code.
func NormaliseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Subtotal sums unit price times quantity over all lines.
func Subtotal(lines []model.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// Shipping returns the shipping cost for a subtotal. The threshold test uses
// the raw subtotal, before any promo discount.
func Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShippingFee
}

// Tax returns the tax owed on the discounted subtotal, rounded to cents.
func Tax(subtotal, discount decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(discount).Mul(TaxRate).Round(2)
}

// Calculate builds the full price breakdown for a subtotal and promo code.
func Calculate(subtotal decimal.Decimal, promos RateLookup, code string) model.PriceBreakdown {
	rate := decimal.Zero
	if promos != nil && strings.TrimSpace(code) != "" {
		rate = promos.DiscountRate(code)
	}

	discount := subtotal.Mul(rate).Round(2)
	shipping := Shipping(subtotal)
	tax := Tax(subtotal, discount)

	b := model.PriceBreakdown{
		Subtotal:       subtotal,
		DiscountRate:   rate,
		DiscountAmount: discount,
		ShippingCost:   shipping,
		FreeShipping:   shipping.IsZero(),
		TaxAmount:      tax,
		Total:          subtotal.Sub(discount).Add(shipping).Add(tax),
	}
	if rate.IsPositive() {
		b.PromoCode = NormaliseCode(code)
	}
	return b
}

// FormatPrice renders an amount as US dollars, e.g. $1,234.56.
func FormatPrice(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	s := amount.StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}
