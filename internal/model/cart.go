package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one product's presence in the cart. Name, price and image are
// snapshots taken when the product was first added.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageRef  string          `json:"imageRef"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"addedAt"`
}

// LineTotal returns unit price times quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PriceBreakdown holds the totals derived from a cart and an optional promo code.
type PriceBreakdown struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	PromoCode      string          `json:"promoCode,omitempty"`
	DiscountRate   decimal.Decimal `json:"discountRate"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	ShippingCost   decimal.Decimal `json:"shippingCost"`
	FreeShipping   bool            `json:"freeShipping"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	Total          decimal.Decimal `json:"total"`
}
