package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalogue entry as supplied by the catalog.
type Product struct {
	ID            string           `json:"id" db:"id"`
	Name          string           `json:"name" db:"name"`
	Description   string           `json:"description" db:"description"`
	Price         decimal.Decimal  `json:"price" db:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty" db:"original_price"`
	Discount      *int             `json:"discount,omitempty" db:"discount"`
	Images        []string         `json:"images" db:"images"`
	Category      string           `json:"category" db:"category"`
	Brand         string           `json:"brand" db:"brand"`
	Rating        float64          `json:"rating" db:"rating"`
	Reviews       int              `json:"reviews" db:"reviews"`
	InStock       bool             `json:"inStock" db:"in_stock"`
	IsNew         bool             `json:"isNew" db:"is_new"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
}

// PrimaryImage returns the first image reference, or "" when the product has none.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
