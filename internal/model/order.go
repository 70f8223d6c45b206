package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state reported by the order store.
type OrderStatus string

const (
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusUnknown    OrderStatus = "unknown"
)

// estimatedDeliveryDays is added to the order date for the delivery estimate.
const estimatedDeliveryDays = 7

// ParseOrderStatus maps a stored status string onto a known status.
// Unrecognised values become StatusUnknown.
func ParseOrderStatus(s string) OrderStatus {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusConfirmed:
		return StatusConfirmed
	case StatusProcessing:
		return StatusProcessing
	case StatusShipped:
		return StatusShipped
	case StatusDelivered:
		return StatusDelivered
	default:
		return StatusUnknown
	}
}

// Variant returns the display variant used to badge the status.
func (s OrderStatus) Variant() string {
	switch s {
	case StatusConfirmed, StatusDelivered:
		return "success"
	case StatusProcessing:
		return "warning"
	case StatusShipped:
		return "primary"
	default:
		return "secondary"
	}
}

// ShippingInfo is the address collected in the first checkout step.
type ShippingInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

// PaymentInfo is the card data collected in the second checkout step.
// It lives only for the duration of a checkout session.
type PaymentInfo struct {
	CardNumber     string `json:"cardNumber"`
	ExpiryMonth    string `json:"expiryMonth"`
	ExpiryYear     string `json:"expiryYear"`
	CVV            string `json:"cvv"`
	CardName       string `json:"cardName"`
	BillingAddress string `json:"billingAddress"`
	BillingCity    string `json:"billingCity"`
	BillingState   string `json:"billingState"`
	BillingZipCode string `json:"billingZipCode"`
	SameAsShipping bool   `json:"sameAsShipping"`
}

// MaskedPayment is the payment data retained on a placed order.
type MaskedPayment struct {
	CardNumber  string `json:"cardNumber"`
	CardName    string `json:"cardName"`
	ExpiryMonth string `json:"expiryMonth,omitempty"`
	ExpiryYear  string `json:"expiryYear,omitempty"`
}

// Mask drops the CVV and all but the last four card digits.
func (p PaymentInfo) Mask() MaskedPayment {
	digits := make([]rune, 0, len(p.CardNumber))
	for _, r := range p.CardNumber {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	last4 := string(digits)
	if len(digits) > 4 {
		last4 = string(digits[len(digits)-4:])
	}
	return MaskedPayment{
		CardNumber:  "**** **** **** " + last4,
		CardName:    strings.TrimSpace(p.CardName),
		ExpiryMonth: p.ExpiryMonth,
		ExpiryYear:  p.ExpiryYear,
	}
}

// Order represents a placed customer order.
type Order struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Items        []OrderItem     `json:"items"`
	Shipping     ShippingInfo    `json:"shipping" db:"shipping"`
	Payment      MaskedPayment   `json:"payment" db:"payment"`
	PromoCode    *string         `json:"promoCode,omitempty" db:"promo_code"`
	Subtotal     decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount     decimal.Decimal `json:"discount" db:"discount"`
	ShippingCost decimal.Decimal `json:"shippingCost" db:"shipping_cost"`
	Tax          decimal.Decimal `json:"tax" db:"tax"`
	Total        decimal.Decimal `json:"total" db:"total"`
	Status       OrderStatus     `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// EstimatedDelivery returns the date the order is expected to arrive.
func (o *Order) EstimatedDelivery() time.Time {
	return o.CreatedAt.AddDate(0, 0, estimatedDeliveryDays)
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	Position  int             `json:"-" db:"position"`
	ProductID string          `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	UnitPrice decimal.Decimal `json:"price" db:"unit_price"`
	ImageRef  string          `json:"image" db:"image_ref"`
	Quantity  int             `json:"quantity" db:"quantity"`
}

// OrderRequest is the payload handed to the order-creation collaborator.
type OrderRequest struct {
	Items    []CartLine      `json:"items"`
	Shipping ShippingInfo    `json:"shipping"`
	Payment  PaymentInfo     `json:"payment"`
	Pricing  PriceBreakdown  `json:"pricing"`
	Total    decimal.Decimal `json:"total"`
}

// OrderResponse is the API view of an order.
type OrderResponse struct {
	Order
	StatusVariant     string    `json:"statusVariant"`
	EstimatedDelivery time.Time `json:"estimatedDelivery"`
}

// NewOrderResponse builds the API view of an order.
func NewOrderResponse(o *Order) *OrderResponse {
	return &OrderResponse{
		Order:             *o,
		StatusVariant:     o.Status.Variant(),
		EstimatedDelivery: o.EstimatedDelivery(),
	}
}
