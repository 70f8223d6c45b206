// Package checkout drives the three-step order wizard: shipping, payment and
// review, followed by a single hand-off to the order creator.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"shopstream/internal/model"
	"shopstream/internal/notify"
	"shopstream/internal/pricing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrNotOnReview        = errors.New("order can only be submitted from the review step")
	ErrSubmissionInFlight = errors.New("an order submission is already in progress")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrUnknownField       = errors.New("unknown checkout field")
)

const (
	msgOrderPlaced = "Order placed successfully!"
	msgOrderFailed = "Failed to place order. Please try again."
)

// CartSource is the view of the cart the wizard needs.
type CartSource interface {
	Lines() []model.CartLine
	RemoveOrdered(ctx context.Context, ordered []model.CartLine) error
}

// OrderCreator accepts a fully assembled order and persists it.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error)
}

// State is a point-in-time snapshot of the wizard.
type State struct {
	Step       Step               `json:"step"`
	Shipping   model.ShippingInfo `json:"shipping"`
	Payment    model.PaymentInfo  `json:"payment"`
	PromoCode  string             `json:"promoCode,omitempty"`
	Errors     FieldErrors        `json:"errors"`
	Submitting bool               `json:"submitting"`
	OrderID    string             `json:"orderId,omitempty"`
}

// Wizard holds one checkout session. It is safe for concurrent use; at most
// one submission is ever in flight.
type Wizard struct {
	mu         sync.Mutex
	step       Step
	shipping   model.ShippingInfo
	payment    model.PaymentInfo
	promoCode  string
	errs       FieldErrors
	submitting bool
	order      *model.Order

	cart     CartSource
	orders   OrderCreator
	promos   pricing.RateLookup
	notifier notify.Notifier
	logger   zerolog.Logger
}

// NewWizard starts a session on the shipping step.
func NewWizard(cart CartSource, orders OrderCreator, promos pricing.RateLookup, notifier notify.Notifier, logger zerolog.Logger) *Wizard {
	if notifier == nil {
		notifier = notify.Nop()
	}
	w := &Wizard{
		cart:     cart,
		orders:   orders,
		promos:   promos,
		notifier: notifier,
		logger:   logger.With().Str("component", "checkout").Logger(),
	}
	w.reset()
	return w
}

func (w *Wizard) reset() {
	w.step = StepShipping
	w.shipping = model.ShippingInfo{Country: DefaultCountry}
	w.payment = model.PaymentInfo{SameAsShipping: true}
	w.promoCode = ""
	w.errs = FieldErrors{}
	w.order = nil
}

// State returns a copy of the current session.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := State{
		Step:       w.step,
		Shipping:   w.shipping,
		Payment:    w.payment,
		PromoCode:  w.promoCode,
		Errors:     copyErrors(w.errs),
		Submitting: w.submitting,
	}
	if w.order != nil {
		s.OrderID = w.order.ID.String()
	}
	return s
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// SetShippingField updates one shipping field and clears its error.
func (w *Wizard) SetShippingField(field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return ErrSubmissionInFlight
	}

	s := &w.shipping
	switch field {
	case FieldFirstName:
		s.FirstName = value
	case FieldLastName:
		s.LastName = value
	case FieldEmail:
		s.Email = value
	case FieldPhone:
		s.Phone = value
	case FieldAddress:
		s.Address = value
	case FieldCity:
		s.City = value
	case FieldState:
		s.State = value
	case FieldZipCode:
		s.ZipCode = value
	case FieldCountry:
		s.Country = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	delete(w.errs, field)
	return nil
}

// SetPaymentField updates one payment field and clears its error. Card
// numbers are regrouped in blocks of four as they are set.
func (w *Wizard) SetPaymentField(field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return ErrSubmissionInFlight
	}

	p := &w.payment
	switch field {
	case FieldCardNumber:
		p.CardNumber = FormatCardNumber(value)
	case FieldExpiryMonth:
		p.ExpiryMonth = value
	case FieldExpiryYear:
		p.ExpiryYear = value
	case FieldCVV:
		p.CVV = value
	case FieldCardName:
		p.CardName = value
	case FieldBillingAddress:
		p.BillingAddress = value
	case FieldBillingCity:
		p.BillingCity = value
	case FieldBillingState:
		p.BillingState = value
	case FieldBillingZipCode:
		p.BillingZipCode = value
	case FieldSameAsShipping:
		same, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", field, err)
		}
		p.SameAsShipping = same
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	delete(w.errs, field)
	return nil
}

// Next validates the current step and advances when it is valid. The
// returned FieldErrors are empty on success.
func (w *Wizard) Next() (FieldErrors, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return nil, ErrSubmissionInFlight
	}

	var errs FieldErrors
	switch w.step {
	case StepShipping:
		errs = ValidateShipping(w.shipping)
	case StepPayment:
		errs = ValidatePayment(w.payment)
	default:
		errs = FieldErrors{}
	}

	from := w.step
	w.errs = errs
	w.step = Transition(from, errs)

	w.logger.Debug().
		Stringer("from", from).
		Stringer("to", w.step).
		Int("error_count", len(errs)).
		Msg("checkout step validated")

	return copyErrors(errs), nil
}

// Back returns to the previous step without clearing entered data.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return ErrSubmissionInFlight
	}
	w.step = Back(w.step)
	return nil
}

// ApplyPromo records code for the session and returns its discount rate.
// Unknown codes give a zero rate and clear any previously applied promo.
func (w *Wizard) ApplyPromo(code string) decimal.Decimal {
	rate := decimal.Zero
	if w.promos != nil {
		rate = w.promos.DiscountRate(code)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if rate.IsPositive() {
		w.promoCode = pricing.NormaliseCode(code)
	} else {
		w.promoCode = ""
	}
	return rate
}

// Summary prices the current cart with the session's promo code.
func (w *Wizard) Summary() model.PriceBreakdown {
	w.mu.Lock()
	code := w.promoCode
	w.mu.Unlock()

	return pricing.Calculate(pricing.Subtotal(w.cart.Lines()), w.promos, code)
}

// Submit hands the assembled order to the order creator. It is only valid on
// the review step. The creator call is not cancelled if ctx is.
func (w *Wizard) Submit(ctx context.Context) (*model.Order, error) {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if w.step != StepReview {
		w.mu.Unlock()
		return nil, ErrNotOnReview
	}

	lines := w.cart.Lines()
	if len(lines) == 0 {
		w.mu.Unlock()
		return nil, ErrEmptyCart
	}

	breakdown := pricing.Calculate(pricing.Subtotal(lines), w.promos, w.promoCode)
	req := &model.OrderRequest{
		Items:    lines,
		Shipping: w.shipping,
		Payment:  w.payment,
		Pricing:  breakdown,
		Total:    breakdown.Total,
	}
	w.submitting = true
	w.mu.Unlock()

	ctx = context.WithoutCancel(ctx)

	w.logger.Info().
		Int("line_count", len(lines)).
		Str("total", pricing.FormatPrice(breakdown.Total)).
		Msg("submitting order")

	order, err := w.orders.CreateOrder(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false

	if err != nil {
		w.logger.Error().Err(err).Msg("order submission failed")
		w.notifier.Error(msgOrderFailed)
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	if err := w.cart.RemoveOrdered(ctx, lines); err != nil {
		w.logger.Warn().Err(err).Msg("failed to remove ordered items from cart")
	}
	w.step = StepConfirmed
	w.order = order

	w.logger.Info().Str("order_id", order.ID.String()).Msg("order placed")
	w.notifier.Success(msgOrderPlaced)

	return order, nil
}

// Order returns the confirmed order, or nil before a successful submit.
func (w *Wizard) Order() *model.Order {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.order
}

// Reset discards the session and starts again on the shipping step.
func (w *Wizard) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return ErrSubmissionInFlight
	}
	w.reset()
	return nil
}

func copyErrors(errs FieldErrors) FieldErrors {
	out := make(FieldErrors, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}
