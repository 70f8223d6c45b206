package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"shopstream/internal/checkout"
	"shopstream/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Wizard is the checkout wizard as seen by the HTTP layer.
type Wizard interface {
	State() checkout.State
	SetShippingField(field, value string) error
	SetPaymentField(field, value string) error
	ApplyPromo(code string) decimal.Decimal
	Next() (checkout.FieldErrors, error)
	Back() error
	Summary() model.PriceBreakdown
	Submit(ctx context.Context) (*model.Order, error)
	Order() *model.Order
	Reset() error
}

// CheckoutResponse is the wizard state plus the current price breakdown.
type CheckoutResponse struct {
	checkout.State
	Summary model.PriceBreakdown `json:"summary"`
	Order   *model.OrderResponse `json:"order,omitempty"`
}

type promoRequest struct {
	Code string `json:"code"`
}

// CheckoutHandler exposes the checkout wizard over HTTP.
type CheckoutHandler struct {
	wizard Wizard
	logger zerolog.Logger
}

// NewCheckoutHandler creates a checkout handler.
func NewCheckoutHandler(wizard Wizard, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		wizard: wizard,
		logger: logger.With().Str("handler", "checkout").Logger(),
	}
}

// Get handles GET /api/checkout.
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.response(), h.logger)
}

// UpdateShipping handles PATCH /api/checkout/shipping with a {field: value} body.
func (h *CheckoutHandler) UpdateShipping(w http.ResponseWriter, r *http.Request) {
	h.updateFields(w, r, h.wizard.SetShippingField)
}

// UpdatePayment handles PATCH /api/checkout/payment with a {field: value} body.
func (h *CheckoutHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	h.updateFields(w, r, h.wizard.SetPaymentField)
}

func (h *CheckoutHandler) updateFields(w http.ResponseWriter, r *http.Request, set func(field, value string) error) {
	var fields map[string]json.RawMessage
	if !decodeJSON(w, r, &fields, h.logger) {
		return
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make(map[string]string, len(fields))
	for _, name := range names {
		value, err := fieldValue(fields[name])
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, fmt.Sprintf("%s: %v", name, err), h.logger)
			return
		}
		values[name] = value
	}

	for _, name := range names {
		if err := set(name, values[name]); err != nil {
			writeServiceError(w, err, "failed to update checkout", h.logger)
			return
		}
	}

	writeJSON(w, http.StatusOK, h.response(), h.logger)
}

// fieldValue accepts a JSON string, boolean or number as a form value.
func fieldValue(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}

	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case json.Number:
		return t.String(), nil
	default:
		return "", fmt.Errorf("value must be a string, boolean or number")
	}
}

// ApplyPromo handles POST /api/checkout/promo. Unknown codes are not an error;
// the returned summary simply carries no discount.
func (h *CheckoutHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	var req promoRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	rate := h.wizard.ApplyPromo(req.Code)
	h.logger.Debug().Str("promo_code", req.Code).Str("rate", rate.String()).Msg("promo applied")

	writeJSON(w, http.StatusOK, h.response(), h.logger)
}

// Next handles POST /api/checkout/next. Validation failures return 422 with
// the field messages and leave the step unchanged.
func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	errs, err := h.wizard.Next()
	if err != nil {
		writeServiceError(w, err, "failed to advance checkout", h.logger)
		return
	}
	if !errs.OK() {
		writeFieldErrors(w, errs, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.response(), h.logger)
}

// Back handles POST /api/checkout/back.
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	if err := h.wizard.Back(); err != nil {
		writeServiceError(w, err, "failed to go back", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.response(), h.logger)
}

// Submit handles POST /api/checkout/submit.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	order, err := h.wizard.Submit(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to place order. Please try again.", h.logger)
		return
	}

	h.logger.Info().Str("order_id", order.ID.String()).Msg("checkout submitted")
	writeJSON(w, http.StatusCreated, model.NewOrderResponse(order), h.logger)
}

// Reset handles POST /api/checkout/reset.
func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.wizard.Reset(); err != nil {
		writeServiceError(w, err, "failed to reset checkout", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.response(), h.logger)
}

func (h *CheckoutHandler) response() CheckoutResponse {
	resp := CheckoutResponse{
		State:   h.wizard.State(),
		Summary: h.wizard.Summary(),
	}
	if order := h.wizard.Order(); order != nil {
		resp.Order = model.NewOrderResponse(order)
	}
	return resp
}
