package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shopstream/internal/cart"
	"shopstream/internal/checkout"
	"shopstream/internal/model"
	"shopstream/internal/notify"
	"shopstream/internal/pricing"
	"shopstream/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	shippingBody = `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","phone":"555-0100",` +
		`"address":"12 Analytical Way","city":"London","state":"LN","zipCode":"10001"}`
	paymentBody = `{"cardNumber":"4111111111111111","expiryMonth":"12","expiryYear":"2030","cvv":"123","cardName":"Ada Lovelace"}`
)

type checkoutFixture struct {
	handler *CheckoutHandler
	cart    *cart.Store
	orders  *MockOrderService
	wizard  *checkout.Wizard
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	store, err := cart.Open(context.Background(), storage.NewMemoryStorage(), nil, zerolog.Nop())
	require.NoError(t, err)

	orders := new(MockOrderService)
	wizard := checkout.NewWizard(store, orders, pricing.DefaultPromos, notify.Nop(), zerolog.Nop())

	return &checkoutFixture{
		handler: NewCheckoutHandler(wizard, zerolog.Nop()),
		cart:    store,
		orders:  orders,
		wizard:  wizard,
	}
}

func (f *checkoutFixture) do(t *testing.T, fn http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/api/checkout", nil)
	} else {
		req = httptest.NewRequest(method, "/api/checkout", strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	fn(w, req)
	return w
}

func decodeCheckout(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestCheckoutHandler_Get(t *testing.T) {
	f := newCheckoutFixture(t)

	w := f.do(t, f.handler.Get, http.MethodGet, "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeCheckout(t, w)
	assert.Equal(t, "shipping", resp["step"])
	assert.Equal(t, false, resp["submitting"])
	shipping := resp["shipping"].(map[string]any)
	assert.Equal(t, checkout.DefaultCountry, shipping["country"])
	assert.Contains(t, resp, "summary")
}

func TestCheckoutHandler_Next_ValidationFails(t *testing.T) {
	f := newCheckoutFixture(t)

	w := f.do(t, f.handler.Next, http.MethodPost, "")

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, model.ErrCodeValidationFailed, resp.Error)
	assert.Equal(t, "First name is required", resp.Fields[checkout.FieldFirstName])
	assert.Equal(t, checkout.StepShipping, f.wizard.Step())
}

func TestCheckoutHandler_UnknownField(t *testing.T) {
	f := newCheckoutFixture(t)

	w := f.do(t, f.handler.UpdateShipping, http.MethodPatch, `{"favouriteColour":"blue"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutHandler_UpdateFieldValueTypes(t *testing.T) {
	tests := []struct {
		name           string
		payment        bool
		body           string
		expectedStatus int
		check          func(t *testing.T, state checkout.State)
	}{
		{
			name:           "Boolean false",
			payment:        true,
			body:           `{"sameAsShipping":false}`,
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, state checkout.State) {
				assert.False(t, state.Payment.SameAsShipping)
			},
		},
		{
			name:           "String false",
			payment:        true,
			body:           `{"sameAsShipping":"false"}`,
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, state checkout.State) {
				assert.False(t, state.Payment.SameAsShipping)
			},
		},
		{
			name:           "Numeric zip code",
			body:           `{"zipCode":10001}`,
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, state checkout.State) {
				assert.Equal(t, "10001", state.Shipping.ZipCode)
			},
		},
		{
			name:           "Null value",
			body:           `{"city":null}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Object value",
			payment:        true,
			body:           `{"sameAsShipping":{"value":false}}`,
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, state checkout.State) {
				assert.True(t, state.Payment.SameAsShipping)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(t)
			fn := f.handler.UpdateShipping
			if tt.payment {
				fn = f.handler.UpdatePayment
			}

			w := f.do(t, fn, http.MethodPatch, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.check != nil {
				tt.check(t, f.wizard.State())
			}
		})
	}
}

func TestCheckoutHandler_FullFlow(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	require.NoError(t, f.cart.AddItem(ctx, model.Product{ID: "P010", Name: "Mug", Price: decimal.RequireFromString("20.00")}))

	require.Equal(t, http.StatusOK, f.do(t, f.handler.UpdateShipping, http.MethodPatch, shippingBody).Code)
	require.Equal(t, http.StatusOK, f.do(t, f.handler.Next, http.MethodPost, "").Code)
	require.Equal(t, http.StatusOK, f.do(t, f.handler.UpdatePayment, http.MethodPatch, paymentBody).Code)

	w := f.do(t, f.handler.Next, http.MethodPost, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "review", decodeCheckout(t, w)["step"])

	w = f.do(t, f.handler.ApplyPromo, http.MethodPost, `{"code":"welcome20"}`)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeCheckout(t, w)["summary"].(map[string]any)
	assert.Equal(t, "27.27", summary["total"])

	placed := &model.Order{ID: uuid.New(), Status: model.StatusConfirmed, Total: decimal.RequireFromString("27.27")}
	f.orders.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req *model.OrderRequest) bool {
		return len(req.Items) == 1 && req.Pricing.PromoCode == "WELCOME20" && req.Total.Equal(decimal.RequireFromString("27.27"))
	})).Return(placed, nil)

	w = f.do(t, f.handler.Submit, http.MethodPost, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, placed.ID.String(), decodeCheckout(t, w)["id"])
	assert.Equal(t, 0, f.cart.TotalItemCount())

	w = f.do(t, f.handler.Get, http.MethodGet, "")
	resp := decodeCheckout(t, w)
	assert.Equal(t, "confirmed", resp["step"])
	assert.Equal(t, placed.ID.String(), resp["orderId"])

	w = f.do(t, f.handler.Reset, http.MethodPost, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "shipping", decodeCheckout(t, w)["step"])

	f.orders.AssertExpectations(t)
}

func TestCheckoutHandler_Back(t *testing.T) {
	f := newCheckoutFixture(t)

	require.Equal(t, http.StatusOK, f.do(t, f.handler.UpdateShipping, http.MethodPatch, shippingBody).Code)
	require.Equal(t, http.StatusOK, f.do(t, f.handler.Next, http.MethodPost, "").Code)

	w := f.do(t, f.handler.Back, http.MethodPost, "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeCheckout(t, w)
	assert.Equal(t, "shipping", resp["step"])
	assert.Equal(t, "Ada", resp["shipping"].(map[string]any)["firstName"])
}

func TestCheckoutHandler_SubmitErrors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{name: "In flight", err: checkout.ErrSubmissionInFlight, expectedStatus: http.StatusConflict, expectedCode: model.ErrCodeCheckoutState},
		{name: "Not on review", err: checkout.ErrNotOnReview, expectedStatus: http.StatusConflict, expectedCode: model.ErrCodeCheckoutState},
		{name: "Empty cart", err: checkout.ErrEmptyCart, expectedStatus: http.StatusBadRequest, expectedCode: model.ErrCodeEmptyOrder},
		{name: "Validation", err: fmt.Errorf("failed to place order: %w", &model.ValidationError{Fields: map[string]string{"cvv": "CVV is required"}}), expectedStatus: http.StatusUnprocessableEntity, expectedCode: model.ErrCodeValidationFailed},
		{name: "Collaborator failure", err: fmt.Errorf("failed to place order: %w", errors.New("db down")), expectedStatus: http.StatusInternalServerError, expectedCode: model.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wizard := new(MockWizard)
			wizard.On("Submit", mock.Anything).Return(nil, tt.err)
			h := NewCheckoutHandler(wizard, zerolog.Nop())

			w := httptest.NewRecorder()
			h.Submit(w, httptest.NewRequest(http.MethodPost, "/api/checkout/submit", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var resp model.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.expectedCode, resp.Error)
			wizard.AssertExpectations(t)
		})
	}
}

func TestCheckoutHandler_UpdateWhileSubmitting(t *testing.T) {
	wizard := new(MockWizard)
	wizard.On("SetPaymentField", "cvv", "999").Return(checkout.ErrSubmissionInFlight)
	h := NewCheckoutHandler(wizard, zerolog.Nop())

	w := httptest.NewRecorder()
	h.UpdatePayment(w, httptest.NewRequest(http.MethodPatch, "/api/checkout/payment", strings.NewReader(`{"cvv":"999"}`)))

	assert.Equal(t, http.StatusConflict, w.Code)
	wizard.AssertNotCalled(t, "State")
}
