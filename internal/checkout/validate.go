package checkout

import (
	"regexp"
	"strings"
	"unicode"

	"shopstream/internal/model"
)

// Shipping field names, matching the JSON keys of model.ShippingInfo.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldAddress   = "address"
	FieldCity      = "city"
	FieldState     = "state"
	FieldZipCode   = "zipCode"
	FieldCountry   = "country"
)

// Payment field names, matching the JSON keys of model.PaymentInfo.
const (
	FieldCardNumber     = "cardNumber"
	FieldExpiryMonth    = "expiryMonth"
	FieldExpiryYear     = "expiryYear"
	FieldCVV            = "cvv"
	FieldCardName       = "cardName"
	FieldBillingAddress = "billingAddress"
	FieldBillingCity    = "billingCity"
	FieldBillingState   = "billingState"
	FieldBillingZipCode = "billingZipCode"
	FieldSameAsShipping = "sameAsShipping"
)

// DefaultCountry pre-fills the shipping country.
const DefaultCountry = "United States"

// minCardDigits is the shortest card number accepted after stripping spaces.
const minCardDigits = 13

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldErrors maps a field name to its user-facing message. An empty map
// means the step is valid.
type FieldErrors map[string]string

// OK reports whether no field failed validation.
func (e FieldErrors) OK() bool {
	return len(e) == 0
}

type requiredField struct {
	name    string
	value   string
	message string
}

func checkRequired(errs FieldErrors, fields []requiredField) {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			errs[f.name] = f.message
		}
	}
}

// ValidateShipping checks every shipping field in one pass.
func ValidateShipping(info model.ShippingInfo) FieldErrors {
	errs := FieldErrors{}
	checkRequired(errs, []requiredField{
		{FieldFirstName, info.FirstName, "First name is required"},
		{FieldLastName, info.LastName, "Last name is required"},
		{FieldEmail, info.Email, "Email is required"},
		{FieldPhone, info.Phone, "Phone number is required"},
		{FieldAddress, info.Address, "Address is required"},
		{FieldCity, info.City, "City is required"},
		{FieldState, info.State, "State is required"},
		{FieldZipCode, info.ZipCode, "ZIP code is required"},
	})

	email := strings.TrimSpace(info.Email)
	if email != "" && !emailPattern.MatchString(email) {
		errs[FieldEmail] = "Please enter a valid email address"
	}

	return errs
}

// ValidatePayment checks every payment field in one pass. Billing fields are
// optional.
func ValidatePayment(info model.PaymentInfo) FieldErrors {
	errs := FieldErrors{}
	checkRequired(errs, []requiredField{
		{FieldCardNumber, info.CardNumber, "Card number is required"},
		{FieldExpiryMonth, info.ExpiryMonth, "Expiry month is required"},
		{FieldExpiryYear, info.ExpiryYear, "Expiry year is required"},
		{FieldCVV, info.CVV, "CVV is required"},
		{FieldCardName, info.CardName, "Cardholder name is required"},
	})

	if strings.TrimSpace(info.CardNumber) != "" && len(stripSpaces(info.CardNumber)) < minCardDigits {
		errs[FieldCardNumber] = "Please enter a valid card number"
	}

	return errs
}

// FormatCardNumber removes whitespace and regroups the remaining characters
// in blocks of four separated by single spaces.
func FormatCardNumber(raw string) string {
	stripped := stripSpaces(raw)

	var b strings.Builder
	for i, r := range []rune(stripped) {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
