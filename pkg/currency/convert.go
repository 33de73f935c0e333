package currency

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Code is an ISO-ish currency code supported by the app.
type Code string

const (
	USD Code = "USD"
	IQD Code = "IQD"
	BTC Code = "BTC"
	EUR Code = "EUR"
)

// Codes lists every supported currency.
var Codes = []Code{USD, IQD, BTC, EUR}

// Valid reports whether c is a supported currency code.
func (c Code) Valid() bool {
	switch c {
	case USD, IQD, BTC, EUR:
		return true
	}
	return false
}

// Rates maps a currency code to its multiplicative rate from USD.
// Rates[USD] is always 1.
type Rates map[Code]decimal.Decimal

// MissingRateError is returned when a conversion references a currency
// that has no entry in the rate table.
type MissingRateError struct {
	Code Code
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("currency: no rate for %s", e.Code)
}

// Convert converts amount from one currency to another by pivoting
// through USD. A code absent from rates is an error, never a silent
// rate of 1 or 0.
func Convert(amount decimal.Decimal, from, to Code, rates Rates) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	usd := amount
	if from != USD {
		r, ok := rates[from]
		if !ok || r.IsZero() {
			return decimal.Zero, &MissingRateError{Code: from}
		}
		usd = amount.Div(r)
	}
	if to == USD {
		return usd, nil
	}
	r, ok := rates[to]
	if !ok {
		return decimal.Zero, &MissingRateError{Code: to}
	}
	return usd.Mul(r), nil
}

// DisplayPlaces returns the number of decimal places used when
// formatting an amount of the given currency. Presentation only.
func DisplayPlaces(c Code) int32 {
	if c == BTC {
		return 8
	}
	return 2
}

// Format rounds amount to the display precision of c and renders it
// with the currency code appended, e.g. "1200.50 IQD".
func Format(amount decimal.Decimal, c Code) string {
	return amount.StringFixed(DisplayPlaces(c)) + " " + string(c)
}
