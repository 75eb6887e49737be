package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const DefaultCurrency = "LKR"

var ErrInvalidAmount = errors.New("invalid amount")

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

// Of pairs an amount with its ISO currency code.
func Of(amount decimal.Decimal, code string) (Money, error) {
	unit, err := ParseCurrency(code)
	if err != nil {
		return Money{Amount: amount}, err
	}
	return Money{Amount: amount, Currency: unit}, nil
}

// String prints two decimals and the currency code; a Money without currency prints
// the amount alone.
func (m Money) String() string {
	if m.Currency == (currency.Unit{}) {
		return m.Amount.StringFixed(2)
	}
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency.String())
}

// ParseCurrency accepts an ISO 4217 code; empty falls back to DefaultCurrency.
func ParseCurrency(code string) (currency.Unit, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		code = DefaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}
	return unit, nil
}

// AmountFrom reads an amount that arrived as a JSON number or numeric string.
// The bool result is false when v carries no amount at all.
func AmountFrom(v any) (decimal.Decimal, bool, error) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, false, nil
	case float64:
		return decimal.NewFromFloat(val), true, nil
	case int:
		return decimal.NewFromInt(int64(val)), true, nil
	case int64:
		return decimal.NewFromInt(val), true, nil
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Zero, true, fmt.Errorf("%w: %s", ErrInvalidAmount, val)
		}
		return d, true, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return decimal.Zero, false, nil
		}
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return decimal.Zero, true, fmt.Errorf("%w: %q", ErrInvalidAmount, val)
		}
		return d, true, nil
	case decimal.Decimal:
		return val, true, nil
	default:
		return decimal.Zero, true, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, v)
	}
}
