package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountFrom(t *testing.T) {
	tests := []struct {
		in      any
		want    string
		present bool
		wantErr bool
	}{
		{in: nil},
		{in: "  "},
		{in: json.Number("12.50"), want: "12.5", present: true},
		{in: "12.50", want: "12.5", present: true},
		{in: 12.5, want: "12.5", present: true},
		{in: int64(3), want: "3", present: true},
		{in: 3, want: "3", present: true},
		{in: decimal.RequireFromString("1.10"), want: "1.1", present: true},
		{in: "abc", present: true, wantErr: true},
		{in: json.Number("1e"), present: true, wantErr: true},
		{in: true, present: true, wantErr: true},
	}
	for _, tt := range tests {
		got, present, err := AmountFrom(tt.in)
		assert.Equal(t, tt.present, present, "%v", tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidAmount, "%v", tt.in)
			continue
		}
		require.NoError(t, err, "%v", tt.in)
		if tt.present {
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%v: got %s", tt.in, got)
		}
	}
}

func TestParseCurrency(t *testing.T) {
	u, err := ParseCurrency("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, u.String())

	u, err = ParseCurrency(" usd ")
	require.NoError(t, err)
	assert.Equal(t, "USD", u.String())

	_, err = ParseCurrency("ZZZ")
	assert.Error(t, err)
	_, err = ParseCurrency("EURO")
	assert.Error(t, err)
}

func TestMoneyString(t *testing.T) {
	u, err := ParseCurrency("LKR")
	require.NoError(t, err)
	assert.Equal(t, "1500.00 LKR", Money{Amount: decimal.NewFromInt(1500), Currency: u}.String())
}

func TestOf(t *testing.T) {
	m, err := Of(decimal.RequireFromString("15.5"), "usd")
	require.NoError(t, err)
	assert.Equal(t, "15.50 USD", m.String())

	m, err = Of(decimal.RequireFromString("15.5"), "???")
	assert.Error(t, err)
	assert.Equal(t, "15.50", m.String())
}
