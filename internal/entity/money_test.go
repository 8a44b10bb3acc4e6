package entity

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want Amount
	}{
		{"₹1,234.50", 123450},
		{"5000", 500000},
		{"$ 99.9", 9990},
		{"", 0},
		{"abc", 0},
		{".", 0},
		{"1.2.3", 120},
		{"-50.00", -5000},
		{"R$ 10,00", 100000}, // vírgula é descartada, não é decimal
		{"12-34", 123400},
		{"abc-5", -500}, // "-" antes do primeiro dígito é sinal
		{"-$5", -500},
		{"99999999999999999999", 0},
		{"₹100000000000000000.00", 0},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			assert.Equal(t, c.want, ParseAmount(c.in))
		})
	}
}

func TestNewAmountOutOfRange(t *testing.T) {
	assert.Equal(t, Amount(0), NewAmount(1e17))
	assert.Equal(t, Amount(0), NewAmount(-1e17))
	assert.Equal(t, Amount(0), NewAmount(math.MaxFloat64))
	assert.Equal(t, Amount(100000000000000000), NewAmount(1e15))

	var a Amount
	require.NoError(t, json.Unmarshal([]byte(`1e20`), &a))
	assert.Equal(t, Amount(0), a)
}

func TestAmountRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1234.5, 1000000, -50} {
		a := NewAmount(v)
		assert.Equal(t, a, ParseAmount(FormatAmount(a)), "value %v", v)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1,234.50", FormatAmount(NewAmount(1234.5)))
	assert.Equal(t, "1,000,000.00", FormatAmount(NewAmount(1000000)))
	assert.Equal(t, "₹1,234.50", FormatWithSymbol(NewAmount(1234.5), "₹"))
	assert.Equal(t, "-$50.00", FormatWithSymbol(NewAmount(-50), "$"))
}

func TestAmountJSON(t *testing.T) {
	var payload struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
	}

	err := json.Unmarshal([]byte(`{"a": 1234.5, "b": "₹2,000", "c": null}`), &payload)
	require.NoError(t, err)

	assert.Equal(t, Amount(123450), payload.A)
	assert.Equal(t, Amount(200000), payload.B)
	assert.Equal(t, Amount(0), payload.C)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1234.50, "b": 2000.00, "c": 0.00}`, string(out))

	neg, _ := json.Marshal(Amount(-5))
	assert.Equal(t, "-0.05", string(neg))
}

func TestAmountScan(t *testing.T) {
	var a Amount
	require.NoError(t, a.Scan(int64(500000)))
	assert.Equal(t, Amount(500000), a)

	require.NoError(t, a.Scan([]byte("42")))
	assert.Equal(t, Amount(42), a)

	require.NoError(t, a.Scan(nil))
	assert.Equal(t, Amount(0), a)

	assert.Error(t, a.Scan(true))
}
