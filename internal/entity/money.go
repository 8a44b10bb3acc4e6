package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Value Object: Amount
// Valor monetário em centavos (fixed-point). Nunca guardamos string formatada.
type Amount int64

var amountPrinter = message.NewPrinter(language.English)

// NewAmount converte um float (ex: 1234.5) para centavos.
func NewAmount(v float64) Amount {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	cents := math.Round(v * 100)
	// fora do int64 vira 0
	if math.Abs(cents) >= math.MaxInt64 {
		return 0
	}
	return Amount(cents)
}

// ParseAmount aceita valores como "₹1,234.50", "$ 99" ou "5000".
// Tudo que não é dígito ou ponto é descartado; um "-" antes do primeiro dígito
// mantém o sinal. Valores ilegíveis viram 0.
func ParseAmount(s string) Amount {
	var b strings.Builder
	negative := false
	seenDigit := false
	seenDot := false

	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			b.WriteRune(r)
		case r == '.':
			if seenDot {
				// prefixo numérico mais longo, igual ao parseFloat do front antigo
				return finishParse(b.String(), negative)
			}
			seenDot = true
			b.WriteRune(r)
		case r == '-' && !seenDigit && !seenDot:
			negative = true
		}
	}

	return finishParse(b.String(), negative)
}

func finishParse(raw string, negative bool) Amount {
	if raw == "" || raw == "." {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	if negative {
		v = -v
	}
	return NewAmount(v)
}

// FormatAmount devolve o valor com separador de milhar e 2 casas ("1,234.50").
func FormatAmount(a Amount) string {
	return amountPrinter.Sprintf("%.2f", a.Float64())
}

// FormatWithSymbol prefixa o símbolo da moeda ("₹1,234.50").
func FormatWithSymbol(a Amount, symbol string) string {
	if a < 0 {
		return "-" + symbol + FormatAmount(-a)
	}
	return symbol + FormatAmount(a)
}

func (a Amount) Float64() float64 {
	return float64(a) / 100
}

func (a Amount) Cents() int64 {
	return int64(a)
}

func (a Amount) String() string {
	return FormatAmount(a)
}

// MarshalJSON escreve o valor como número JSON com 2 casas.
func (a Amount) MarshalJSON() ([]byte, error) {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return []byte(fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)), nil
}

// UnmarshalJSON aceita número ou string formatada.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = 0
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*a = NewAmount(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("amount must be a number or string: %w", err)
	}
	*a = ParseAmount(s)
	return nil
}

func (a Amount) Value() (driver.Value, error) {
	return int64(a), nil
}

func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = 0
	case int64:
		*a = Amount(v)
	case float64:
		*a = Amount(math.Round(v))
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("amount scan: %w", err)
		}
		*a = Amount(n)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("amount scan: %w", err)
		}
		*a = Amount(n)
	default:
		return fmt.Errorf("amount scan: unsupported type %T", src)
	}
	return nil
}
