package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in the account currency. The backend stores it as a
// BigDecimal, so it travels as a bare JSON number.
type Money struct {
	decimal.Decimal
}

var ErrInvalidAmount = errors.New("invalid amount")

func NewMoney(units int64) Money {
	return Money{Decimal: decimal.NewFromInt(units)}
}

// MoneyFromString is ParseAmount for literals known to be valid; it panics otherwise.
func MoneyFromString(s string) Money {
	m, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseAmount parses user input such as "1500", "1,500.50" or "₹ 20".
// An empty input is an error; callers decide whether that means "missing".
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Money{Decimal: d}, nil
}

func (m Money) Positive() bool { return m.Decimal.IsPositive() }

func (m Money) Add(o Money) Money { return Money{Decimal: m.Decimal.Add(o.Decimal)} }

func (m Money) Sub(o Money) Money { return Money{Decimal: m.Decimal.Sub(o.Decimal)} }

func (m Money) Equal(o Money) bool { return m.Decimal.Equal(o.Decimal) }

// Format renders the amount with two decimals and the given currency symbol.
func (m Money) Format(symbol string) string {
	s := m.Decimal.StringFixed(2)
	if strings.HasPrefix(s, "-") {
		return "-" + symbol + s[1:]
	}
	return symbol + s
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Money{}
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, string(b))
	}
	m.Decimal = d
	return nil
}

// Sum adds the totals of every transaction.
func Sum[T Transaction](txs []T) Money {
	total := Money{}
	for _, tx := range txs {
		total = total.Add(tx.Total())
	}
	return total
}
