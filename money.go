package finvault

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an exact amount in a currency. The zero value has no currency and
// adopts the currency of the first amount it is added to.
type Money struct {
	value decimal.Decimal // major units
	cur   string
}

// M returns value in currency.
func M[T number](value T, currency string) Money {
	return Money{value: toDecimal(value), cur: currency}
}

// ValidateCurrency checks that code is a known ISO 4217 currency.
func ValidateCurrency(code string) error {
	if code == "" {
		return fmt.Errorf("currency is required")
	}
	if money.GetCurrency(code) == nil {
		return fmt.Errorf("unknown currency %q", code)
	}
	return nil
}

func (m Money) Currency() string         { return m.cur }
func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsPositive() bool         { return m.value.IsPositive() }
func (m Money) IsNegative() bool         { return m.value.IsNegative() }
func (m Money) Neg() Money               { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Mul(q Quantity) Money     { return Money{value: m.value.Mul(q.value), cur: m.cur} }
func (m Money) Div(q Quantity) Money     { return Money{value: m.value.Div(q.value), cur: m.cur} }

// Equal compares value and currency. Zero amounts are equal whatever their
// currency.
func (m Money) Equal(n Money) bool {
	return m.value.Equal(n.value) && (m.cur == n.cur || m.IsZero())
}

func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: sameCurrency(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: sameCurrency(m, n)} }

// sameCurrency returns the currency of an operation between a and b. Adding
// amounts of two different currencies is a programming error: conversions
// go through a PriceBook.
func sameCurrency(a, b Money) string {
	switch {
	case a.cur == "":
		return b.cur
	case b.cur == "", a.cur == b.cur:
		return a.cur
	}
	panic(fmt.Sprintf("currency mismatch: %s and %s", a.cur, b.cur))
}

// String formats m with the symbol and the minor units of its currency.
func (m Money) String() string {
	c := money.New(0, m.cur).Currency()
	minor := m.value.Shift(int32(c.Fraction)).Round(0).IntPart()
	return c.Formatter().Format(minor)
}

// SignedString is String with an explicit + for gains. Zero is "-".
func (m Money) SignedString() string {
	switch {
	case m.value.IsZero():
		return "-"
	case m.value.IsPositive():
		return "+" + m.String()
	}
	return m.String()
}
