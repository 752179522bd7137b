package finvault

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a ratio in percent: 4.35 means 4.35%.
type Percent float64

// percentOf returns num / den in percent, zero when den is zero.
func percentOf(num, den decimal.Decimal) Percent {
	if den.IsZero() {
		return 0
	}
	return Percent(num.Div(den).Shift(2).InexactFloat64())
}

// Equal compares percentages to a hundredth of a basis point.
func (p Percent) Equal(q Percent) bool {
	d := float64(p - q)
	return d < 0.0001 && d > -0.0001
}

func (p Percent) String() string { return fmt.Sprintf("%.2f%%", float64(p)) }

// SignedString is String with an explicit sign. Zero is "-".
func (p Percent) SignedString() string {
	s := fmt.Sprintf("%+.2f%%", float64(p))
	if s == "+0.00%" || s == "-0.00%" {
		return "-"
	}
	return s
}
