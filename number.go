package finvault

import "github.com/shopspring/decimal"

// number is what M and Q accept. Literals are for tests, the store always
// works with decimals.
type number interface {
	int | int64 | float64 | decimal.Decimal
}

func toDecimal[T number](v T) decimal.Decimal {
	switch x := any(v).(type) {
	case decimal.Decimal:
		return x
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case float64:
		return decimal.NewFromFloat(x)
	}
	panic("unreachable")
}
