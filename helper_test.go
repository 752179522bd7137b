package finvault

import (
	"time"

	"github.com/shopspring/decimal"
)

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// D is a helper for test to create a decimal from const
func D(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// day returns the i-th day of January 2025, at noon UTC.
func day(i int) time.Time { return time.Date(2025, time.January, i, 12, 0, 0, 0, time.UTC) }

func buy(i int, quantity, price, fee float64) Lot {
	return Lot{ID: "b" + day(i).Format("0102"), HoldingID: "h", Side: Buy, Quantity: D(quantity), Price: D(price), Fee: D(fee), Date: day(i)}
}

func sell(i int, quantity, price, fee float64) Lot {
	return Lot{ID: "s" + day(i).Format("0102"), HoldingID: "h", Side: Sell, Quantity: D(quantity), Price: D(price), Fee: D(fee), Date: day(i)}
}

func price(v float64) *decimal.Decimal {
	d := D(v)
	return &d
}
