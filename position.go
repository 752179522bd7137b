package finvault

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenLot is the still open part of a lot after all sells were matched.
type OpenLot struct {
	Acquired  time.Time
	Quantity  Quantity
	UnitCost  Money
	TotalCost Money
}

// PositionReport is the state of a holding derived from its lots.
type PositionReport struct {
	Currency string
	Method   CostBasisMethod
	// Quantity is the net open quantity. It is negative for a short position.
	Quantity Quantity
	// CostBasis is the cost of the open quantity, fees included. It has the
	// sign of Quantity: for a short it is the net proceeds received.
	CostBasis   Money
	AverageCost Money
	Realized    Money
	Unrealized  Money
	MarketValue Money
	Fees        Money
	// PriceKnown is false when no current price was available. Price,
	// MarketValue and Unrealized are then computed with a price of zero.
	PriceKnown bool
	Price      Money
	OpenLots   []OpenLot
}

// Position replays lots, in chronological order, and values the open
// quantity at price. A nil price means no price is known: it counts as zero
// for the market value and unrealized gain only, realized gains always come
// from the recorded sell prices.
//
// Selling more than the open quantity is a valid state (a short position),
// not an error.
func Position(currency string, lotList []Lot, price *decimal.Decimal, method CostBasisMethod) PositionReport {
	b := newBook(currency, method)
	for _, l := range SortLots(lotList) {
		b.apply(l)
	}

	r := PositionReport{
		Currency:   currency,
		Method:     method,
		Realized:   b.realized,
		Fees:       b.fees,
		PriceKnown: price != nil,
		Price:      M(0, currency),
	}
	if price != nil {
		r.Price = M(*price, currency)
	}

	r.Quantity = b.open.quantity()
	r.CostBasis = b.open.cost(currency)
	if !r.Quantity.IsZero() {
		r.AverageCost = r.CostBasis.Div(r.Quantity)
	} else {
		r.AverageCost = M(0, currency)
	}
	for _, l := range b.open {
		r.OpenLots = append(r.OpenLots, OpenLot{
			Acquired:  l.Date,
			Quantity:  l.Quantity,
			UnitCost:  l.Cost.Div(l.Quantity),
			TotalCost: l.Cost,
		})
	}
	if b.short {
		r.Quantity = r.Quantity.Neg()
		r.CostBasis = r.CostBasis.Neg()
	}

	r.MarketValue = r.Price.Mul(r.Quantity)
	r.Unrealized = r.MarketValue.Sub(r.CostBasis)
	return r
}

// TotalGain returns realized plus unrealized gains.
func (r PositionReport) TotalGain() Money { return r.Realized.Add(r.Unrealized) }

// IsShort reports whether more was sold than bought.
func (r PositionReport) IsShort() bool { return r.Quantity.IsNegative() }

// HoldingPosition computes the position of a holding, priced from the book.
func (b *PriceBook) HoldingPosition(h Holding, lotList []Lot, method CostBasisMethod) PositionReport {
	price, _, st := b.price(h)
	if st != quoted {
		return Position(h.Currency, lotList, nil, method)
	}
	p := price.Decimal()
	return Position(h.Currency, lotList, &p, method)
}
