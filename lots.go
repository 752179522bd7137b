package finvault

import (
	"sort"
	"time"
)

// lot represents an open part of a position, used for cost basis calculations.
// Quantity and Cost are always positive; the direction (long or short) is a
// property of the whole queue.
type lot struct {
	Date     time.Time
	Quantity Quantity
	Cost     Money // Total cost of the lot, fees included. For a short lot, the net proceeds.
}

type lots []lot

// take removes quantityToTake from the head of the queue, oldest lot first.
// It returns the remaining lots, the quantity actually taken (less than
// requested when the queue runs out) and the cost of the taken part.
func (l lots) take(quantityToTake Quantity) (remaining lots, taken Quantity, cost Money) {
	for _, currentLot := range l {
		if quantityToTake.IsZero() {
			remaining = append(remaining, currentLot)
			continue
		}

		if currentLot.Quantity.GreaterThan(quantityToTake) {
			// Partial sale from this lot
			costOfPortion := currentLot.Cost.Mul(quantityToTake).Div(currentLot.Quantity)
			remaining = append(remaining, lot{
				Date:     currentLot.Date,
				Quantity: currentLot.Quantity.Sub(quantityToTake),
				Cost:     currentLot.Cost.Sub(costOfPortion),
			})
			cost = cost.Add(costOfPortion)
			taken = taken.Add(quantityToTake)
			quantityToTake = Q(0)
		} else {
			// Full sale of this lot
			cost = cost.Add(currentLot.Cost)
			taken = taken.Add(currentLot.Quantity)
			quantityToTake = quantityToTake.Sub(currentLot.Quantity)
		}
	}
	return remaining, taken, cost
}

// quantity returns the total quantity of the queue.
func (l lots) quantity() Quantity {
	var q Quantity
	for _, x := range l {
		q = q.Add(x.Quantity)
	}
	return q
}

// cost returns the total cost of the queue.
func (l lots) cost(currency string) Money {
	total := M(0, currency)
	for _, x := range l {
		total = total.Add(x.Cost)
	}
	return total
}

// book replays lots and keeps the open queue and the realized gain.
type book struct {
	method   CostBasisMethod
	currency string
	open     lots
	short    bool // true when the open queue is a short position
	realized Money
	fees     Money
}

func newBook(currency string, method CostBasisMethod) *book {
	return &book{method: method, currency: currency, realized: M(0, currency), fees: M(0, currency)}
}

// opening appends a new open lot, or pools it with the existing one for the
// average cost method.
func (b *book) opening(l lot) {
	if b.method == AverageCost && len(b.open) > 0 {
		b.open[0].Quantity = b.open[0].Quantity.Add(l.Quantity)
		b.open[0].Cost = b.open[0].Cost.Add(l.Cost)
		return
	}
	b.open = append(b.open, l)
}

// apply processes one lot. value is the net amount of the execution: the
// cost paid (price x quantity + fee) for a buy, the proceeds received
// (price x quantity - fee) for a sell.
func (b *book) apply(l Lot) {
	quantity := Q(l.Quantity)
	if !quantity.IsPositive() {
		// invalid lots are rejected by the store, ignore them here.
		return
	}
	price := M(l.Price, b.currency)
	fee := M(l.Fee, b.currency)
	b.fees = b.fees.Add(fee)

	var value Money
	closingShort := l.Side == Buy
	if l.Side == Buy {
		value = price.Mul(quantity).Add(fee)
	} else {
		value = price.Mul(quantity).Sub(fee)
	}

	leftover := quantity
	if len(b.open) > 0 && b.short == closingShort {
		// The execution closes (part of) the open position.
		remaining, matched, matchedCost := b.open.take(quantity)
		b.open = remaining
		// The fee is apportioned pro-rata to the matched quantity.
		matchedValue := value.Mul(matched).Div(quantity)
		if closingShort {
			// matchedCost holds the proceeds received when the short was opened.
			b.realized = b.realized.Add(matchedCost.Sub(matchedValue))
		} else {
			b.realized = b.realized.Add(matchedValue.Sub(matchedCost))
		}
		leftover = quantity.Sub(matched)
		if leftover.IsZero() {
			return
		}
	}
	// Whatever is not matched opens a position in the direction of the execution.
	b.short = l.Side == Sell
	b.opening(lot{Date: l.Date, Quantity: leftover, Cost: value.Mul(leftover).Div(quantity)})
}

// SortLots sorts lots chronologically. Lots on the same instant keep their
// relative order.
func SortLots(l []Lot) []Lot {
	sorted := make([]Lot, len(l))
	copy(sorted, l)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return sorted
}
