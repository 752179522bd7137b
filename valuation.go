package finvault

import "sort"

// CashBucket is the allocation key of the cash of a portfolio.
const CashBucket = "cash"

// OthersBucket is the allocation key used by TopAllocations for the tail.
const OthersBucket = "others"

// HoldingBook is a holding with its lots, as materialized from the store.
type HoldingBook struct {
	Holding Holding
	Lots    []Lot
}

// PortfolioBook is a portfolio with all its holdings.
type PortfolioBook struct {
	Portfolio Portfolio
	Holdings  []HoldingBook
}

// HoldingValuation is the valuation of one holding in the portfolio currency.
type HoldingValuation struct {
	Holding   Holding
	Position  PositionReport // in the holding currency
	Value     Money          // market value in the valuation currency
	DayChange Money          // in the valuation currency
	Weight    Percent
}

// Allocation is the weight of one bucket of a valuation.
type Allocation struct {
	Key    string // symbol, CashBucket or OthersBucket
	Label  string
	Value  Money
	Weight Percent
}

// Valuation aggregates holdings and cash in a single currency.
type Valuation struct {
	Currency         string
	HoldingsValue    Money
	Cash             Money
	Total            Money
	DayChange        Money
	DayChangePercent Percent
	Realized         Money
	Unrealized       Money
	Holdings         []HoldingValuation
	// Allocations holds every bucket, cash included, sorted by decreasing value.
	Allocations []Allocation
	// Unpriced lists what could not be converted into Currency and is
	// therefore excluded from the totals.
	Unpriced []string
	// NoQuote lists the symbols valued at zero for lack of a quote.
	NoQuote []string
}

func newValuation(currency string) Valuation {
	zero := M(0, currency)
	return Valuation{
		Currency:      currency,
		HoldingsValue: zero,
		Cash:          zero,
		Total:         zero,
		DayChange:     zero,
		Realized:      zero,
		Unrealized:    zero,
	}
}

// dayChangePercent returns change / (total - change), the change relative to
// the value before the change. It is zero when the total or that value is
// zero.
func dayChangePercent(total, change Money) Percent {
	if total.IsZero() {
		return 0
	}
	return percentOf(change.Decimal(), total.Decimal().Sub(change.Decimal()))
}

// ValuePortfolio values a portfolio in its base currency. Archived holdings
// are ignored.
func ValuePortfolio(pb PortfolioBook, prices *PriceBook, method CostBasisMethod) Valuation {
	cur := pb.Portfolio.BaseCurrency
	v := newValuation(cur)
	v.Cash = M(pb.Portfolio.CashBalance, cur)

	for _, hb := range pb.Holdings {
		h := hb.Holding
		if h.Archived {
			continue
		}
		_, change, st := prices.price(h)
		if st == unconvertible {
			v.Unpriced = append(v.Unpriced, h.Symbol)
			continue
		}
		pos := prices.HoldingPosition(h, hb.Lots, method)
		if !pos.PriceKnown {
			v.NoQuote = append(v.NoQuote, h.Symbol)
		}

		value, okValue := prices.Convert(pos.MarketValue, cur)
		dayChange, okChange := prices.Convert(change.Mul(pos.Quantity), cur)
		realized, okRealized := prices.Convert(pos.Realized, cur)
		unrealized, okUnrealized := prices.Convert(pos.Unrealized, cur)
		if !okValue || !okChange || !okRealized || !okUnrealized {
			v.Unpriced = append(v.Unpriced, h.Symbol)
			continue
		}
		v.HoldingsValue = v.HoldingsValue.Add(value)
		v.DayChange = v.DayChange.Add(dayChange)
		v.Realized = v.Realized.Add(realized)
		v.Unrealized = v.Unrealized.Add(unrealized)
		v.Holdings = append(v.Holdings, HoldingValuation{Holding: h, Position: pos, Value: value, DayChange: dayChange})
	}
	v.finish()
	return v
}

// finish computes the totals, weights and allocations.
func (v *Valuation) finish() {
	v.Total = v.HoldingsValue.Add(v.Cash)
	v.DayChangePercent = dayChangePercent(v.Total, v.DayChange)

	buckets := make(map[string]*Allocation)
	var keys []string
	for i := range v.Holdings {
		hv := &v.Holdings[i]
		hv.Weight = percentOf(hv.Value.Decimal(), v.Total.Decimal())
		key := NormalizeSymbol(hv.Holding.Symbol)
		a, ok := buckets[key]
		if !ok {
			label := hv.Holding.Name
			if label == "" {
				label = key
			}
			a = &Allocation{Key: key, Label: label, Value: M(0, v.Currency)}
			buckets[key] = a
			keys = append(keys, key)
		}
		a.Value = a.Value.Add(hv.Value)
	}
	v.Allocations = v.Allocations[:0]
	for _, k := range keys {
		a := *buckets[k]
		a.Weight = percentOf(a.Value.Decimal(), v.Total.Decimal())
		v.Allocations = append(v.Allocations, a)
	}
	v.Allocations = append(v.Allocations, Allocation{
		Key:    CashBucket,
		Label:  "Cash",
		Value:  v.Cash,
		Weight: percentOf(v.Cash.Decimal(), v.Total.Decimal()),
	})
	sortAllocations(v.Allocations)
}

func sortAllocations(a []Allocation) {
	sort.SliceStable(a, func(i, j int) bool {
		if !a[i].Value.Decimal().Equal(a[j].Value.Decimal()) {
			return a[i].Value.Decimal().GreaterThan(a[j].Value.Decimal())
		}
		return a[i].Key < a[j].Key
	})
}

// TopAllocations keeps the n largest buckets and folds the others into a
// single OthersBucket. The truncation point is a presentation choice: the
// valuation always carries the full list.
func TopAllocations(all []Allocation, n int) []Allocation {
	if n < 0 || len(all) <= n+1 {
		return append([]Allocation(nil), all...)
	}
	top := append([]Allocation(nil), all[:n]...)
	others := Allocation{Key: OthersBucket, Label: "Others", Value: M(0, all[0].Value.Currency())}
	for _, a := range all[n:] {
		others.Value = others.Value.Add(a.Value)
		others.Weight += a.Weight
	}
	return append(top, others)
}

// ValueOptions tunes ValueAll.
type ValueOptions struct {
	Currency     string
	Method       CostBasisMethod
	IncludePaper bool
}

// ValueAll values every tracked, non archived portfolio and aggregates them
// into opts.Currency. Portfolios whose totals cannot be converted are
// listed in Unpriced by id.
func ValueAll(books []PortfolioBook, prices *PriceBook, opts ValueOptions) Valuation {
	all := newValuation(opts.Currency)
	for _, pb := range books {
		p := pb.Portfolio
		if p.Archived || !p.TrackingEnabled || (p.Type == Paper && !opts.IncludePaper) {
			continue
		}
		v := ValuePortfolio(pb, prices, opts.Method)
		all.Unpriced = append(all.Unpriced, v.Unpriced...)
		all.NoQuote = append(all.NoQuote, v.NoQuote...)

		cash, okCash := prices.Convert(v.Cash, opts.Currency)
		realized, okRealized := prices.Convert(v.Realized, opts.Currency)
		unrealized, okUnrealized := prices.Convert(v.Unrealized, opts.Currency)
		if !okCash || !okRealized || !okUnrealized {
			all.Unpriced = append(all.Unpriced, p.ID)
			continue
		}
		holdings := make([]HoldingValuation, 0, len(v.Holdings))
		converted := true
		for _, hv := range v.Holdings {
			value, okValue := prices.Convert(hv.Value, opts.Currency)
			change, okChange := prices.Convert(hv.DayChange, opts.Currency)
			if !okValue || !okChange {
				converted = false
				break
			}
			hv.Value, hv.DayChange = value, change
			holdings = append(holdings, hv)
		}
		if !converted {
			all.Unpriced = append(all.Unpriced, p.ID)
			continue
		}
		for _, hv := range holdings {
			all.HoldingsValue = all.HoldingsValue.Add(hv.Value)
			all.DayChange = all.DayChange.Add(hv.DayChange)
			all.Holdings = append(all.Holdings, hv)
		}
		all.Cash = all.Cash.Add(cash)
		all.Realized = all.Realized.Add(realized)
		all.Unrealized = all.Unrealized.Add(unrealized)
	}
	all.finish()
	return all
}

// NetWorth is the aggregate of accounts, investments and debts.
type NetWorth struct {
	Currency    string
	Assets      Money
	Liabilities Money // positive amount owed
	Investments Money
	Total       Money
}

// ComputeNetWorth sums included accounts by kind, subtracts debts and adds
// the value of the investment portfolios. Account balances and debts are
// expected in currency. Credit card debts are skipped: they are already
// counted as credit accounts.
func ComputeNetWorth(currency string, accounts []Account, debts []Debt, investments Money) NetWorth {
	nw := NetWorth{Currency: currency, Assets: M(0, currency), Liabilities: M(0, currency), Investments: investments}
	for _, a := range accounts {
		if !a.IncludeInNetWorth {
			continue
		}
		if a.Kind.IsLiability() {
			nw.Liabilities = nw.Liabilities.Add(M(a.Balance, currency))
		} else {
			nw.Assets = nw.Assets.Add(M(a.Balance, currency))
		}
	}
	for _, d := range debts {
		if d.Kind == CreditCardDebt {
			continue
		}
		nw.Liabilities = nw.Liabilities.Add(M(d.Balance, currency))
	}
	nw.Total = nw.Assets.Sub(nw.Liabilities).Add(M(investments.Decimal(), currency))
	return nw
}
