package finvault

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a price point fetched by a market data collaborator.
type Quote struct {
	Symbol   string
	Price    decimal.Decimal
	Change   decimal.Decimal // today's change per unit
	Currency string          // empty means the holding currency
	At       time.Time
}

// PriceBook is an in-memory, read-only view of the quotes and FX rates
// known at valuation time. It is filled once and then only read, so it is
// safe for concurrent use by the valuation functions.
type PriceBook struct {
	quotes map[string]Quote
	rates  map[string]map[string]decimal.Decimal // base -> currency -> units of currency per base unit
}

// NewPriceBook returns an empty price book.
func NewPriceBook() *PriceBook {
	return &PriceBook{
		quotes: make(map[string]Quote),
		rates:  make(map[string]map[string]decimal.Decimal),
	}
}

// AddQuote records the quote of a symbol, replacing a previous one.
func (b *PriceBook) AddQuote(q Quote) {
	q.Symbol = NormalizeSymbol(q.Symbol)
	b.quotes[q.Symbol] = q
}

// AddRates records the FX rate map of a base currency.
func (b *PriceBook) AddRates(base string, rates map[string]decimal.Decimal) {
	m := make(map[string]decimal.Decimal, len(rates))
	for c, r := range rates {
		m[c] = r
	}
	b.rates[base] = m
}

// Quote returns the quote of a symbol, if any.
func (b *PriceBook) Quote(symbol string) (Quote, bool) {
	if b == nil {
		return Quote{}, false
	}
	q, ok := b.quotes[NormalizeSymbol(symbol)]
	return q, ok
}

// rate returns the number of units of to for one unit of from.
func (b *PriceBook) rate(from, to string) (decimal.Decimal, bool) {
	if from == to {
		return decimal.NewFromInt(1), true
	}
	if b == nil {
		return decimal.Zero, false
	}
	if r, ok := b.rates[from][to]; ok && !r.IsZero() {
		return r, true
	}
	if r, ok := b.rates[to][from]; ok && !r.IsZero() {
		return decimal.NewFromInt(1).Div(r), true
	}
	// cross rate through any base that knows both currencies.
	bases := make([]string, 0, len(b.rates))
	for base := range b.rates {
		bases = append(bases, base)
	}
	sort.Strings(bases)
	for _, base := range bases {
		rf, okf := b.rates[base][from]
		rt, okt := b.rates[base][to]
		if okf && okt && !rf.IsZero() {
			return rt.Div(rf), true
		}
	}
	return decimal.Zero, false
}

// Convert converts m into the currency to. It reports false when no rate
// is known.
func (b *PriceBook) Convert(m Money, to string) (Money, bool) {
	if m.Currency() == "" || m.Currency() == to {
		return M(m.Decimal(), to), true
	}
	r, ok := b.rate(m.Currency(), to)
	if !ok {
		return M(0, to), false
	}
	return M(m.Decimal().Mul(r), to), true
}

// quoteState tells how the price of a holding is known.
type quoteState int

const (
	quoted        quoteState = iota
	noQuote                  // no quote for the symbol
	unconvertible            // a quote exists in a currency without a rate
)

// price returns the last price of a holding expressed in its own currency,
// and its change for the day. Both are zero unless the state is quoted.
func (b *PriceBook) price(h Holding) (price, change Money, st quoteState) {
	q, found := b.Quote(h.Symbol)
	if !found {
		return M(0, h.Currency), M(0, h.Currency), noQuote
	}
	cur := q.Currency
	if cur == "" {
		cur = h.Currency
	}
	r, ok := b.rate(cur, h.Currency)
	if !ok {
		return M(0, h.Currency), M(0, h.Currency), unconvertible
	}
	return M(q.Price.Mul(r), h.Currency), M(q.Change.Mul(r), h.Currency), quoted
}
