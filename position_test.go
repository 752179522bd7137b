package finvault

import (
	"testing"
)

func TestPosition_FIFO(t *testing.T) {
	lots := []Lot{
		buy(1, 10, 10, 0),
		buy(2, 10, 20, 0),
		sell(3, 15, 30, 0),
	}
	p := Position("USD", lots, price(25), FIFO)

	if got, want := p.Realized, USD(250); !got.Equal(want) {
		t.Errorf("Realized = %v, want %v", got, want)
	}
	if got, want := p.Quantity, Q(5); !got.Equal(want) {
		t.Errorf("Quantity = %v, want %v", got, want)
	}
	if got, want := p.AverageCost, USD(20); !got.Equal(want) {
		t.Errorf("AverageCost = %v, want %v", got, want)
	}
	if got, want := p.CostBasis, USD(100); !got.Equal(want) {
		t.Errorf("CostBasis = %v, want %v", got, want)
	}
	if got, want := p.Unrealized, USD(25); !got.Equal(want) {
		t.Errorf("Unrealized = %v, want %v", got, want)
	}
	if got, want := p.MarketValue, USD(125); !got.Equal(want) {
		t.Errorf("MarketValue = %v, want %v", got, want)
	}
	if len(p.OpenLots) != 1 || !p.OpenLots[0].Quantity.Equal(Q(5)) {
		t.Errorf("OpenLots = %v, want a single lot of 5", p.OpenLots)
	}
}

func TestPosition_AverageCost(t *testing.T) {
	lots := []Lot{
		buy(1, 10, 10, 0),
		buy(2, 10, 20, 0),
		sell(3, 15, 30, 0),
	}
	p := Position("USD", lots, price(25), AverageCost)

	// average cost is 15: 15*30 - 15*15
	if got, want := p.Realized, USD(225); !got.Equal(want) {
		t.Errorf("Realized = %v, want %v", got, want)
	}
	if got, want := p.AverageCost, USD(15); !got.Equal(want) {
		t.Errorf("AverageCost = %v, want %v", got, want)
	}
	if got, want := p.Unrealized, USD(50); !got.Equal(want) {
		t.Errorf("Unrealized = %v, want %v", got, want)
	}
}

func TestPosition_Fees(t *testing.T) {
	testCases := []struct {
		name         string
		lots         []Lot
		wantRealized Money
		wantCost     Money
	}{
		{
			name:         "buy fee is part of the cost basis",
			lots:         []Lot{buy(1, 10, 10, 5)},
			wantRealized: USD(0),
			wantCost:     USD(105),
		},
		{
			name:         "sell fee reduces the realized gain",
			lots:         []Lot{buy(1, 10, 10, 0), sell(2, 10, 12, 4)},
			wantRealized: USD(16),
			wantCost:     USD(0),
		},
		{
			name: "sell fee is apportioned pro-rata by matched quantity",
			// 4 matched out of 8 sold: half of the fee is realized now, the other half
			// goes with the short lot opened by the oversell.
			lots:         []Lot{buy(1, 4, 10, 0), sell(2, 8, 15, 8)},
			wantRealized: USD(16), // 4*15 - 4 - 40
			wantCost:     USD(-56), // proceeds of the 4 open short shares: 4*15 - 4
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := Position("USD", tc.lots, nil, FIFO)
			if !p.Realized.Equal(tc.wantRealized) {
				t.Errorf("Realized = %v, want %v", p.Realized, tc.wantRealized)
			}
			if !p.CostBasis.Equal(tc.wantCost) {
				t.Errorf("CostBasis = %v, want %v", p.CostBasis, tc.wantCost)
			}
		})
	}
}

func TestPosition_Short(t *testing.T) {
	lots := []Lot{
		buy(1, 10, 10, 0),
		sell(2, 15, 12, 0),
	}
	p := Position("USD", lots, price(11), FIFO)

	if got, want := p.Quantity, Q(-5); !got.Equal(want) {
		t.Errorf("Quantity = %v, want %v", got, want)
	}
	if !p.IsShort() {
		t.Error("IsShort() = false, want true")
	}
	if got, want := p.Realized, USD(20); !got.Equal(want) {
		t.Errorf("Realized = %v, want %v", got, want)
	}
	// short 5 at 12, now at 11: +5
	if got, want := p.Unrealized, USD(5); !got.Equal(want) {
		t.Errorf("Unrealized = %v, want %v", got, want)
	}

	// covering the short realizes the gain
	lots = append(lots, buy(3, 5, 11, 0))
	p = Position("USD", lots, price(11), FIFO)
	if got, want := p.Realized, USD(25); !got.Equal(want) {
		t.Errorf("Realized after cover = %v, want %v", got, want)
	}
	if !p.Quantity.IsZero() {
		t.Errorf("Quantity after cover = %v, want 0", p.Quantity)
	}
}

func TestPosition_Empty(t *testing.T) {
	for _, method := range []CostBasisMethod{FIFO, AverageCost} {
		p := Position("EUR", nil, price(100), method)
		if !p.Quantity.IsZero() || !p.Realized.IsZero() || !p.Unrealized.IsZero() || !p.MarketValue.IsZero() {
			t.Errorf("%v: empty position = %+v, want all zero", method, p)
		}
	}
}

func TestPosition_MissingPrice(t *testing.T) {
	lots := []Lot{
		buy(1, 10, 10, 0),
		sell(2, 5, 14, 0),
	}
	p := Position("USD", lots, nil, FIFO)

	if p.PriceKnown {
		t.Error("PriceKnown = true, want false")
	}
	// realized gains use the recorded sell price
	if got, want := p.Realized, USD(20); !got.Equal(want) {
		t.Errorf("Realized = %v, want %v", got, want)
	}
	// unrealized gains use a price of zero
	if got, want := p.Unrealized, USD(-50); !got.Equal(want) {
		t.Errorf("Unrealized = %v, want %v", got, want)
	}
	if !p.MarketValue.IsZero() {
		t.Errorf("MarketValue = %v, want 0", p.MarketValue)
	}
}

func TestPosition_ChronologicalOrder(t *testing.T) {
	// lots are given out of order, the sell must match the oldest buy.
	lots := []Lot{
		sell(3, 5, 30, 0),
		buy(2, 10, 20, 0),
		buy(1, 10, 10, 0),
	}
	p := Position("USD", lots, nil, FIFO)
	if got, want := p.Realized, USD(100); !got.Equal(want) {
		t.Errorf("Realized = %v, want %v", got, want)
	}
}
