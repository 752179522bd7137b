package cmd

import (
	"testing"

	"github.com/etnz/finvault"
	"github.com/shopspring/decimal"
)

func TestParseRates(t *testing.T) {
	rates, err := parseRates([]string{"eur=0.9", "JPY=150.25"})
	if err != nil {
		t.Fatal(err)
	}
	if want := decimal.RequireFromString("0.9"); !rates["EUR"].Equal(want) {
		t.Errorf("EUR = %s, want %s", rates["EUR"], want)
	}
	if want := decimal.RequireFromString("150.25"); !rates["JPY"].Equal(want) {
		t.Errorf("JPY = %s, want %s", rates["JPY"], want)
	}

	for _, bad := range []string{"EUR", "EUR=abc", "XXQ=1"} {
		if _, err := parseRates([]string{bad}); err == nil {
			t.Errorf("parseRates(%q) succeeded", bad)
		}
	}
}

func TestSymbols(t *testing.T) {
	books := []finvault.PortfolioBook{
		{Holdings: []finvault.HoldingBook{{Holding: finvault.Holding{Symbol: "AAPL"}}, {Holding: finvault.Holding{Symbol: "VTI"}}}},
		{},
		{Holdings: []finvault.HoldingBook{{Holding: finvault.Holding{Symbol: "BTC"}}}},
	}
	got := symbols(books)
	if len(got) != 3 || got[0] != "AAPL" || got[2] != "BTC" {
		t.Errorf("symbols = %v", got)
	}
}
