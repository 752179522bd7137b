package renderer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/etnz/finvault"
	md "github.com/nao1215/markdown"
)

// ValuationMarkdown renders a valuation. top is the number of allocation
// buckets shown before folding the rest, a negative top shows them all.
func ValuationMarkdown(title string, v finvault.Valuation, top int) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(title)
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Total Value"), md.Bold(v.Total.String())},
		Rows: [][]string{
			{"Holdings", v.HoldingsValue.String()},
			{"Cash", v.Cash.String()},
			{"Day Change", v.DayChange.SignedString() + " (" + v.DayChangePercent.SignedString() + ")"},
			{"Realized Gains", v.Realized.SignedString()},
			{"Unrealized Gains", v.Unrealized.SignedString()},
		},
	})

	if len(v.Holdings) > 0 {
		doc.H2("Holdings")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"Holding", "Quantity", "Price", "Value", "Day Change", "Weight"},
		}
		for _, hv := range v.Holdings {
			price := hv.Position.Price.String()
			if !hv.Position.PriceKnown {
				price = "n/a"
			}
			table.Rows = append(table.Rows, []string{
				label(hv.Holding),
				hv.Position.Quantity.String(),
				price,
				hv.Value.String(),
				hv.DayChange.SignedString(),
				hv.Weight.String(),
			})
		}
		doc.Table(table)
	}

	doc.H2("Allocation")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Bucket", "Value", "Weight"},
	}
	for _, a := range finvault.TopAllocations(v.Allocations, top) {
		table.Rows = append(table.Rows, []string{a.Label, a.Value.String(), a.Weight.String()})
	}
	doc.Table(table)

	body := doc.String()

	var warnings bytes.Buffer
	ConditionalBlock(&warnings, func(w io.Writer) bool {
		fmt.Fprint(w, "## Warnings\n\n")
		if len(v.NoQuote) > 0 {
			fmt.Fprintf(w, "- No quote, valued at zero: %s\n", list(v.NoQuote))
		}
		if len(v.Unpriced) > 0 {
			fmt.Fprintf(w, "- No FX rate to %s, excluded from the totals: %s\n", v.Currency, list(v.Unpriced))
		}
		return len(v.NoQuote)+len(v.Unpriced) > 0
	})
	if warnings.Len() > 0 {
		body += "\n\n" + warnings.String()
	}
	return body
}

// NetWorthMarkdown renders a net worth summary.
func NetWorthMarkdown(nw finvault.NetWorth) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Net Worth")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Net Worth"), md.Bold(nw.Total.String())},
		Rows: [][]string{
			{"Assets", nw.Assets.String()},
			{"Investments", nw.Investments.String()},
			{"Liabilities", nw.Liabilities.Neg().SignedString()},
		},
	})
	return doc.String()
}
