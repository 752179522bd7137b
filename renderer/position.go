package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/finvault"
	md "github.com/nao1215/markdown"
)

// PositionMarkdown renders the position of a holding with its open lots.
func PositionMarkdown(h finvault.Holding, r finvault.PositionReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Position in %s", label(h)))
	doc.PlainText(fmt.Sprintf("Method: %s", r.Method))

	price := r.Price.String()
	if !r.PriceKnown {
		price = "n/a"
	}
	quantity := r.Quantity.String()
	if r.IsShort() {
		quantity += " (short)"
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Quantity"), md.Bold(quantity)},
		Rows: [][]string{
			{"Average Cost", r.AverageCost.String()},
			{"Cost Basis", r.CostBasis.String()},
			{"Price", price},
			{"Market Value", r.MarketValue.String()},
			{"Realized Gains", r.Realized.SignedString()},
			{"Unrealized Gains", r.Unrealized.SignedString()},
			{"Fees", r.Fees.String()},
		},
	})

	if len(r.OpenLots) > 0 {
		doc.H2("Open Lots")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"Acquired", "Quantity", "Unit Cost", "Total Cost"},
		}
		for _, l := range r.OpenLots {
			table.Rows = append(table.Rows, []string{
				l.Acquired.Format("2006-01-02"),
				l.Quantity.String(),
				l.UnitCost.String(),
				l.TotalCost.String(),
			})
		}
		doc.Table(table)
	}
	return doc.String()
}
