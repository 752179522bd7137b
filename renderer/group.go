package renderer

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/etnz/finvault"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"
)

// BalancesMarkdown renders the balances of a group and the transfers that
// settle them. names maps member ids to display names.
func BalancesMarkdown(g finvault.Group, balances map[string]decimal.Decimal, names map[string]string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Balances of %s", g.Name))

	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}
	ids := make([]string, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Member", "Balance"},
	}
	for _, id := range ids {
		table.Rows = append(table.Rows, []string{name(id), finvault.M(balances[id], g.Currency).SignedString()})
	}
	doc.Table(table)

	if transfers := finvault.SettleUp(balances); len(transfers) > 0 {
		doc.H2("Settle Up")
		var lines []string
		for _, t := range transfers {
			lines = append(lines, fmt.Sprintf("%s pays %s to %s", name(t.From), finvault.M(t.Amount, g.Currency), name(t.To)))
		}
		doc.BulletList(lines...)
	}
	return doc.String()
}
