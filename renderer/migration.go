package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/finvault/migration"
	md "github.com/nao1215/markdown"
)

// MigrationMarkdown renders the outcome of a migration run.
func MigrationMarkdown(res migration.Result) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Migration")
	switch {
	case !res.Success:
		doc.PlainText(md.Bold("Migration failed: ") + res.Error)
	case res.AlreadyDone:
		doc.PlainText("The migration was already complete, nothing to do.")
		return doc.String()
	case len(res.Failed()) > 0:
		doc.PlainText(fmt.Sprintf("Migration complete, %d phase(s) rolled back.", len(res.Failed())))
	default:
		doc.PlainText("Migration complete.")
	}

	s := res.Stats
	doc.H2("Migrated")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Records", "Inserted"},
		Rows: [][]string{
			{"Accounts", strconv.Itoa(s.Accounts)},
			{"Transactions", strconv.Itoa(s.Transactions)},
			{"Portfolios", strconv.Itoa(s.Portfolios)},
			{"Holdings", strconv.Itoa(s.Holdings)},
			{"Lots", strconv.Itoa(s.Lots)},
			{"Goals", strconv.Itoa(s.Goals)},
			{"Groups", strconv.Itoa(s.Groups)},
			{"Debts", strconv.Itoa(s.Debts)},
		},
	})

	if len(res.Phases) > 0 {
		doc.H2("Phases")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignLeft},
			Header:    []string{"Phase", "Rows", "Skipped", "Status"},
		}
		for _, p := range res.Phases {
			status := "ok"
			if p.Err != nil {
				status = "rolled back: " + p.Err.Err.Error()
			}
			table.Rows = append(table.Rows, []string{p.Phase, strconv.Itoa(p.Rows), strconv.Itoa(p.Skipped), status})
		}
		doc.Table(table)
	}
	return doc.String()
}

// StatusMarkdown renders the state of the migration.
func StatusMarkdown(state migration.State, flag string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Migration Status")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft},
		Header:    []string{"State", md.Bold(state.String())},
		Rows:      [][]string{{"Flag", flag}},
	})
	return doc.String()
}
