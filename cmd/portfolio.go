package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/etnz/finvault"
	"github.com/etnz/finvault/renderer"
	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type positionCmd struct {
	method string
}

func (*positionCmd) Name() string     { return "position" }
func (*positionCmd) Synopsis() string { return "show the lots, cost basis and gains of a holding" }
func (*positionCmd) Usage() string {
	return `fvl position [-method fifo|average] <holding-id>
`
}

func (c *positionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.method, "method", "", "Cost basis method, fifo or average. Defaults to reporting.cost_basis")
}

func (c *positionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "position requires exactly one holding id")
		return subcommands.ExitUsageError
	}
	a, status := openOrFail(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	method, err := a.method(c.method)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	h, err := a.store.GetHolding(ctx, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading holding: %v\n", err)
		return subcommands.ExitFailure
	}
	lots, err := a.store.LotsByHolding(ctx, h.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading lots: %v\n", err)
		return subcommands.ExitFailure
	}
	book, err := a.priceBook(ctx, []string{h.Symbol})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading market data: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.PositionMarkdown(h, book.HoldingPosition(h, lots, method)))
	return subcommands.ExitSuccess
}

type valuationCmd struct {
	portfolio string
	currency  string
	method    string
	paper     bool
	top       int
	networth  bool
}

func (*valuationCmd) Name() string     { return "valuation" }
func (*valuationCmd) Synopsis() string { return "value one or all portfolios" }
func (*valuationCmd) Usage() string {
	return `fvl valuation [-p <portfolio-id>] [-c <currency>] [-paper] [-networth]

  Values a single portfolio in its base currency, or every tracked portfolio
  in the reporting currency. See 'fvl topic valuation'.
`
}

func (c *valuationCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio to value, all tracked portfolios when empty")
	f.StringVar(&c.currency, "c", "", "Currency of the aggregate valuation. Defaults to reporting.currency")
	f.StringVar(&c.method, "method", "", "Cost basis method, fifo or average. Defaults to reporting.cost_basis")
	f.BoolVar(&c.paper, "paper", false, "Include paper portfolios in the aggregate valuation")
	f.IntVar(&c.top, "top", 5, "Number of allocation buckets shown before grouping the rest")
	f.BoolVar(&c.networth, "networth", false, "Also show the net worth")
}

// symbols returns the symbols of every holding of books.
func symbols(books []finvault.PortfolioBook) []string {
	var s []string
	for _, pb := range books {
		for _, hb := range pb.Holdings {
			s = append(s, hb.Holding.Symbol)
		}
	}
	return s
}

func (c *valuationCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := openOrFail(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	method, err := a.method(c.method)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	currency := strings.ToUpper(c.currency)
	if currency == "" {
		currency = a.cfg.Reporting.Currency
	}

	var books []finvault.PortfolioBook
	if c.portfolio != "" {
		pb, err := a.store.Book(ctx, c.portfolio)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
			return subcommands.ExitFailure
		}
		books = append(books, pb)
	} else if books, err = a.store.Books(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolios: %v\n", err)
		return subcommands.ExitFailure
	}
	prices, err := a.priceBook(ctx, symbols(books))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading market data: %v\n", err)
		return subcommands.ExitFailure
	}

	var v finvault.Valuation
	var title string
	if c.portfolio != "" {
		v = finvault.ValuePortfolio(books[0], prices, method)
		title = books[0].Portfolio.Name
	} else {
		v = finvault.ValueAll(books, prices, finvault.ValueOptions{Currency: currency, Method: method, IncludePaper: c.paper})
		title = "All Portfolios"
	}
	md := renderer.ValuationMarkdown(title, v, c.top)

	if c.networth {
		accounts, err := a.store.ListAccounts(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading accounts: %v\n", err)
			return subcommands.ExitFailure
		}
		debts, err := a.store.ListDebts(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading debts: %v\n", err)
			return subcommands.ExitFailure
		}
		investments, ok := prices.Convert(v.Total, currency)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: no rate to convert %s into %s\n", v.Currency, currency)
			return subcommands.ExitFailure
		}
		md += "\n\n" + renderer.NetWorthMarkdown(finvault.ComputeNetWorth(currency, accounts, debts, investments))
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

type cashCmd struct {
	date string
	note string
}

func (*cashCmd) Name() string     { return "cash" }
func (*cashCmd) Synopsis() string { return "record a deposit or a withdrawal" }
func (*cashCmd) Usage() string {
	return `fvl cash [-d <date>] [-note <text>] <portfolio-id> <amount>

  A negative amount is a withdrawal. The cash balance is recomputed from
  the events dated up to now.
`
}

func (c *cashCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the event, YYYY-MM-DD. Defaults to now")
	f.StringVar(&c.note, "note", "", "Free text attached to the event")
}

func (c *cashCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "cash requires a portfolio id and an amount")
		return subcommands.ExitUsageError
	}
	amount, err := decimal.NewFromString(f.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount %q: %v\n", f.Arg(1), err)
		return subcommands.ExitUsageError
	}
	date := time.Now().UTC()
	if c.date != "" {
		if date, err = time.Parse(time.DateOnly, c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date %q: %v\n", c.date, err)
			return subcommands.ExitUsageError
		}
	}

	a, status := openOrFail(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	e := finvault.CashEvent{ID: uuid.NewString(), PortfolioID: f.Arg(0), Amount: amount, Date: date, Note: c.note}
	if _, err := a.store.RecordCashEvent(ctx, e); err != nil {
		fmt.Fprintf(os.Stderr, "Error recording cash: %v\n", err)
		return subcommands.ExitFailure
	}
	p, err := a.store.GetPortfolio(ctx, e.PortfolioID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Cash of %s: %s\n", p.Name, finvault.M(p.CashBalance, p.BaseCurrency))
	return subcommands.ExitSuccess
}
