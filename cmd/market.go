package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/etnz/finvault"
	"github.com/etnz/finvault/store"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type quoteCmd struct {
	source string
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "show or record the cached quote of a symbol" }
func (*quoteCmd) Usage() string {
	return `fvl quote <symbol> [<price> [<change> [<currency>]]]

  Without a price, shows the cached quote and whether it is stale.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "source", "manual", "Name of the quote provider, kept as metadata")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 || f.NArg() > 4 {
		fmt.Fprintln(os.Stderr, "quote requires a symbol and optionally a price, a change and a currency")
		return subcommands.ExitUsageError
	}
	q := finvault.Quote{Symbol: f.Arg(0), At: time.Now().UTC()}
	var err error
	if f.NArg() > 1 {
		if q.Price, err = decimal.NewFromString(f.Arg(1)); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing price %q: %v\n", f.Arg(1), err)
			return subcommands.ExitUsageError
		}
	}
	if f.NArg() > 2 {
		if q.Change, err = decimal.NewFromString(f.Arg(2)); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing change %q: %v\n", f.Arg(2), err)
			return subcommands.ExitUsageError
		}
	}
	if f.NArg() > 3 {
		q.Currency = strings.ToUpper(f.Arg(3))
	}

	a, status := openOrFail(ctx)
	if a == nil {
		return status
	}
	defer a.Close()
	qc := a.cache()

	if f.NArg() > 1 {
		if err := qc.PutQuote(ctx, q, map[string]string{"source": c.source}); err != nil {
			fmt.Fprintf(os.Stderr, "Error caching quote: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	cached, stale, err := qc.Quote(ctx, q.Symbol)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "No quote cached for %s\n", finvault.NormalizeSymbol(q.Symbol))
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading quote: %v\n", err)
		return subcommands.ExitFailure
	}
	state := "fresh"
	if stale {
		state = "stale"
	}
	fmt.Printf("%s %s %s (%s, fetched %s)\n", cached.Symbol, cached.Price, cached.Currency, state, cached.FetchedAt.Format(time.RFC3339))
	return subcommands.ExitSuccess
}

type fxCmd struct{}

func (*fxCmd) Name() string     { return "fx" }
func (*fxCmd) Synopsis() string { return "show or record the cached FX rates of a base currency" }
func (*fxCmd) Usage() string {
	return `fvl fx <base> [<currency>=<rate>...]

  A rate is the number of units of currency for one unit of base.
`
}

func (*fxCmd) SetFlags(f *flag.FlagSet) {}

// parseRates parses CUR=RATE arguments.
func parseRates(args []string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal, len(args))
	for _, arg := range args {
		cur, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("rate %q is not <currency>=<rate>", arg)
		}
		r, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("rate of %s: %w", cur, err)
		}
		cur = strings.ToUpper(strings.TrimSpace(cur))
		if err := finvault.ValidateCurrency(cur); err != nil {
			return nil, err
		}
		rates[cur] = r
	}
	return rates, nil
}

func (*fxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "fx requires a base currency")
		return subcommands.ExitUsageError
	}
	base := strings.ToUpper(f.Arg(0))
	rates, err := parseRates(f.Args()[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, status := openOrFail(ctx)
	if a == nil {
		return status
	}
	defer a.Close()
	c := a.cache()

	if len(rates) > 0 {
		if err := c.PutRates(ctx, store.CachedRates{Base: base, Rates: rates, FetchedAt: time.Now().UTC()}); err != nil {
			fmt.Fprintf(os.Stderr, "Error caching rates: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	cached, stale, err := c.Rates(ctx, base)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "No rates cached for %s\n", base)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading rates: %v\n", err)
		return subcommands.ExitFailure
	}
	currencies := make([]string, 0, len(cached.Rates))
	for cur := range cached.Rates {
		currencies = append(currencies, cur)
	}
	sort.Strings(currencies)
	for _, cur := range currencies {
		fmt.Printf("1 %s = %s %s\n", base, cached.Rates[cur], cur)
	}
	if stale {
		fmt.Printf("(stale, fetched %s)\n", cached.FetchedAt.Format(time.RFC3339))
	}
	return subcommands.ExitSuccess
}

type purgeCmd struct {
	older time.Duration
}

func (*purgeCmd) Name() string     { return "purge" }
func (*purgeCmd) Synopsis() string { return "remove old quotes and FX rates from the cache" }
func (*purgeCmd) Usage() string {
	return `fvl purge [-older <duration>]
`
}

func (c *purgeCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.older, "older", 30*24*time.Hour, "Remove what was fetched before this age")
}

func (c *purgeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := openOrFail(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	n, err := a.cache().Purge(ctx, c.older)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error purging the cache: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%d cache entries removed.\n", n)
	return subcommands.ExitSuccess
}
