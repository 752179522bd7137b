package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finvault/renderer"
	"github.com/google/subcommands"
)

type balancesCmd struct{}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "show who owes what in a group" }
func (*balancesCmd) Usage() string {
	return `fvl balances <group-id>
`
}

func (*balancesCmd) SetFlags(f *flag.FlagSet) {}

func (*balancesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "balances requires exactly one group id")
		return subcommands.ExitUsageError
	}
	a, status := openOrFail(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	g, err := a.store.GetGroup(ctx, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading group: %v\n", err)
		return subcommands.ExitFailure
	}
	members, err := a.store.Members(ctx, g.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading members: %v\n", err)
		return subcommands.ExitFailure
	}
	balances, err := a.store.GroupBalances(ctx, g.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing balances: %v\n", err)
		return subcommands.ExitFailure
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}
	printMarkdown(renderer.BalancesMarkdown(g, balances, names))
	return subcommands.ExitSuccess
}
