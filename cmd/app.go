// Package cmd implements the fvl command line tool.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/finvault"
	"github.com/etnz/finvault/cache"
	"github.com/etnz/finvault/config"
	"github.com/etnz/finvault/logger"
	"github.com/etnz/finvault/store"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&migrateCmd{}, "migration")
	c.Register(&statusCmd{}, "migration")
	c.Register(&rollbackCmd{}, "migration")

	c.Register(&positionCmd{}, "portfolio")
	c.Register(&valuationCmd{}, "portfolio")
	c.Register(&cashCmd{}, "portfolio")
	c.Register(&balancesCmd{}, "groups")

	c.Register(&quoteCmd{}, "market")
	c.Register(&fxCmd{}, "market")
	c.Register(&purgeCmd{}, "market")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the config file, finvault.yaml in the working directory by default")
var databasePath = flag.String("db", "", "Path to the database, overrides database.path")
var Verbose = flag.Bool("v", false, "log at debug level")

// app is what a command needs to run: the configuration, a logger and the
// opened store.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store *store.Store
}

// open loads the configuration and opens the store.
func open(ctx context.Context) (*app, error) {
	path := *configFile
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if *databasePath != "" {
		cfg.Database.Path = *databasePath
	}
	level := cfg.Log.Level
	if *Verbose {
		level = "debug"
	}
	log, err := logger.New(level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(ctx, cfg.Database.Path, log)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, store: s}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error().Err(err).Msg("closing the database")
	}
}

func (a *app) cache() *cache.Cache {
	return cache.New(a.store, a.cfg.Cache.QuoteTTL, a.cfg.Cache.FxTTL)
}

// method returns the cost basis method of a flag, or the configured one
// when the flag is empty.
func (a *app) method(flagValue string) (finvault.CostBasisMethod, error) {
	if flagValue == "" {
		return a.cfg.CostBasis()
	}
	return finvault.ParseCostBasisMethod(strings.ToLower(flagValue))
}

// priceBook loads the quotes of symbols and every cached FX rate map.
func (a *app) priceBook(ctx context.Context, symbols []string) (*finvault.PriceBook, error) {
	bases, err := a.store.FxBases(ctx)
	if err != nil {
		return nil, err
	}
	book, stale, err := a.cache().PriceBook(ctx, symbols, bases)
	if err != nil {
		return nil, err
	}
	if len(stale) > 0 {
		a.log.Warn().Strs("entries", stale).Msg("using stale market data")
	}
	return book, nil
}

// openOrFail opens the app, or reports the error and returns the exit status.
func openOrFail(ctx context.Context) (*app, subcommands.ExitStatus) {
	a, err := open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening finvault: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	return a, subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal, or prints it raw when it
// cannot be rendered.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
