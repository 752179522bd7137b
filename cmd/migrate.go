package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/etnz/finvault/legacy"
	"github.com/etnz/finvault/migration"
	"github.com/etnz/finvault/renderer"
	"github.com/google/subcommands"
)

// migrationFlag is the -flag flag shared by the migration commands.
type migrationFlag struct {
	path string
}

func (m *migrationFlag) SetFlags(f *flag.FlagSet) {
	f.StringVar(&m.path, "flag", "", "Path of the migration marker file, overrides migration.flag")
}

func (m *migrationFlag) migrator(a *app) *migration.Migrator {
	path := m.path
	if path == "" {
		path = a.cfg.Migration.Flag
	}
	return &migration.Migrator{Store: a.store, Flag: migration.FileFlag(path), Logger: a.log}
}

// migrateCmd holds the flags for the 'migrate' subcommand.
type migrateCmd struct {
	migrationFlag
	legacy string
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "import the data of the previous versions, once" }
func (*migrateCmd) Usage() string {
	return `fvl migrate [-legacy <dir-or-dump>] [-flag <marker>]

  Copies the legacy key-value data into the database. Nothing is done when
  the migration already completed. See 'fvl topic migration'.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {
	c.migrationFlag.SetFlags(f)
	f.StringVar(&c.legacy, "legacy", "", "Legacy data directory or dump file, overrides legacy.dir")
}

func (c *migrateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := openOrFail(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	m := c.migrator(a)
	if done, err := m.Flag.IsSet(); err == nil && done {
		printMarkdown(renderer.MigrationMarkdown(migration.Result{Success: true, AlreadyDone: true}))
		return subcommands.ExitSuccess
	}

	dir := c.legacy
	if dir == "" {
		dir = a.cfg.Legacy.Dir
	}
	src, err := legacy.Open(dir)
	if errors.Is(err, fs.ErrNotExist) {
		// nothing to import, the run still sets the flag.
		a.log.Warn().Str("path", dir).Msg("no legacy data found")
		src, err = legacy.Map{}, nil
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening legacy data: %v\n", err)
		return subcommands.ExitFailure
	}
	m.Source = src

	res := m.Run(ctx)
	printMarkdown(renderer.MigrationMarkdown(res))
	if !res.Success {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type statusCmd struct {
	migrationFlag
}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "show whether the migration completed" }
func (*statusCmd) Usage() string {
	return `fvl status [-flag <marker>]
`
}

func (c *statusCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := openOrFail(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	m := c.migrator(a)
	state, err := m.Status()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading the migration flag: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.StatusMarkdown(state, string(m.Flag.(migration.FileFlag))))
	return subcommands.ExitSuccess
}

type rollbackCmd struct {
	migrationFlag
}

func (*rollbackCmd) Name() string     { return "rollback" }
func (*rollbackCmd) Synopsis() string { return "clear the migration flag so that the next migrate runs again" }
func (*rollbackCmd) Usage() string {
	return `fvl rollback [-flag <marker>]

  Migrated data is kept, the next migration skips it.
`
}

func (c *rollbackCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := openOrFail(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	if err := c.migrator(a).Rollback(); err != nil {
		fmt.Fprintf(os.Stderr, "Error clearing the migration flag: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println("Migration flag cleared.")
	return subcommands.ExitSuccess
}
