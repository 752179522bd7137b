package migration

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/finvault/legacy"
	"github.com/etnz/finvault/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Phase names, in execution order.
const (
	PhaseAccounts     = "accounts"
	PhaseTransactions = "transactions"
	PhasePortfolios   = "portfolios"
	PhaseHoldings     = "holdings"
	PhaseGoals        = "goals"
	PhaseProgress     = "achievements"
	PhaseGroups       = "groups"
	PhaseDebts        = "debts"
	PhaseBudget       = "budget"
)

// tally accumulates the counts of a phase. It is dropped when the phase fails.
type tally struct {
	Stats
	rows    int
	skipped int
}

// inserted counts a write and reports whether it inserted a row.
func (t *tally) inserted(ok bool, err error) (bool, error) {
	if err == nil && ok {
		t.rows++
	}
	return ok, err
}

type phase struct {
	name string
	run  func(ctx context.Context, tx *store.Store, t *tally) error
}

// runner holds the state shared by the phases of one Run.
type runner struct {
	m   *Migrator
	r   *legacy.Reader
	log zerolog.Logger
	now time.Time
}

func (r *runner) phases() []phase {
	return []phase{
		{PhaseAccounts, r.accounts},
		{PhaseTransactions, r.transactions},
		{PhasePortfolios, r.portfolios},
		{PhaseHoldings, r.holdings},
		{PhaseGoals, r.goals},
		{PhaseProgress, r.progress},
		{PhaseGroups, r.groups},
		{PhaseDebts, r.debts},
		{PhaseBudget, r.budget},
	}
}

// phase runs ph in its own transaction. A failure rolls the phase back and
// contributes nothing to the stats.
func (r *runner) phase(ctx context.Context, ph phase) (PhaseReport, Stats) {
	start := time.Now()
	log := r.log.With().Str("phase", ph.name).Logger()
	var t tally
	err := r.m.Store.WithTx(ctx, func(tx *store.Store) error {
		return ph.run(ctx, tx, &t)
	})
	report := PhaseReport{Phase: ph.name, Duration: time.Since(start)}
	if err != nil {
		report.Err = &PhaseFailure{Phase: ph.name, Err: err}
		log.Error().Err(err).Msg("migration phase rolled back")
		return report, Stats{}
	}
	report.Rows, report.Skipped = t.rows, t.skipped
	log.Info().Int("rows", t.rows).Int("skipped", t.skipped).Msg("migration phase done")
	return report, t.Stats
}

// skip records a legacy record that is not migrated.
func (r *runner) skip(t *tally, kind, id, reason string) {
	t.skipped++
	r.log.Debug().Str("record", kind).Str("id", id).Msg("skipping legacy " + kind + ": " + reason)
}

// idSpace is the namespace of the ids derived for legacy records without one.
var idSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://finvault.local/legacy"))

// derive returns a stable id for the i-th record of kind owned by owner.
// Running the migration again derives the same id, so the row is skipped.
func derive(owner, kind string, i int) string {
	return uuid.NewSHA1(idSpace, []byte(owner+"/"+kind+"/"+strconv.Itoa(i))).String()
}

// idOr returns the legacy id, or a derived one when it is empty.
func idOr(id legacy.Text, owner, kind string, i int) string {
	if s := strings.TrimSpace(id.String()); s != "" {
		return s
	}
	return derive(owner, kind, i)
}

// taken reports whether a record of another owner than owner already uses
// id. ownerOf returns the owner of a stored record.
func taken[T any](id, owner string, get func(string) (T, error), ownerOf func(T) string) (bool, error) {
	rec, err := get(id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ownerOf(rec) != owner, nil
}

// textOr returns the text, or def when it is blank.
func textOr(t legacy.Text, def string) string {
	if s := strings.TrimSpace(t.String()); s != "" {
		return s
	}
	return def
}
