// Package migration moves the legacy key-value data into the relational
// store, exactly once.
//
// The work is split in phases run in dependency order, each inside its own
// store transaction. A failing phase is rolled back and reported, the next
// ones still run. Every row is written with an upsert-or-skip insert keyed
// by a stable id, so running the migration again never duplicates data.
package migration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/etnz/finvault/legacy"
	"github.com/etnz/finvault/store"
	"github.com/rs/zerolog"
)

// Stats counts the rows actually inserted.
type Stats struct {
	Accounts     int `json:"accounts"`
	Transactions int `json:"transactions"`
	Portfolios   int `json:"portfolios"`
	Holdings     int `json:"holdings"`
	Lots         int `json:"lots"`
	Goals        int `json:"goals"`
	Groups       int `json:"groups"`
	Debts        int `json:"debts"`
}

func (s *Stats) add(o Stats) {
	s.Accounts += o.Accounts
	s.Transactions += o.Transactions
	s.Portfolios += o.Portfolios
	s.Holdings += o.Holdings
	s.Lots += o.Lots
	s.Goals += o.Goals
	s.Groups += o.Groups
	s.Debts += o.Debts
}

// PhaseFailure is the error of a phase that was rolled back.
type PhaseFailure struct {
	Phase string
	Err   error
}

func (e *PhaseFailure) Error() string { return fmt.Sprintf("migration phase %s: %v", e.Phase, e.Err) }
func (e *PhaseFailure) Unwrap() error { return e.Err }

// PhaseReport is the outcome of one phase. Rows counts every row written
// by the phase, including the ones that are not part of Stats.
type PhaseReport struct {
	Phase    string
	Rows     int
	Skipped  int // records ignored because they were invalid or orphaned
	Err      *PhaseFailure
	Duration time.Duration
}

// Result is the outcome of Run. Success is false only when the migration
// could not run to completion, in which case the completion flag is not set.
type Result struct {
	Success bool
	Error   string
	// AlreadyDone is true when the completion flag was already set.
	AlreadyDone bool
	Stats       Stats
	Phases      []PhaseReport
}

// Failed returns the reports of the phases that were rolled back.
func (r Result) Failed() []PhaseReport {
	var out []PhaseReport
	for _, p := range r.Phases {
		if p.Err != nil {
			out = append(out, p)
		}
	}
	return out
}

// State is the lifecycle of a migration.
type State int

const (
	NotStarted State = iota
	Running
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Migrator runs the migration of Source into Store.
type Migrator struct {
	Source legacy.Source
	Store  *store.Store
	Flag   Flag
	Logger zerolog.Logger
	// Now is the clock used for defaults, time.Now when nil.
	Now func() time.Time

	mu    sync.Mutex
	state State
}

func (m *Migrator) now() time.Time {
	if m.Now == nil {
		return time.Now().UTC()
	}
	return m.Now().UTC()
}

func (m *Migrator) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// State returns the state of the last Run of this Migrator.
func (m *Migrator) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Status reads the completion flag. A set flag is always Complete, whatever
// this process did.
func (m *Migrator) Status() (State, error) {
	done, err := m.Flag.IsSet()
	if err != nil {
		return Failed, err
	}
	if done {
		return Complete, nil
	}
	if s := m.State(); s != Complete {
		return s, nil
	}
	return NotStarted, nil
}

// Rollback clears the completion flag, so that the next Run migrates again.
// Data already migrated is kept: the next run skips it.
func (m *Migrator) Rollback() error {
	if err := m.Flag.Clear(); err != nil {
		return err
	}
	m.setState(NotStarted)
	m.Logger.Info().Msg("migration flag cleared")
	return nil
}

// errFatal marks the failures that escape the phases.
var errFatal = errors.New("fatal migration failure")

// Run migrates everything unless the completion flag is set. It never
// returns an error: failures are described in the Result.
func (m *Migrator) Run(ctx context.Context) (res Result) {
	log := m.Logger.With().Str("component", "migration").Logger()
	m.setState(Running)
	defer func() {
		if p := recover(); p != nil {
			res.Success = false
			res.Error = fmt.Sprintf("%v: panic: %v", errFatal, p)
		}
		if res.Success {
			m.setState(Complete)
			return
		}
		m.setState(Failed)
		log.Error().Str("error", res.Error).Msg("migration failed")
	}()

	done, err := m.Flag.IsSet()
	if err != nil {
		return Result{Error: fmt.Sprintf("%v: %v", errFatal, err)}
	}
	if done {
		log.Debug().Msg("migration already complete")
		return Result{Success: true, AlreadyDone: true}
	}

	start := time.Now()
	reader := legacy.NewReader(m.Source, m.Logger)
	run := &runner{m: m, r: reader, log: log, now: m.now()}
	for _, ph := range run.phases() {
		report, stats := run.phase(ctx, ph)
		res.Phases = append(res.Phases, report)
		res.Stats.add(stats)
	}

	if err := m.Flag.Set(); err != nil {
		res.Error = fmt.Sprintf("%v: %v", errFatal, err)
		return res
	}
	res.Success = true
	log.Info().
		Int("accounts", res.Stats.Accounts).
		Int("transactions", res.Stats.Transactions).
		Int("portfolios", res.Stats.Portfolios).
		Int("holdings", res.Stats.Holdings).
		Int("lots", res.Stats.Lots).
		Int("goals", res.Stats.Goals).
		Int("groups", res.Stats.Groups).
		Int("debts", res.Stats.Debts).
		Int("failed_phases", len(res.Failed())).
		Dur("duration", time.Since(start)).
		Msg("migration complete")
	return res
}
