// Package store is the relational system of record of finvault, backed by SQLite.
//
// A Store holds a single connection: SQLite serializes writers anyway and an
// in-memory database only lives as long as its connection. Every table is
// created with CREATE ... IF NOT EXISTS so Open is safe on every startup.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// querier is what *sql.DB and *sql.Tx have in common.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store gives access to every table. The zero value is not usable, see Open.
type Store struct {
	db  *sql.DB
	q   querier
	tx  *sql.Tx // non nil for a store bound to a transaction, see WithTx
	log zerolog.Logger
	now func() time.Time
}

// Memory is the path of a private in-memory database.
const Memory = ":memory:"

// dsn returns the modernc connection string for path. The pragmas are applied
// by the driver when the connection is opened, before any statement runs.
func dsn(path string) string {
	pragmas := []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)"}
	if path != Memory {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
	}
	return "file:" + path + "?" + strings.Join(pragmas, "&")
}

// Open opens or creates the database at path and ensures the schema exists.
// Use Memory for a throw away database.
func Open(ctx context.Context, path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	s := &Store{db: db, q: db, log: log.With().Str("component", "store").Logger(), now: time.Now}
	if err := s.init(ctx, path); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// init checks the connection pragmas and creates the schema.
func (s *Store) init(ctx context.Context, path string) error {
	var fk int
	if err := s.db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
		return fmt.Errorf("read foreign_keys pragma: %w", err)
	}
	if fk != 1 {
		return errors.New("foreign keys enforcement could not be enabled")
	}
	var mode string
	if err := s.db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
		return fmt.Errorf("read journal_mode pragma: %w", err)
	}
	if path != Memory && !strings.EqualFold(mode, "wal") {
		return fmt.Errorf("journal mode is %q, want wal", mode)
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	s.log.Debug().Str("path", path).Str("journal_mode", mode).Msg("database ready")
	return nil
}

// Close releases the database. It must not be called on a transaction bound store.
func (s *Store) Close() error {
	if s.tx != nil {
		return errors.New("close called on a transaction")
	}
	return s.db.Close()
}

// WithTx runs fn with a store bound to a new transaction. The transaction is
// committed when fn returns nil and rolled back otherwise. Calling WithTx on a
// transaction bound store reuses the running transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) (err error) {
	if s.tx != nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	bound := *s
	bound.q, bound.tx = tx, tx
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				s.log.Error().Err(rerr).Msg("rollback failed")
			}
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit transaction: %w", cerr)
		}
	}()
	return fn(&bound)
}

// SetClock replaces the clock used for timestamps and "now" computations.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// Count returns the number of rows of table. It is meant for diagnostics and tests.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	if !knownTable(table) {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	if err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// insert runs an upsert-or-skip insert keyed by conflict. It reports whether
// a row was actually written.
func (s *Store) insert(ctx context.Context, table string, conflict, cols []string, args ...any) (bool, error) {
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO NOTHING",
		table, strings.Join(cols, ", "), placeholders(len(cols)), strings.Join(conflict, ", "))
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, classify(err, table, "insert")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert into %s: %w", table, err)
	}
	return n == 1, nil
}

// save inserts or updates the row keyed by conflict. The update happens in
// place so that rows owned through ON DELETE CASCADE survive.
func (s *Store) save(ctx context.Context, table string, conflict, cols []string, args ...any) error {
	var set []string
	for _, c := range cols {
		if !contains(conflict, c) && c != "created_at" {
			set = append(set, c+" = excluded."+c)
		}
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		table, strings.Join(cols, ", "), placeholders(len(cols)), strings.Join(conflict, ", "), strings.Join(set, ", "))
	if _, err := s.q.ExecContext(ctx, query, args...); err != nil {
		return classify(err, table, "save")
	}
	return nil
}

// remove deletes the row of table whose column key equals id. ErrNotFound
// is returned when there was no such row.
func (s *Store) remove(ctx context.Context, table, key, id string) error {
	res, err := s.q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, key), id)
	if err != nil {
		return classify(err, table, "delete")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s %q: %w", table, id, ErrNotFound)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// stamp fills the zero timestamps with now.
func (s *Store) stamp(ts ...*time.Time) {
	now := s.now().UTC()
	for _, t := range ts {
		if t.IsZero() {
			*t = now
		}
	}
}
