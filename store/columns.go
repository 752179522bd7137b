package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"
)

// timeLayout is fixed width, so that lexical and chronological orders agree.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ts encodes a time for a NOT NULL column.
func ts(t time.Time) string { return t.UTC().Format(timeLayout) }

// nullTS encodes a time for a nullable column: the zero time is NULL.
func nullTS(t time.Time) driver.Value {
	if t.IsZero() {
		return nil
	}
	return ts(t)
}

// nullString encodes an empty string as NULL, for optional references.
func nullString(s string) driver.Value {
	if s == "" {
		return nil
	}
	return s
}

// timeCol scans a time column into t. NULL leaves the zero time.
type timeCol struct{ t *time.Time }

func (c timeCol) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*c.t = time.Time{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		*c.t = v.UTC()
		return nil
	default:
		return fmt.Errorf("cannot scan %T into a time", src)
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// rows written by another tool
		if t, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return fmt.Errorf("invalid time %q: %w", s, err)
		}
	}
	*c.t = t.UTC()
	return nil
}

// stringCol scans a nullable text column, NULL is the empty string.
type stringCol struct{ s *string }

func (c stringCol) Scan(src any) error {
	var ns sql.NullString
	if err := ns.Scan(src); err != nil {
		return err
	}
	*c.s = ns.String
	return nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// list runs query and scans every row with scan.
func list[T any](s *Store, ctx context.Context, table, query string, scan func(scanner) (T, error), args ...any) ([]T, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return out, nil
}
