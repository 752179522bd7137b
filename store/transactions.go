package store

import (
	"context"
	"strings"
	"time"

	"github.com/etnz/finvault"
)

var transactionCols = []string{"id", "type", "amount", "category", "note", "date", "account_id", "created_at", "updated_at"}

const selectTransaction = `SELECT id, type, amount, category, note, date, account_id, created_at, updated_at FROM transactions`

func (s *Store) transactionArgs(t *finvault.Transaction) []any {
	s.stamp(&t.CreatedAt, &t.UpdatedAt)
	return []any{t.ID, string(t.Type), t.Amount, t.Category, t.Note, ts(t.Date), nullString(t.AccountID),
		ts(t.CreatedAt), ts(t.UpdatedAt)}
}

func scanTransaction(r scanner) (finvault.Transaction, error) {
	var t finvault.Transaction
	var typ string
	err := r.Scan(&t.ID, &typ, &t.Amount, &t.Category, &t.Note, timeCol{&t.Date}, stringCol{&t.AccountID},
		timeCol{&t.CreatedAt}, timeCol{&t.UpdatedAt})
	t.Type = finvault.TransactionType(typ)
	return t, err
}

// InsertTransaction writes t unless a transaction with the same id exists.
func (s *Store) InsertTransaction(ctx context.Context, t finvault.Transaction) (bool, error) {
	if err := invalid("transactions", t.Validate()); err != nil {
		return false, err
	}
	return s.insert(ctx, "transactions", []string{"id"}, transactionCols, s.transactionArgs(&t)...)
}

// SaveTransaction inserts or updates t.
func (s *Store) SaveTransaction(ctx context.Context, t finvault.Transaction) error {
	if err := invalid("transactions", t.Validate()); err != nil {
		return err
	}
	t.UpdatedAt = s.now()
	return s.save(ctx, "transactions", []string{"id"}, transactionCols, s.transactionArgs(&t)...)
}

func (s *Store) GetTransaction(ctx context.Context, id string) (finvault.Transaction, error) {
	t, err := scanTransaction(s.q.QueryRowContext(ctx, selectTransaction+" WHERE id = ?", id))
	if err != nil {
		return t, notFound(err, "transactions", id)
	}
	return t, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	return s.remove(ctx, "transactions", "id", id)
}

// TransactionFilter selects transactions. Zero fields do not filter.
type TransactionFilter struct {
	From, To  time.Time // inclusive bounds on the date
	Category  string
	AccountID string
}

// ListTransactions returns the transactions matching f, oldest first.
func (s *Store) ListTransactions(ctx context.Context, f TransactionFilter) ([]finvault.Transaction, error) {
	var where []string
	var args []any
	if !f.From.IsZero() {
		where, args = append(where, "date >= ?"), append(args, ts(f.From))
	}
	if !f.To.IsZero() {
		where, args = append(where, "date <= ?"), append(args, ts(f.To))
	}
	if f.Category != "" {
		where, args = append(where, "category = ?"), append(args, f.Category)
	}
	if f.AccountID != "" {
		where, args = append(where, "account_id = ?"), append(args, f.AccountID)
	}
	query := selectTransaction
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return list(s, ctx, "transactions", query+" ORDER BY date, id", scanTransaction, args...)
}
