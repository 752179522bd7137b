package store

import (
	"context"

	"github.com/etnz/finvault"
)

var debtCols = []string{"id", "name", "kind", "lender", "balance", "apr", "min_payment", "due_day", "created_at", "updated_at"}

const selectDebt = `SELECT id, name, kind, lender, balance, apr, min_payment, due_day, created_at, updated_at FROM debts`

func (s *Store) debtArgs(d *finvault.Debt) []any {
	s.stamp(&d.CreatedAt, &d.UpdatedAt)
	return []any{d.ID, d.Name, string(d.Kind), d.Lender, d.Balance, d.APR, d.MinPayment, d.DueDay,
		ts(d.CreatedAt), ts(d.UpdatedAt)}
}

func scanDebt(r scanner) (finvault.Debt, error) {
	var d finvault.Debt
	var kind string
	err := r.Scan(&d.ID, &d.Name, &kind, &d.Lender, &d.Balance, &d.APR, &d.MinPayment, &d.DueDay,
		timeCol{&d.CreatedAt}, timeCol{&d.UpdatedAt})
	d.Kind = finvault.DebtKind(kind)
	return d, err
}

// InsertDebt writes d unless a debt with the same id exists. Credit card
// debts are rejected: they are credit accounts.
func (s *Store) InsertDebt(ctx context.Context, d finvault.Debt) (bool, error) {
	if err := invalid("debts", d.Validate()); err != nil {
		return false, err
	}
	return s.insert(ctx, "debts", []string{"id"}, debtCols, s.debtArgs(&d)...)
}

func (s *Store) SaveDebt(ctx context.Context, d finvault.Debt) error {
	if err := invalid("debts", d.Validate()); err != nil {
		return err
	}
	d.UpdatedAt = s.now()
	return s.save(ctx, "debts", []string{"id"}, debtCols, s.debtArgs(&d)...)
}

func (s *Store) GetDebt(ctx context.Context, id string) (finvault.Debt, error) {
	d, err := scanDebt(s.q.QueryRowContext(ctx, selectDebt+" WHERE id = ?", id))
	if err != nil {
		return d, notFound(err, "debts", id)
	}
	return d, nil
}

func (s *Store) ListDebts(ctx context.Context) ([]finvault.Debt, error) {
	return list(s, ctx, "debts", selectDebt+" ORDER BY created_at, id", scanDebt)
}

func (s *Store) DeleteDebt(ctx context.Context, id string) error {
	return s.remove(ctx, "debts", "id", id)
}
