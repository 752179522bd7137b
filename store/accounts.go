package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/etnz/finvault"
)

var accountCols = []string{"id", "name", "institution", "masked_number", "balance", "kind", "include_in_net_worth",
	"apr", "credit_limit", "min_payment_percent", "created_at", "updated_at"}

const selectAccount = `SELECT id, name, institution, masked_number, balance, kind, include_in_net_worth,
	apr, credit_limit, min_payment_percent, created_at, updated_at FROM accounts`

func (s *Store) accountArgs(a *finvault.Account) []any {
	s.stamp(&a.CreatedAt, &a.UpdatedAt)
	return []any{a.ID, a.Name, a.Institution, a.MaskedNumber, a.Balance, string(a.Kind), a.IncludeInNetWorth,
		a.APR, a.CreditLimit, a.MinPaymentPercent, ts(a.CreatedAt), ts(a.UpdatedAt)}
}

func scanAccount(r scanner) (finvault.Account, error) {
	var a finvault.Account
	var kind string
	err := r.Scan(&a.ID, &a.Name, &a.Institution, &a.MaskedNumber, &a.Balance, &kind, &a.IncludeInNetWorth,
		&a.APR, &a.CreditLimit, &a.MinPaymentPercent, timeCol{&a.CreatedAt}, timeCol{&a.UpdatedAt})
	a.Kind = finvault.AccountKind(kind)
	return a, err
}

// InsertAccount writes a unless an account with the same id exists. It
// reports whether the row was inserted.
func (s *Store) InsertAccount(ctx context.Context, a finvault.Account) (bool, error) {
	if err := invalid("accounts", a.Validate()); err != nil {
		return false, err
	}
	return s.insert(ctx, "accounts", []string{"id"}, accountCols, s.accountArgs(&a)...)
}

// SaveAccount inserts or updates a.
func (s *Store) SaveAccount(ctx context.Context, a finvault.Account) error {
	if err := invalid("accounts", a.Validate()); err != nil {
		return err
	}
	a.UpdatedAt = s.now()
	return s.save(ctx, "accounts", []string{"id"}, accountCols, s.accountArgs(&a)...)
}

func (s *Store) GetAccount(ctx context.Context, id string) (finvault.Account, error) {
	a, err := scanAccount(s.q.QueryRowContext(ctx, selectAccount+" WHERE id = ?", id))
	if err != nil {
		return a, notFound(err, "accounts", id)
	}
	return a, nil
}

// ListAccounts returns every account sorted by name.
func (s *Store) ListAccounts(ctx context.Context) ([]finvault.Account, error) {
	return list(s, ctx, "accounts", selectAccount+" ORDER BY name COLLATE NOCASE, id", scanAccount)
}

// FindAccountByName returns the account named name, ignoring case and
// surrounding spaces. When several accounts share the name the oldest wins.
func (s *Store) FindAccountByName(ctx context.Context, name string) (finvault.Account, error) {
	name = strings.TrimSpace(name)
	// SQLite lower() only folds ASCII, names are compared here.
	all, err := list(s, ctx, "accounts", selectAccount+" ORDER BY created_at, id", scanAccount)
	if err != nil {
		return finvault.Account{}, err
	}
	for _, a := range all {
		if strings.EqualFold(strings.TrimSpace(a.Name), name) {
			return a, nil
		}
	}
	return finvault.Account{}, notFound(sql.ErrNoRows, "accounts", name)
}

// DeleteAccount removes an account. Its transactions are kept, unlinked.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	return s.remove(ctx, "accounts", "id", id)
}
