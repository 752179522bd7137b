package store

import (
	"context"
	"fmt"

	"github.com/etnz/finvault"
	"github.com/shopspring/decimal"
)

func (s *Store) InsertGroup(ctx context.Context, g finvault.Group) (bool, error) {
	if g.ID == "" {
		return false, invalid("expense_groups", fmt.Errorf("group id is required"))
	}
	s.stamp(&g.CreatedAt)
	return s.insert(ctx, "expense_groups", []string{"id"}, []string{"id", "name", "currency", "created_at"},
		g.ID, g.Name, g.Currency, ts(g.CreatedAt))
}

func scanGroup(r scanner) (finvault.Group, error) {
	var g finvault.Group
	err := r.Scan(&g.ID, &g.Name, &g.Currency, timeCol{&g.CreatedAt})
	return g, err
}

func (s *Store) GetGroup(ctx context.Context, id string) (finvault.Group, error) {
	g, err := scanGroup(s.q.QueryRowContext(ctx, "SELECT id, name, currency, created_at FROM expense_groups WHERE id = ?", id))
	if err != nil {
		return g, notFound(err, "expense_groups", id)
	}
	return g, nil
}

func (s *Store) ListGroups(ctx context.Context) ([]finvault.Group, error) {
	return list(s, ctx, "expense_groups", "SELECT id, name, currency, created_at FROM expense_groups ORDER BY created_at, id", scanGroup)
}

// DeleteGroup removes a group with its members, bills and settlements.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	return s.remove(ctx, "expense_groups", "id", id)
}

func (s *Store) InsertMember(ctx context.Context, m finvault.GroupMember) (bool, error) {
	if m.ID == "" || m.GroupID == "" {
		return false, invalid("group_members", fmt.Errorf("member id and group are required"))
	}
	s.stamp(&m.CreatedAt)
	return s.insert(ctx, "group_members", []string{"id"}, []string{"id", "group_id", "name", "created_at"},
		m.ID, m.GroupID, m.Name, ts(m.CreatedAt))
}

const selectMember = "SELECT id, group_id, name, created_at FROM group_members"

func scanMember(r scanner) (finvault.GroupMember, error) {
	var m finvault.GroupMember
	err := r.Scan(&m.ID, &m.GroupID, &m.Name, timeCol{&m.CreatedAt})
	return m, err
}

func (s *Store) GetMember(ctx context.Context, id string) (finvault.GroupMember, error) {
	m, err := scanMember(s.q.QueryRowContext(ctx, selectMember+" WHERE id = ?", id))
	if err != nil {
		return m, notFound(err, "group_members", id)
	}
	return m, nil
}

func (s *Store) Members(ctx context.Context, groupID string) ([]finvault.GroupMember, error) {
	return list(s, ctx, "group_members", selectMember+" WHERE group_id = ? ORDER BY created_at, id", scanMember, groupID)
}

var billCols = []string{"id", "group_id", "title", "amount", "tax", "tax_mode", "discount", "discount_mode",
	"final_amount", "paid_by", "split_mode", "date", "created_at"}

const selectBill = `SELECT id, group_id, title, amount, tax, tax_mode, discount, discount_mode,
	final_amount, paid_by, split_mode, date, created_at FROM bills`

func scanBill(r scanner) (finvault.Bill, error) {
	var b finvault.Bill
	var taxMode, discountMode, splitMode string
	err := r.Scan(&b.ID, &b.GroupID, &b.Title, &b.Amount, &b.Tax, &taxMode, &b.Discount, &discountMode,
		&b.FinalAmount, stringCol{&b.PaidBy}, &splitMode, timeCol{&b.Date}, timeCol{&b.CreatedAt})
	b.TaxMode, b.DiscountMode, b.SplitMode = finvault.AmountMode(taxMode), finvault.AmountMode(discountMode), finvault.SplitMode(splitMode)
	return b, err
}

// billArgs defaults the modes of b and validates it.
func (s *Store) billArgs(b *finvault.Bill) ([]any, error) {
	if b.TaxMode == "" {
		b.TaxMode = finvault.Absolute
	}
	if b.DiscountMode == "" {
		b.DiscountMode = finvault.Absolute
	}
	if b.SplitMode == "" {
		b.SplitMode = finvault.SplitEqual
	}
	if err := invalid("bills", b.Validate()); err != nil {
		return nil, err
	}
	s.stamp(&b.CreatedAt)
	return []any{b.ID, b.GroupID, b.Title, b.Amount, b.Tax, string(b.TaxMode), b.Discount, string(b.DiscountMode),
		b.FinalAmount, nullString(b.PaidBy), string(b.SplitMode), ts(b.Date), ts(b.CreatedAt)}, nil
}

// InsertBill writes the bill row alone, unless it exists. Its final amount
// must match the amount, tax and discount.
func (s *Store) InsertBill(ctx context.Context, b finvault.Bill) (bool, error) {
	args, err := s.billArgs(&b)
	if err != nil {
		return false, err
	}
	return s.insert(ctx, "bills", []string{"id"}, billCols, args...)
}

func (s *Store) GetBill(ctx context.Context, id string) (finvault.Bill, error) {
	b, err := scanBill(s.q.QueryRowContext(ctx, selectBill+" WHERE id = ?", id))
	if err != nil {
		return b, notFound(err, "bills", id)
	}
	return b, nil
}

func (s *Store) Bills(ctx context.Context, groupID string) ([]finvault.Bill, error) {
	return list(s, ctx, "bills", selectBill+" WHERE group_id = ? ORDER BY date, id", scanBill, groupID)
}

func (s *Store) DeleteBill(ctx context.Context, id string) error {
	return s.remove(ctx, "bills", "id", id)
}

func (s *Store) InsertBillSplit(ctx context.Context, sp finvault.BillSplit) (bool, error) {
	return s.insert(ctx, "bill_splits", []string{"bill_id", "member_id"}, []string{"bill_id", "member_id", "amount"},
		sp.BillID, sp.MemberID, sp.Amount)
}

func (s *Store) InsertBillContribution(ctx context.Context, c finvault.BillContribution) (bool, error) {
	return s.insert(ctx, "bill_contributions", []string{"bill_id", "member_id"}, []string{"bill_id", "member_id", "amount"},
		c.BillID, c.MemberID, c.Amount)
}

// SaveBill writes a bill with its splits and contributions atomically. The
// splits must add up to the final amount computed from the bill. Splits and
// contributions already stored for the bill are replaced.
func (s *Store) SaveBill(ctx context.Context, b finvault.Bill, splits []finvault.BillSplit, contributions []finvault.BillContribution) error {
	b.FinalAmount = b.ComputeFinal()
	if err := finvault.CheckSplits(b, splits); err != nil {
		return invalid("bill_splits", err)
	}
	return s.WithTx(ctx, func(tx *Store) error {
		args, err := tx.billArgs(&b)
		if err != nil {
			return err
		}
		if err := tx.save(ctx, "bills", []string{"id"}, billCols, args...); err != nil {
			return err
		}
		for _, table := range []string{"bill_splits", "bill_contributions"} {
			if _, err := tx.q.ExecContext(ctx, "DELETE FROM "+table+" WHERE bill_id = ?", b.ID); err != nil {
				return classify(err, table, "delete")
			}
		}
		for _, sp := range splits {
			sp.BillID = b.ID
			if _, err := tx.InsertBillSplit(ctx, sp); err != nil {
				return err
			}
		}
		for _, c := range contributions {
			c.BillID = b.ID
			if _, err := tx.InsertBillContribution(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) BillSplits(ctx context.Context, billID string) ([]finvault.BillSplit, error) {
	return list(s, ctx, "bill_splits", "SELECT bill_id, member_id, amount FROM bill_splits WHERE bill_id = ? ORDER BY rowid",
		func(r scanner) (finvault.BillSplit, error) {
			var sp finvault.BillSplit
			err := r.Scan(&sp.BillID, &sp.MemberID, &sp.Amount)
			return sp, err
		}, billID)
}

func (s *Store) BillContributions(ctx context.Context, billID string) ([]finvault.BillContribution, error) {
	return list(s, ctx, "bill_contributions", "SELECT bill_id, member_id, amount FROM bill_contributions WHERE bill_id = ? ORDER BY rowid",
		func(r scanner) (finvault.BillContribution, error) {
			var c finvault.BillContribution
			err := r.Scan(&c.BillID, &c.MemberID, &c.Amount)
			return c, err
		}, billID)
}

var settlementCols = []string{"id", "group_id", "from_member", "to_member", "amount", "bill_id", "date", "note", "created_at"}

func (s *Store) InsertSettlement(ctx context.Context, st finvault.Settlement) (bool, error) {
	if st.ID == "" || !st.Amount.IsPositive() {
		return false, invalid("settlements", fmt.Errorf("settlement needs an id and a positive amount, got %q %s", st.ID, st.Amount))
	}
	s.stamp(&st.CreatedAt)
	return s.insert(ctx, "settlements", []string{"id"}, settlementCols,
		st.ID, st.GroupID, st.From, st.To, st.Amount, nullString(st.BillID), ts(st.Date), st.Note, ts(st.CreatedAt))
}

func (s *Store) Settlements(ctx context.Context, groupID string) ([]finvault.Settlement, error) {
	return list(s, ctx, "settlements", `SELECT id, group_id, from_member, to_member, amount, bill_id, date, note, created_at
		FROM settlements WHERE group_id = ? ORDER BY date, id`,
		func(r scanner) (finvault.Settlement, error) {
			var st finvault.Settlement
			err := r.Scan(&st.ID, &st.GroupID, &st.From, &st.To, &st.Amount, stringCol{&st.BillID}, timeCol{&st.Date},
				&st.Note, timeCol{&st.CreatedAt})
			return st, err
		}, groupID)
}

// GroupBalances returns the net balance of every member of a group, see
// finvault.Balances.
func (s *Store) GroupBalances(ctx context.Context, groupID string) (map[string]decimal.Decimal, error) {
	bills, err := s.Bills(ctx, groupID)
	if err != nil {
		return nil, err
	}
	var splits []finvault.BillSplit
	var contributions []finvault.BillContribution
	for _, b := range bills {
		sp, err := s.BillSplits(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		c, err := s.BillContributions(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		splits, contributions = append(splits, sp...), append(contributions, c...)
	}
	settlements, err := s.Settlements(ctx, groupID)
	if err != nil {
		return nil, err
	}
	balances := finvault.Balances(splits, contributions, settlements)
	members, err := s.Members(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if _, ok := balances[m.ID]; !ok {
			balances[m.ID] = decimal.Zero
		}
	}
	return balances, nil
}
