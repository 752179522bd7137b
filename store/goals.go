package store

import (
	"context"

	"github.com/etnz/finvault"
)

var goalCols = []string{"id", "name", "target", "current", "currency", "deadline", "created_at", "updated_at"}

const selectGoal = `SELECT id, name, target, current, currency, deadline, created_at, updated_at FROM goals`

func (s *Store) goalArgs(g *finvault.Goal) []any {
	s.stamp(&g.CreatedAt, &g.UpdatedAt)
	return []any{g.ID, g.Name, g.Target, g.Current, g.Currency, nullTS(g.Deadline), ts(g.CreatedAt), ts(g.UpdatedAt)}
}

func scanGoal(r scanner) (finvault.Goal, error) {
	var g finvault.Goal
	err := r.Scan(&g.ID, &g.Name, &g.Target, &g.Current, &g.Currency, timeCol{&g.Deadline},
		timeCol{&g.CreatedAt}, timeCol{&g.UpdatedAt})
	return g, err
}

func (s *Store) InsertGoal(ctx context.Context, g finvault.Goal) (bool, error) {
	if err := invalid("goals", g.Validate()); err != nil {
		return false, err
	}
	return s.insert(ctx, "goals", []string{"id"}, goalCols, s.goalArgs(&g)...)
}

func (s *Store) SaveGoal(ctx context.Context, g finvault.Goal) error {
	if err := invalid("goals", g.Validate()); err != nil {
		return err
	}
	g.UpdatedAt = s.now()
	return s.save(ctx, "goals", []string{"id"}, goalCols, s.goalArgs(&g)...)
}

func (s *Store) GetGoal(ctx context.Context, id string) (finvault.Goal, error) {
	g, err := scanGoal(s.q.QueryRowContext(ctx, selectGoal+" WHERE id = ?", id))
	if err != nil {
		return g, notFound(err, "goals", id)
	}
	return g, nil
}

func (s *Store) ListGoals(ctx context.Context) ([]finvault.Goal, error) {
	return list(s, ctx, "goals", selectGoal+" ORDER BY created_at, id", scanGoal)
}

// DeleteGoal removes a goal, its history and its transaction links.
func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	return s.remove(ctx, "goals", "id", id)
}

func (s *Store) InsertGoalHistory(ctx context.Context, h finvault.GoalHistory) (bool, error) {
	return s.insert(ctx, "goal_history", []string{"id"}, []string{"id", "goal_id", "amount", "date", "note"},
		h.ID, h.GoalID, h.Amount, ts(h.Date), h.Note)
}

// GoalHistory returns the progress entries of a goal, oldest first.
func (s *Store) GoalHistory(ctx context.Context, goalID string) ([]finvault.GoalHistory, error) {
	return list(s, ctx, "goal_history",
		"SELECT id, goal_id, amount, date, note FROM goal_history WHERE goal_id = ? ORDER BY date, id",
		func(r scanner) (finvault.GoalHistory, error) {
			var h finvault.GoalHistory
			err := r.Scan(&h.ID, &h.GoalID, &h.Amount, timeCol{&h.Date}, &h.Note)
			return h, err
		}, goalID)
}

// LinkGoalTransaction records that a transaction funded a goal. Linking
// twice is a no-op.
func (s *Store) LinkGoalTransaction(ctx context.Context, l finvault.GoalTransactionLink) (bool, error) {
	s.stamp(&l.LinkedAt)
	return s.insert(ctx, "goal_transactions", []string{"goal_id", "transaction_id"},
		[]string{"goal_id", "transaction_id", "linked_at"}, l.GoalID, l.TransactionID, ts(l.LinkedAt))
}

// GoalTransactions returns the transactions linked to a goal.
func (s *Store) GoalTransactions(ctx context.Context, goalID string) ([]finvault.Transaction, error) {
	return list(s, ctx, "transactions", `SELECT t.id, t.type, t.amount, t.category, t.note, t.date, t.account_id,
		t.created_at, t.updated_at FROM transactions t JOIN goal_transactions g ON g.transaction_id = t.id
		WHERE g.goal_id = ? ORDER BY t.date, t.id`, scanTransaction, goalID)
}
