package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/etnz/finvault"
	"github.com/shopspring/decimal"
)

// Singleton records live in tables pinned to the row id 1. Loading a
// record that was never saved returns its default value.

func (s *Store) InsertAchievement(ctx context.Context, a finvault.Achievement) (bool, error) {
	if a.ID == "" {
		return false, invalid("achievements", errors.New("achievement id is required"))
	}
	s.stamp(&a.UnlockedAt)
	return s.insert(ctx, "achievements", []string{"id"}, []string{"id", "unlocked_at"}, a.ID, ts(a.UnlockedAt))
}

func (s *Store) ListAchievements(ctx context.Context) ([]finvault.Achievement, error) {
	return list(s, ctx, "achievements", "SELECT id, unlocked_at FROM achievements ORDER BY unlocked_at, id",
		func(r scanner) (finvault.Achievement, error) {
			var a finvault.Achievement
			err := r.Scan(&a.ID, timeCol{&a.UnlockedAt})
			return a, err
		})
}

// LoadProgress returns the progress record, level 1 when never saved.
func (s *Store) LoadProgress(ctx context.Context) (finvault.Progress, error) {
	p := finvault.Progress{Level: 1}
	err := s.q.QueryRowContext(ctx, "SELECT xp, level, streak, last_active FROM progress WHERE id = 1").
		Scan(&p.XP, &p.Level, &p.Streak, timeCol{&p.LastActive})
	if errors.Is(err, sql.ErrNoRows) {
		return finvault.Progress{Level: 1}, nil
	}
	if err != nil {
		return p, fmt.Errorf("load progress: %w", err)
	}
	return p, nil
}

func (s *Store) SaveProgress(ctx context.Context, p finvault.Progress) error {
	if p.XP < 0 || p.Level < 0 || p.Streak < 0 {
		return invalid("progress", fmt.Errorf("progress counters must not be negative: %+v", p))
	}
	return s.save(ctx, "progress", []string{"id"}, []string{"id", "xp", "level", "streak", "last_active"},
		1, p.XP, p.Level, p.Streak, nullTS(p.LastActive))
}

type categoryLimit struct {
	name  string
	limit decimal.Decimal
}

// LoadBudget returns the budget with its category limits.
func (s *Store) LoadBudget(ctx context.Context) (finvault.Budget, error) {
	b := finvault.Budget{Categories: map[string]decimal.Decimal{}}
	err := s.q.QueryRowContext(ctx, "SELECT currency, monthly_limit, updated_at FROM budget WHERE id = 1").
		Scan(&b.Currency, &b.MonthlyLimit, timeCol{&b.UpdatedAt})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return b, fmt.Errorf("load budget: %w", err)
	}
	categories, err := list(s, ctx, "budget_categories", "SELECT category, monthly_limit FROM budget_categories",
		func(r scanner) (categoryLimit, error) {
			var c categoryLimit
			err := r.Scan(&c.name, &c.limit)
			return c, err
		})
	if err != nil {
		return b, err
	}
	for _, c := range categories {
		b.Categories[c.name] = c.limit
	}
	return b, nil
}

// SaveBudget replaces the budget and all its category limits.
func (s *Store) SaveBudget(ctx context.Context, b finvault.Budget) error {
	if b.MonthlyLimit.IsNegative() {
		return invalid("budget", errors.New("monthly limit must not be negative"))
	}
	b.UpdatedAt = s.now()
	return s.WithTx(ctx, func(tx *Store) error {
		if err := tx.save(ctx, "budget", []string{"id"}, []string{"id", "currency", "monthly_limit", "updated_at"},
			1, b.Currency, b.MonthlyLimit, ts(b.UpdatedAt)); err != nil {
			return err
		}
		if _, err := tx.q.ExecContext(ctx, "DELETE FROM budget_categories"); err != nil {
			return classify(err, "budget_categories", "delete")
		}
		for name, limit := range b.Categories {
			if _, err := tx.insert(ctx, "budget_categories", []string{"category"}, []string{"category", "monthly_limit"},
				name, limit); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadPreferences returns the reporting preferences, FIFO when never saved.
func (s *Store) LoadPreferences(ctx context.Context) (finvault.Preferences, error) {
	var p finvault.Preferences
	var method string
	err := s.q.QueryRowContext(ctx, "SELECT base_currency, cost_basis FROM preferences WHERE id = 1").
		Scan(&p.BaseCurrency, &method)
	if errors.Is(err, sql.ErrNoRows) {
		return finvault.Preferences{CostBasis: finvault.FIFO}, nil
	}
	if err != nil {
		return p, fmt.Errorf("load preferences: %w", err)
	}
	if p.CostBasis, err = finvault.ParseCostBasisMethod(method); err != nil {
		return p, fmt.Errorf("load preferences: %w", err)
	}
	return p, nil
}

func (s *Store) SavePreferences(ctx context.Context, p finvault.Preferences) error {
	if p.BaseCurrency != "" {
		if err := finvault.ValidateCurrency(p.BaseCurrency); err != nil {
			return invalid("preferences", err)
		}
	}
	return s.save(ctx, "preferences", []string{"id"}, []string{"id", "base_currency", "cost_basis"},
		1, p.BaseCurrency, p.CostBasis.String())
}

// InsertProgress writes p only when no progress record exists yet.
func (s *Store) InsertProgress(ctx context.Context, p finvault.Progress) (bool, error) {
	if p.XP < 0 || p.Level < 0 || p.Streak < 0 {
		return false, invalid("progress", fmt.Errorf("progress counters must not be negative: %+v", p))
	}
	return s.insert(ctx, "progress", []string{"id"}, []string{"id", "xp", "level", "streak", "last_active"},
		1, p.XP, p.Level, p.Streak, nullTS(p.LastActive))
}

// InsertBudget writes b and its categories only when no budget exists yet.
func (s *Store) InsertBudget(ctx context.Context, b finvault.Budget) (inserted bool, err error) {
	if b.MonthlyLimit.IsNegative() {
		return false, invalid("budget", errors.New("monthly limit must not be negative"))
	}
	s.stamp(&b.UpdatedAt)
	err = s.WithTx(ctx, func(tx *Store) error {
		inserted, err = tx.insert(ctx, "budget", []string{"id"}, []string{"id", "currency", "monthly_limit", "updated_at"},
			1, b.Currency, b.MonthlyLimit, ts(b.UpdatedAt))
		if err != nil || !inserted {
			return err
		}
		for name, limit := range b.Categories {
			if _, err := tx.insert(ctx, "budget_categories", []string{"category"}, []string{"category", "monthly_limit"},
				name, limit); err != nil {
				return err
			}
		}
		return nil
	})
	return inserted, err
}

// InsertPreferences writes p only when no preferences exist yet.
func (s *Store) InsertPreferences(ctx context.Context, p finvault.Preferences) (bool, error) {
	if p.BaseCurrency != "" {
		if err := finvault.ValidateCurrency(p.BaseCurrency); err != nil {
			return false, invalid("preferences", err)
		}
	}
	return s.insert(ctx, "preferences", []string{"id"}, []string{"id", "base_currency", "cost_basis"},
		1, p.BaseCurrency, p.CostBasis.String())
}
