package finvault

import (
	"time"

	"github.com/shopspring/decimal"
)

// The records below exist exactly once per store. They are loaded and saved
// as a whole and carry no identifier.

// Budget is the monthly spending plan.
type Budget struct {
	Currency     string
	MonthlyLimit decimal.Decimal
	Categories   map[string]decimal.Decimal // per-category monthly limit
	UpdatedAt    time.Time
}

// Spent sums the expenses of txs per category, over the month containing on.
func (b Budget) Spent(txs []Transaction, on time.Time) map[string]decimal.Decimal {
	y, m, _ := on.Date()
	spent := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		ty, tm, _ := tx.Date.Date()
		if tx.Type != Expense || ty != y || tm != m {
			continue
		}
		spent[tx.Category] = spent[tx.Category].Add(tx.Amount)
	}
	return spent
}

// Progress is the gamification state of the user.
type Progress struct {
	XP         int
	Level      int
	Streak     int
	LastActive time.Time
}

// Achievement is an unlocked badge, identified by its natural key.
type Achievement struct {
	ID         string
	UnlockedAt time.Time
}

// Preferences are the user level reporting defaults.
type Preferences struct {
	BaseCurrency string
	CostBasis    CostBasisMethod
}
