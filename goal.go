package finvault

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a savings target.
type Goal struct {
	ID        string
	Name      string
	Target    decimal.Decimal
	Current   decimal.Decimal
	Currency  string
	Deadline  time.Time // zero when there is no deadline
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Progress returns how much of the target has been reached. A goal without
// a target is reported as 0%.
func (g Goal) Progress() Percent { return percentOf(g.Current, g.Target) }

// Remaining returns the amount still missing, never negative.
func (g Goal) Remaining() decimal.Decimal {
	r := g.Target.Sub(g.Current)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

func (g Goal) Validate() error {
	var errs []error
	if g.ID == "" {
		errs = append(errs, errors.New("goal id is required"))
	}
	if g.Target.IsNegative() {
		errs = append(errs, errors.New("goal target must not be negative"))
	}
	return errors.Join(errs...)
}

// GoalHistory is one progress entry of a goal.
type GoalHistory struct {
	ID     string
	GoalID string
	Amount decimal.Decimal
	Date   time.Time
	Note   string
}

// GoalTransactionLink records that a transaction funded a goal.
type GoalTransactionLink struct {
	GoalID        string
	TransactionID string
	LinkedAt      time.Time
}
