package finvault

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a cash transaction.
type TransactionType string

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

// ParseTransactionType parses a transaction type, accepting the common
// legacy spellings.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense", "debit", "out":
		return Expense, nil
	case "income", "credit", "in":
		return Income, nil
	default:
		return Expense, fmt.Errorf("unknown transaction type: %q", s)
	}
}

// Transaction is an income or an expense. Amount is always an unsigned
// magnitude, the direction is carried by Type.
type Transaction struct {
	ID        string
	Type      TransactionType
	Amount    decimal.Decimal
	Category  string
	Note      string
	Date      time.Time
	AccountID string // empty when not linked to an account
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Signed returns the amount with a negative sign for expenses.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Validate checks a transaction before it is written.
func (t Transaction) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("transaction id is required"))
	}
	if t.Type != Expense && t.Type != Income {
		errs = append(errs, fmt.Errorf("unknown transaction type: %q", t.Type))
	}
	if t.Amount.IsNegative() {
		errs = append(errs, fmt.Errorf("transaction amount must not be negative, got %s", t.Amount))
	}
	return errors.Join(errs...)
}
