package finvault

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DebtKind classifies a debt that is not tracked as an account.
type DebtKind string

const (
	PersonalDebt   DebtKind = "personal"
	StudentDebt    DebtKind = "student"
	AutoDebt       DebtKind = "auto"
	MedicalDebt    DebtKind = "medical"
	CreditCardDebt DebtKind = "credit_card"
	OtherDebt      DebtKind = "other"
)

// ParseDebtKind normalizes a legacy debt type. Spaces, dashes and camel
// case are accepted, unknown kinds map to OtherDebt.
func ParseDebtKind(s string) DebtKind {
	s = strings.TrimSpace(s)
	if s == strings.ToUpper(s) {
		s = strings.ToLower(s)
	}
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z':
			if i > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			b.WriteRune(r + 'a' - 'A')
		default:
			b.WriteRune(r)
		}
	}
	switch k := DebtKind(b.String()); k {
	case PersonalDebt, StudentDebt, AutoDebt, MedicalDebt, CreditCardDebt:
		return k
	case "creditcard", "card":
		return CreditCardDebt
	case "student_loan":
		return StudentDebt
	case "car", "auto_loan":
		return AutoDebt
	default:
		return OtherDebt
	}
}

// Debt is an amount owed outside of any account. Credit cards are accounts
// of kind Credit and must never be recorded as a Debt, otherwise net worth
// counts them twice.
type Debt struct {
	ID         string
	Name       string
	Kind       DebtKind
	Lender     string
	Balance    decimal.Decimal // amount owed
	APR        decimal.Decimal
	MinPayment decimal.Decimal
	DueDay     int // day of month, 0 when unknown
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (d Debt) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("debt id is required"))
	}
	if d.Kind == CreditCardDebt {
		errs = append(errs, errors.New("credit card debts are tracked as credit accounts"))
	}
	if d.DueDay < 0 || d.DueDay > 31 {
		errs = append(errs, fmt.Errorf("invalid due day %d", d.DueDay))
	}
	return errors.Join(errs...)
}
