package finvault

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind classifies an account. It drives the sign convention of the
// balance: liabilities store the amount owed as a positive balance.
type AccountKind string

const (
	Checking   AccountKind = "checking"
	Savings    AccountKind = "savings"
	CashKind   AccountKind = "cash"
	Credit     AccountKind = "credit"
	Investment AccountKind = "investment"
	Retirement AccountKind = "retirement"
	Loan       AccountKind = "loan"
	Mortgage   AccountKind = "mortgage"
	OtherKind  AccountKind = "other"
)

// ParseAccountKind parses a legacy or user supplied kind. Unknown values
// are reported as an error.
func ParseAccountKind(s string) (AccountKind, error) {
	switch k := AccountKind(strings.ToLower(strings.TrimSpace(s))); k {
	case Checking, Savings, CashKind, Credit, Investment, Retirement, Loan, Mortgage, OtherKind:
		return k, nil
	case "credit_card", "creditcard", "credit card":
		return Credit, nil
	case "brokerage":
		return Investment, nil
	default:
		return OtherKind, fmt.Errorf("unknown account kind: %q", s)
	}
}

// IsLiability reports whether the balance of this kind is an amount owed.
func (k AccountKind) IsLiability() bool {
	switch k {
	case Credit, Loan, Mortgage:
		return true
	default:
		return false
	}
}

// Account is a bank, card, loan or investment account tracked by balance only.
type Account struct {
	ID                string
	Name              string
	Institution       string
	MaskedNumber      string
	Balance           decimal.Decimal
	Kind              AccountKind
	IncludeInNetWorth bool
	// Credit terms, only meaningful for liabilities.
	APR               decimal.NullDecimal
	CreditLimit       decimal.NullDecimal
	MinPaymentPercent decimal.NullDecimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate checks an account before it is written.
func (a Account) Validate() error {
	var errs []error
	if a.ID == "" {
		errs = append(errs, errors.New("account id is required"))
	}
	if strings.TrimSpace(a.Name) == "" {
		errs = append(errs, errors.New("account name is required"))
	}
	if _, err := ParseAccountKind(string(a.Kind)); err != nil {
		errs = append(errs, err)
	}
	if !a.Kind.IsLiability() && (a.APR.Valid || a.CreditLimit.Valid || a.MinPaymentPercent.Valid) {
		errs = append(errs, fmt.Errorf("credit terms are not allowed on a %s account", a.Kind))
	}
	return errors.Join(errs...)
}

// NetWorthContribution returns the signed amount this account adds to net
// worth: assets count positively, liabilities negatively, excluded accounts
// count for zero.
func (a Account) NetWorthContribution() decimal.Decimal {
	if !a.IncludeInNetWorth {
		return decimal.Zero
	}
	if a.Kind.IsLiability() {
		return a.Balance.Neg()
	}
	return a.Balance
}
