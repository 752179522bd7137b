package finvault

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Group is a set of people sharing expenses.
type Group struct {
	ID        string
	Name      string
	Currency  string
	CreatedAt time.Time
}

// GroupMember belongs to exactly one group.
type GroupMember struct {
	ID        string
	GroupID   string
	Name      string
	CreatedAt time.Time
}

// AmountMode tells whether a tax or discount is an absolute amount or a
// percentage of the bill amount.
type AmountMode string

const (
	Absolute   AmountMode = "abs"
	Percentage AmountMode = "pct"
)

// ParseAmountMode parses an amount mode, defaulting to Absolute.
func ParseAmountMode(s string) AmountMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pct", "percent", "percentage", "%":
		return Percentage
	default:
		return Absolute
	}
}

// SplitMode is how a bill is divided between members.
type SplitMode string

const (
	SplitEqual   SplitMode = "equal"
	SplitExact   SplitMode = "exact"
	SplitPercent SplitMode = "percent"
)

// ParseSplitMode parses a split mode, defaulting to SplitEqual.
func ParseSplitMode(s string) SplitMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact", "custom", "amount", "unequal":
		return SplitExact
	case "percent", "percentage", "pct":
		return SplitPercent
	default:
		return SplitEqual
	}
}

// Bill is an expense of a group, split between members.
type Bill struct {
	ID           string
	GroupID      string
	Title        string
	Amount       decimal.Decimal
	Tax          decimal.Decimal
	TaxMode      AmountMode
	Discount     decimal.Decimal
	DiscountMode AmountMode
	FinalAmount  decimal.Decimal // see ComputeFinal
	PaidBy       string          // member id, empty when unknown
	SplitMode    SplitMode
	Date         time.Time
	CreatedAt    time.Time
}

var hundred = decimal.NewFromInt(100)

func resolve(v decimal.Decimal, mode AmountMode, base decimal.Decimal) decimal.Decimal {
	if mode == Percentage {
		return base.Mul(v).Div(hundred)
	}
	return v
}

// ComputeFinal returns amount + tax - discount, where a percentage tax or
// discount is relative to the amount. The result is rounded to cents and
// never negative.
func (b Bill) ComputeFinal() decimal.Decimal {
	tax := resolve(b.Tax, b.TaxMode, b.Amount)
	discount := resolve(b.Discount, b.DiscountMode, b.Amount)
	final := b.Amount.Add(tax).Sub(discount).Round(2)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}

func (b Bill) Validate() error {
	var errs []error
	if b.ID == "" {
		errs = append(errs, errors.New("bill id is required"))
	}
	if b.GroupID == "" {
		errs = append(errs, errors.New("bill group is required"))
	}
	if b.Amount.IsNegative() {
		errs = append(errs, errors.New("bill amount must not be negative"))
	}
	if !b.FinalAmount.Equal(b.ComputeFinal()) {
		errs = append(errs, fmt.Errorf("bill final amount %s does not match computed %s", b.FinalAmount, b.ComputeFinal()))
	}
	return errors.Join(errs...)
}

// BillSplit is the share of a bill owed by a member.
type BillSplit struct {
	BillID   string
	MemberID string
	Amount   decimal.Decimal
}

// BillContribution is the part of a bill actually paid by a member.
type BillContribution struct {
	BillID   string
	MemberID string
	Amount   decimal.Decimal
}

// Settlement is a transfer between two members, optionally settling a bill.
type Settlement struct {
	ID        string
	GroupID   string
	From      string // member paying
	To        string // member receiving
	Amount    decimal.Decimal
	BillID    string
	Date      time.Time
	Note      string
	CreatedAt time.Time
}

// ErrSplitMismatch is returned when the splits of a bill do not add up to
// its final amount.
var ErrSplitMismatch = errors.New("splits do not add up to the bill final amount")

// SplitBill divides final between members. For SplitEqual shares is
// ignored; for SplitExact it holds the amount of each member; for
// SplitPercent the percentage of each member. Leftover cents from rounding go
// to the first members, so the splits always add up to final exactly.
func SplitBill(billID string, final decimal.Decimal, mode SplitMode, members []string, shares map[string]decimal.Decimal) ([]BillSplit, error) {
	if len(members) == 0 {
		return nil, errors.New("a bill needs at least one member to split")
	}
	if mode == SplitExact || mode == SplitPercent {
		for _, m := range members {
			if shares[m].IsNegative() {
				return nil, fmt.Errorf("negative share %s for member %q", shares[m], m)
			}
		}
	}
	amounts := make([]decimal.Decimal, len(members))
	switch mode {
	case SplitEqual:
		each := final.Div(decimal.NewFromInt(int64(len(members)))).RoundDown(2)
		for i := range amounts {
			amounts[i] = each
		}
	case SplitExact:
		total := decimal.Zero
		for i, m := range members {
			amounts[i] = shares[m]
			total = total.Add(shares[m])
		}
		if !total.Equal(final) {
			return nil, fmt.Errorf("%w: %s != %s", ErrSplitMismatch, total, final)
		}
	case SplitPercent:
		total := decimal.Zero
		for i, m := range members {
			amounts[i] = final.Mul(shares[m]).Div(hundred).RoundDown(2)
			total = total.Add(shares[m])
		}
		if !total.Equal(hundred) {
			return nil, fmt.Errorf("%w: percentages add up to %s", ErrSplitMismatch, total)
		}
	default:
		return nil, fmt.Errorf("unknown split mode %q", mode)
	}
	distributeCents(amounts, final)

	splits := make([]BillSplit, len(members))
	for i, m := range members {
		splits[i] = BillSplit{BillID: billID, MemberID: m, Amount: amounts[i]}
	}
	return splits, nil
}

// distributeCents adds the rounding leftover, one cent at a time, to the
// first amounts.
func distributeCents(amounts []decimal.Decimal, final decimal.Decimal) {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	cent := decimal.New(1, -2)
	left := final.Sub(total).Div(cent).IntPart()
	for i := 0; left > 0; i = (i + 1) % len(amounts) {
		amounts[i] = amounts[i].Add(cent)
		left--
	}
}

// CheckSplits verifies that splits add up to the final amount of b.
func CheckSplits(b Bill, splits []BillSplit) error {
	total := decimal.Zero
	for _, s := range splits {
		total = total.Add(s.Amount)
	}
	if !total.Equal(b.FinalAmount) {
		return fmt.Errorf("%w: bill %s: %s != %s", ErrSplitMismatch, b.ID, total, b.FinalAmount)
	}
	return nil
}

// Balances returns the net balance of each member: what they paid and
// sent minus what they owe and received. A positive balance is owed to
// the member.
func Balances(splits []BillSplit, contributions []BillContribution, settlements []Settlement) map[string]decimal.Decimal {
	net := make(map[string]decimal.Decimal)
	for _, c := range contributions {
		net[c.MemberID] = net[c.MemberID].Add(c.Amount)
	}
	for _, s := range splits {
		net[s.MemberID] = net[s.MemberID].Sub(s.Amount)
	}
	for _, s := range settlements {
		net[s.From] = net[s.From].Add(s.Amount)
		net[s.To] = net[s.To].Sub(s.Amount)
	}
	return net
}

// Transfer is a suggested payment to settle balances.
type Transfer struct {
	From, To string
	Amount   decimal.Decimal
}

// SettleUp suggests a short list of transfers that brings every balance to
// zero, matching the largest debtor with the largest creditor first.
func SettleUp(balances map[string]decimal.Decimal) []Transfer {
	type entry struct {
		member string
		amount decimal.Decimal
	}
	var debtors, creditors []entry
	for m, b := range balances {
		switch {
		case b.IsNegative():
			debtors = append(debtors, entry{m, b.Neg()})
		case b.IsPositive():
			creditors = append(creditors, entry{m, b})
		}
	}
	byAmount := func(s []entry) {
		sort.Slice(s, func(i, j int) bool {
			if !s[i].amount.Equal(s[j].amount) {
				return s[i].amount.GreaterThan(s[j].amount)
			}
			return s[i].member < s[j].member
		})
	}
	byAmount(debtors)
	byAmount(creditors)

	var transfers []Transfer
	for i, j := 0, 0; i < len(debtors) && j < len(creditors); {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		transfers = append(transfers, Transfer{From: debtors[i].member, To: creditors[j].member, Amount: amount})
		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)
		if debtors[i].amount.IsZero() {
			i++
		}
		if creditors[j].amount.IsZero() {
			j++
		}
	}
	return transfers
}
