package migration

import (
	"context"
	"errors"
	"strings"

	"github.com/etnz/finvault"
	"github.com/etnz/finvault/legacy"
	"github.com/etnz/finvault/store"
	"github.com/shopspring/decimal"
)

func (r *runner) accounts(ctx context.Context, tx *store.Store, t *tally) error {
	list, err := r.r.Accounts()
	if err != nil {
		return err
	}
	for i, la := range list {
		kind, err := finvault.ParseAccountKind(la.Type.String())
		if err != nil {
			kind = finvault.OtherKind
		}
		a := finvault.Account{
			ID:                idOr(la.ID, "accounts", "account", i),
			Name:              textOr(la.Name, "Account"),
			Institution:       la.Institution.String(),
			MaskedNumber:      la.MaskedNumber.String(),
			Balance:           la.Balance.Decimal(),
			Kind:              kind,
			IncludeInNetWorth: la.IncludeInNetWorth.Or(true),
			CreatedAt:         la.CreatedAt.Or(r.now),
			UpdatedAt:         la.UpdatedAt.Or(r.now),
		}
		if a.MaskedNumber == "" && la.Last4 != "" {
			a.MaskedNumber = "****" + la.Last4.String()
		}
		if kind.IsLiability() {
			a.APR = nullable(la.APR)
			a.CreditLimit = nullable(la.CreditLimit)
			a.MinPaymentPercent = nullable(la.MinPaymentPercent)
		}
		ok, err := t.inserted(tx.InsertAccount(ctx, a))
		if err != nil {
			return err
		}
		if ok {
			t.Accounts++
		}
	}
	return nil
}

func nullable(n legacy.Number) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: n.Value, Valid: n.Valid}
}

// transactionType reads the legacy type. An unknown type is deduced from
// the sign of the amount.
func transactionType(s string, amount decimal.Decimal) finvault.TransactionType {
	if typ, err := finvault.ParseTransactionType(s); err == nil {
		return typ
	}
	if amount.IsPositive() {
		return finvault.Income
	}
	return finvault.Expense
}

// accountLink resolves the legacy account reference of a transaction: an
// account id, else a case-insensitive account name. It returns "" when
// nothing matches.
func accountLink(ctx context.Context, tx *store.Store, refs ...legacy.Text) (string, error) {
	for _, ref := range refs {
		name := strings.TrimSpace(ref.String())
		if name == "" {
			continue
		}
		a, err := tx.GetAccount(ctx, name)
		if err == nil {
			return a.ID, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return "", err
		}
		a, err = tx.FindAccountByName(ctx, name)
		if err == nil {
			return a.ID, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return "", err
		}
	}
	return "", nil
}

func (r *runner) transactions(ctx context.Context, tx *store.Store, t *tally) error {
	list, err := r.r.Transactions()
	if err != nil {
		return err
	}
	for i, lt := range list {
		accountID, err := accountLink(ctx, tx, lt.AccountID, lt.Account)
		if err != nil {
			return err
		}
		amount := lt.Amount.Decimal()
		txn := finvault.Transaction{
			ID:        idOr(lt.ID, "transactions", "transaction", i),
			Type:      transactionType(lt.Type.String(), amount),
			Amount:    amount.Abs(),
			Category:  textOr(lt.Category, "uncategorized"),
			Note:      textOr(lt.Note, lt.Description.String()),
			Date:      lt.Date.Or(r.now),
			AccountID: accountID,
			CreatedAt: lt.CreatedAt.Or(r.now),
			UpdatedAt: lt.UpdatedAt.Or(r.now),
		}
		ok, err := t.inserted(tx.InsertTransaction(ctx, txn))
		if err != nil {
			return err
		}
		if ok {
			t.Transactions++
		}
	}
	return nil
}

// portfolioID is shared by the portfolio and holding phases.
func portfolioID(p legacy.Portfolio, i int) string { return idOr(p.ID, "portfolios", "portfolio", i) }

// portfolioCurrency returns the legacy base currency, USD when missing or
// unknown.
func portfolioCurrency(p legacy.Portfolio) string {
	cur := strings.ToUpper(textOr(p.BaseCurrency, textOr(p.Currency, "USD")))
	if finvault.ValidateCurrency(cur) != nil {
		return "USD"
	}
	return cur
}

func (r *runner) portfolios(ctx context.Context, tx *store.Store, t *tally) error {
	list, err := r.r.Portfolios()
	if err != nil {
		return err
	}
	for i, lp := range list {
		typ, err := finvault.ParsePortfolioType(lp.Type.String())
		if err != nil {
			typ = finvault.Live
		}
		p := finvault.Portfolio{
			ID:              portfolioID(lp, i),
			Name:            textOr(lp.Name, "Portfolio"),
			BaseCurrency:    portfolioCurrency(lp),
			Benchmark:       lp.Benchmark.String(),
			Type:            typ,
			CashBalance:     lp.Cash.Decimal(),
			Archived:        lp.Archived.Or(false),
			TrackingEnabled: lp.TrackingEnabled.Or(true),
			CreatedAt:       lp.CreatedAt.Or(r.now),
			UpdatedAt:       lp.UpdatedAt.Or(r.now),
		}
		ok, err := t.inserted(tx.InsertPortfolio(ctx, p))
		if err != nil {
			return err
		}
		if ok {
			t.Portfolios++
		}
		for _, sym := range lp.Watchlist {
			if finvault.NormalizeSymbol(sym.String()) == "" {
				continue
			}
			if _, err := t.inserted(tx.Watch(ctx, finvault.WatchlistEntry{PortfolioID: p.ID, Symbol: sym.String()})); err != nil {
				return err
			}
		}
		if err := r.cash(ctx, tx, t, p, lp); err != nil {
			return err
		}
	}
	return nil
}

// cash migrates the cash history of a portfolio. A balance without history
// becomes an opening event; a history that does not add up to the balance
// gets an adjustment event dated now.
func (r *runner) cash(ctx context.Context, tx *store.Store, t *tally, p finvault.Portfolio, lp legacy.Portfolio) error {
	record := func(e finvault.CashEvent) error {
		_, err := t.inserted(tx.RecordCashEvent(ctx, e))
		return err
	}
	if len(lp.CashHistory) == 0 && !p.CashBalance.IsZero() {
		if err := record(finvault.CashEvent{
			ID:          derive(p.ID, "cash-opening", 0),
			PortfolioID: p.ID,
			Amount:      p.CashBalance,
			Date:        p.CreatedAt,
			Note:        "opening balance",
		}); err != nil {
			return err
		}
	}
	for j, le := range lp.CashHistory {
		amount := le.Amount.Decimal()
		switch strings.ToLower(le.Type.String()) {
		case "withdrawal", "withdraw", "out", "debit":
			amount = amount.Abs().Neg()
		}
		if err := record(finvault.CashEvent{
			ID:          idOr(le.ID, p.ID, "cash", j),
			PortfolioID: p.ID,
			Amount:      amount,
			Date:        le.Date.Or(p.CreatedAt),
			Note:        le.Note.String(),
		}); err != nil {
			return err
		}
	}
	if !lp.Cash.Valid {
		return nil
	}
	events, err := tx.ListCashEvents(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	diff := lp.Cash.Decimal().Sub(finvault.CashBalance(events, r.now))
	if diff.IsZero() {
		return nil
	}
	return record(finvault.CashEvent{
		ID:          derive(p.ID, "cash-adjustment", 0),
		PortfolioID: p.ID,
		Amount:      diff,
		Date:        r.now,
		Note:        "adjustment to the recorded cash balance",
	})
}

// ownedHolding is a legacy holding with the id of its portfolio.
type ownedHolding struct {
	legacy.Holding
	portfolio string
	kind      string
	index     int
}

func (r *runner) holdings(ctx context.Context, tx *store.Store, t *tally) error {
	portfolios, err := r.r.Portfolios()
	if err != nil {
		return err
	}
	var all []ownedHolding
	for i, lp := range portfolios {
		pid := portfolioID(lp, i)
		for j, lh := range lp.Holdings {
			all = append(all, ownedHolding{lh, pid, "holding", j})
		}
	}
	standalone, err := r.r.Holdings()
	if err != nil {
		return err
	}
	for j, lh := range standalone {
		all = append(all, ownedHolding{lh, lh.PortfolioID.String(), "standalone-holding", j})
	}

	for _, oh := range all {
		if err := r.holding(ctx, tx, t, oh); err != nil {
			return err
		}
	}
	return nil
}

// holding writes one legacy holding and its lots. A holding whose symbol is
// already held, not archived, in the portfolio gets its lots merged.
func (r *runner) holding(ctx context.Context, tx *store.Store, t *tally, oh ownedHolding) error {
	id := idOr(oh.ID, oh.portfolio, oh.kind, oh.index)
	symbol := finvault.NormalizeSymbol(oh.Symbol.String())
	if symbol == "" {
		r.skip(t, "holding", id, "no symbol")
		return nil
	}
	p, err := tx.GetPortfolio(ctx, oh.portfolio)
	if errors.Is(err, store.ErrNotFound) {
		r.skip(t, "holding", id, "unknown portfolio "+oh.portfolio)
		return nil
	}
	if err != nil {
		return err
	}

	h := finvault.Holding{
		ID:          id,
		PortfolioID: p.ID,
		Symbol:      symbol,
		Name:        oh.Name.String(),
		Type:        finvault.ParseInstrumentType(oh.Type.String()),
		Currency:    p.BaseCurrency,
		Archived:    oh.Archived.Or(false),
		SortOrder:   oh.SortOrder.Int(),
		CreatedAt:   oh.CreatedAt.Or(r.now),
		UpdatedAt:   oh.UpdatedAt.Or(r.now),
	}
	if cur := strings.ToUpper(oh.Currency.String()); finvault.ValidateCurrency(cur) == nil {
		h.Currency = cur
	}

	other, err := taken(id, p.ID, func(id string) (finvault.Holding, error) { return tx.GetHolding(ctx, id) },
		func(h finvault.Holding) string { return h.PortfolioID })
	if err != nil {
		return err
	}
	if other {
		scoped := derive(p.ID, oh.kind, oh.index)
		r.log.Debug().Str("holding", id).Str("as", scoped).Msg("holding id used by another portfolio")
		id, h.ID = scoped, scoped
	}

	target, err := tx.GetHolding(ctx, id)
	switch {
	case err == nil:
	case !errors.Is(err, store.ErrNotFound):
		return err
	case !h.Archived:
		target, err = tx.ActiveHolding(ctx, p.ID, symbol)
		if err == nil {
			r.log.Debug().Str("holding", id).Str("into", target.ID).Msg("merging legacy holding")
			break
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		fallthrough
	default:
		ok, err := t.inserted(tx.InsertHolding(ctx, h))
		if err != nil {
			return err
		}
		if ok {
			t.Holdings++
		}
		target = h
	}

	lots := oh.Lots
	if len(lots) == 0 && oh.Quantity.Decimal().IsPositive() {
		lots = []legacy.Lot{{
			ID:       legacy.Text(derive(id, "opening-lot", 0)),
			Side:     "buy",
			Quantity: oh.Quantity,
			Price:    oh.AvgCost,
			Date:     legacy.Time{Value: h.CreatedAt, Valid: true},
			Note:     "opening position",
		}}
	}
	for j, ll := range lots {
		l, ok := r.lot(ll, target.ID, id, j)
		if !ok {
			r.skip(t, "lot", l.ID, "invalid quantity or price")
			continue
		}
		other, err := taken(l.ID, target.ID, func(id string) (finvault.Lot, error) { return tx.GetLot(ctx, id) },
			func(l finvault.Lot) string { return l.HoldingID })
		if err != nil {
			return err
		}
		if other {
			l.ID = derive(id, "lot", j)
		}
		inserted, err := t.inserted(tx.InsertLot(ctx, l))
		if err != nil {
			return err
		}
		if inserted {
			t.Lots++
		}
	}
	return nil
}

// lot converts a legacy lot. Its id is derived from the legacy holding id,
// not the target, so that a merged holding keeps stable lot ids.
func (r *runner) lot(ll legacy.Lot, holdingID, owner string, j int) (finvault.Lot, bool) {
	qty := ll.Quantity.Decimal()
	side, err := finvault.ParseSide(textOr(ll.Side, ll.Type.String()))
	if err != nil {
		side = finvault.Buy
		if qty.IsNegative() {
			side = finvault.Sell
		}
	}
	fee := ll.Fee.Decimal()
	if fee.IsNegative() {
		fee = decimal.Zero
	}
	l := finvault.Lot{
		ID:        idOr(ll.ID, owner, "lot", j),
		HoldingID: holdingID,
		Side:      side,
		Quantity:  qty.Abs(),
		Price:     ll.Price.Decimal(),
		Fee:       fee,
		Date:      ll.Date.Or(r.now),
		Note:      ll.Note.String(),
	}
	return l, l.Quantity.IsPositive() && !l.Price.IsNegative()
}

func (r *runner) goals(ctx context.Context, tx *store.Store, t *tally) error {
	list, err := r.r.Goals()
	if err != nil {
		return err
	}
	for i, lg := range list {
		g := finvault.Goal{
			ID:        idOr(lg.ID, "goals", "goal", i),
			Name:      textOr(lg.Name, "Goal"),
			Target:    lg.Target.Decimal().Abs(),
			Current:   lg.Current.Decimal(),
			Currency:  strings.ToUpper(lg.Currency.String()),
			Deadline:  lg.Deadline.Value,
			CreatedAt: lg.CreatedAt.Or(r.now),
			UpdatedAt: lg.UpdatedAt.Or(r.now),
		}
		ok, err := t.inserted(tx.InsertGoal(ctx, g))
		if err != nil {
			return err
		}
		if ok {
			t.Goals++
		}
		for j, lh := range lg.History {
			if _, err := t.inserted(tx.InsertGoalHistory(ctx, finvault.GoalHistory{
				ID:     idOr(lh.ID, g.ID, "history", j),
				GoalID: g.ID,
				Amount: lh.Amount.Decimal(),
				Date:   lh.Date.Or(r.now),
				Note:   lh.Note.String(),
			})); err != nil {
				return err
			}
		}
		for _, txID := range lg.LinkedTransactions {
			if _, err := tx.GetTransaction(ctx, txID.String()); errors.Is(err, store.ErrNotFound) {
				r.skip(t, "goal link", g.ID+"/"+txID.String(), "unknown transaction")
				continue
			} else if err != nil {
				return err
			}
			if _, err := t.inserted(tx.LinkGoalTransaction(ctx, finvault.GoalTransactionLink{
				GoalID:        g.ID,
				TransactionID: txID.String(),
				LinkedAt:      g.UpdatedAt,
			})); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *runner) progress(ctx context.Context, tx *store.Store, t *tally) error {
	list, err := r.r.Achievements()
	if err != nil {
		return err
	}
	for _, la := range list {
		if la.ID == "" {
			r.skip(t, "achievement", "", "no id")
			continue
		}
		a := finvault.Achievement{ID: la.ID.String(), UnlockedAt: la.UnlockedAt.Or(r.now)}
		if _, err := t.inserted(tx.InsertAchievement(ctx, a)); err != nil {
			return err
		}
	}
	lp, ok, err := r.r.Progress()
	if err != nil || !ok {
		return err
	}
	p := finvault.Progress{
		XP:         max(lp.XP.Int(), 0),
		Level:      max(lp.Level.Int(), 1),
		Streak:     max(lp.Streak.Int(), 0),
		LastActive: lp.LastActive.Value,
	}
	_, err = t.inserted(tx.InsertProgress(ctx, p))
	return err
}

func (r *runner) groups(ctx context.Context, tx *store.Store, t *tally) error {
	list, err := r.r.Groups()
	if err != nil {
		return err
	}
	for i, lg := range list {
		g := finvault.Group{
			ID:        idOr(lg.ID, "groups", "group", i),
			Name:      textOr(lg.Name, "Group"),
			Currency:  strings.ToUpper(lg.Currency.String()),
			CreatedAt: lg.CreatedAt.Or(r.now),
		}
		ok, err := t.inserted(tx.InsertGroup(ctx, g))
		if err != nil {
			return err
		}
		if ok {
			t.Groups++
		}
		members, err := r.members(ctx, tx, t, g, lg.Members)
		if err != nil {
			return err
		}
		bills := make(map[string]bool)
		for j, lb := range lg.Bills {
			id, err := r.bill(ctx, tx, t, g, members, lb, j)
			if err != nil {
				return err
			}
			bills[id] = id != ""
		}
		for j, ls := range lg.Settlements {
			st := finvault.Settlement{
				ID:      idOr(ls.ID, g.ID, "settlement", j),
				GroupID: g.ID,
				From:    members.resolve(ls.From),
				To:      members.resolve(ls.To),
				Amount:  ls.Amount.Decimal(),
				Date:    ls.Date.Or(r.now),
				Note:    ls.Note.String(),
			}
			if st.From == "" || st.To == "" || st.From == st.To || !st.Amount.IsPositive() {
				r.skip(t, "settlement", st.ID, "unknown members or non positive amount")
				continue
			}
			if b := ls.BillID.String(); bills[b] {
				st.BillID = b
			}
			if _, err := t.inserted(tx.InsertSettlement(ctx, st)); err != nil {
				return err
			}
		}
	}
	return nil
}

// roster maps the legacy references of members, ids or names, to member ids.
type roster struct {
	ids   []string
	byRef map[string]string
}

func (m roster) resolve(ref legacy.Text) string {
	return m.byRef[strings.ToLower(strings.TrimSpace(ref.String()))]
}

func (r *runner) members(ctx context.Context, tx *store.Store, t *tally, g finvault.Group, list []legacy.Member) (roster, error) {
	m := roster{byRef: make(map[string]string)}
	for j, lm := range list {
		member := finvault.GroupMember{
			ID:        idOr(lm.ID, g.ID, "member", j),
			GroupID:   g.ID,
			Name:      textOr(lm.Name, "Member"),
			CreatedAt: g.CreatedAt,
		}
		other, err := taken(member.ID, g.ID, func(id string) (finvault.GroupMember, error) { return tx.GetMember(ctx, id) },
			func(m finvault.GroupMember) string { return m.GroupID })
		if err != nil {
			return m, err
		}
		if other {
			r.log.Debug().Str("member", member.ID).Str("group", g.ID).Msg("member id used by another group")
			member.ID = derive(g.ID, "member", j)
		}
		// references to the legacy id resolve to the stored one.
		if legacyID := strings.ToLower(strings.TrimSpace(lm.ID.String())); legacyID != "" {
			m.byRef[legacyID] = member.ID
		}
		if _, err := t.inserted(tx.InsertMember(ctx, member)); err != nil {
			return m, err
		}
		m.ids = append(m.ids, member.ID)
		m.byRef[strings.ToLower(member.ID)] = member.ID
		if name := strings.ToLower(strings.TrimSpace(lm.Name.String())); name != "" {
			if _, dup := m.byRef[name]; !dup {
				m.byRef[name] = member.ID
			}
		}
	}
	return m, nil
}

// bill writes a legacy bill with its splits and contributions, and returns
// its id, or "" when it was skipped.
func (r *runner) bill(ctx context.Context, tx *store.Store, t *tally, g finvault.Group, members roster, lb legacy.Bill, j int) (string, error) {
	b := finvault.Bill{
		ID:           idOr(lb.ID, g.ID, "bill", j),
		GroupID:      g.ID,
		Title:        textOr(lb.Title, "Bill"),
		Amount:       lb.Amount.Decimal().Abs(),
		Tax:          lb.Tax.Decimal(),
		TaxMode:      finvault.ParseAmountMode(lb.TaxMode.String()),
		Discount:     lb.Discount.Decimal(),
		DiscountMode: finvault.ParseAmountMode(lb.DiscountMode.String()),
		PaidBy:       members.resolve(lb.PaidBy),
		SplitMode:    finvault.ParseSplitMode(lb.SplitMode.String()),
		Date:         lb.Date.Or(r.now),
		CreatedAt:    lb.CreatedAt.Or(r.now),
	}
	b.FinalAmount = b.ComputeFinal()
	if len(members.ids) == 0 {
		r.skip(t, "bill", b.ID, "group has no members")
		return "", nil
	}

	splits, mismatch := legacySplits(b, members, lb.Splits)
	if mismatch {
		r.log.Debug().Str("bill", b.ID).Msg("legacy splits do not add up, splitting equally")
	}
	var contributions []finvault.BillContribution
	for _, s := range lb.Contributions {
		if id := members.resolve(s.MemberID); id != "" && s.Amount.Decimal().IsPositive() {
			contributions = append(contributions, finvault.BillContribution{BillID: b.ID, MemberID: id, Amount: s.Amount.Decimal()})
		}
	}
	if len(contributions) == 0 && b.PaidBy != "" && b.FinalAmount.IsPositive() {
		contributions = []finvault.BillContribution{{BillID: b.ID, MemberID: b.PaidBy, Amount: b.FinalAmount}}
	}

	ok, err := t.inserted(tx.InsertBill(ctx, b))
	if err != nil || !ok {
		return b.ID, err
	}
	for _, s := range splits {
		if _, err := t.inserted(tx.InsertBillSplit(ctx, s)); err != nil {
			return b.ID, err
		}
	}
	for _, c := range contributions {
		if _, err := t.inserted(tx.InsertBillContribution(ctx, c)); err != nil {
			return b.ID, err
		}
	}
	return b.ID, nil
}

// legacySplits returns the legacy splits of b when they add up to its final
// amount, otherwise an equal split over the members of the legacy splits, or
// of the group when none is known.
func legacySplits(b finvault.Bill, members roster, list []legacy.Share) (splits []finvault.BillSplit, mismatch bool) {
	var ids []string
	seen := make(map[string]bool)
	for _, s := range list {
		id := members.resolve(s.MemberID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		splits = append(splits, finvault.BillSplit{BillID: b.ID, MemberID: id, Amount: s.Amount.Decimal()})
	}
	if len(splits) > 0 && finvault.CheckSplits(b, splits) == nil {
		return splits, false
	}
	if len(ids) == 0 {
		ids = members.ids
	}
	// SplitBill never fails with an equal split and at least one member.
	splits, _ = finvault.SplitBill(b.ID, b.FinalAmount, finvault.SplitEqual, ids, nil)
	return splits, len(list) > 0
}

func (r *runner) debts(ctx context.Context, tx *store.Store, t *tally) error {
	list, err := r.r.Debts()
	if err != nil {
		return err
	}
	for i, ld := range list {
		d := finvault.Debt{
			ID:         idOr(ld.ID, "debts", "debt", i),
			Name:       textOr(ld.Name, "Debt"),
			Kind:       finvault.ParseDebtKind(ld.Type.String()),
			Lender:     ld.Lender.String(),
			Balance:    ld.Balance.Decimal().Abs(),
			APR:        ld.APR.Decimal(),
			MinPayment: ld.MinPayment.Decimal(),
			DueDay:     ld.DueDay.Int(),
			CreatedAt:  ld.CreatedAt.Or(r.now),
			UpdatedAt:  ld.UpdatedAt.Or(r.now),
		}
		if d.Kind == finvault.CreditCardDebt {
			r.skip(t, "debt", d.ID, "credit cards are migrated as accounts")
			continue
		}
		if d.DueDay < 0 || d.DueDay > 31 {
			d.DueDay = 0
		}
		ok, err := t.inserted(tx.InsertDebt(ctx, d))
		if err != nil {
			return err
		}
		if ok {
			t.Debts++
		}
	}
	return nil
}

func (r *runner) budget(ctx context.Context, tx *store.Store, t *tally) error {
	lb, ok, err := r.r.Budget()
	if err != nil {
		return err
	}
	if ok {
		b := finvault.Budget{
			Currency:     strings.ToUpper(lb.Currency.String()),
			MonthlyLimit: lb.MonthlyLimit.Decimal().Abs(),
			Categories:   make(map[string]decimal.Decimal, len(lb.Categories)),
			UpdatedAt:    r.now,
		}
		for name, limit := range lb.Categories {
			if name = strings.TrimSpace(name); name != "" {
				b.Categories[name] = limit.Decimal().Abs()
			}
		}
		if _, err := t.inserted(tx.InsertBudget(ctx, b)); err != nil {
			return err
		}
	}

	ls, ok, err := r.r.Settings()
	if err != nil || !ok {
		return err
	}
	method, err := finvault.ParseCostBasisMethod(ls.CostBasis.String())
	if err != nil {
		method = finvault.FIFO
	}
	prefs := finvault.Preferences{CostBasis: method}
	if cur := strings.ToUpper(ls.BaseCurrency.String()); finvault.ValidateCurrency(cur) == nil {
		prefs.BaseCurrency = cur
	}
	_, err = t.inserted(tx.InsertPreferences(ctx, prefs))
	return err
}
