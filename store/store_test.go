package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/finvault"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Memory, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	s.SetClock(func() time.Time { return day })
	return s
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func seedPortfolio(t *testing.T, s *Store) (finvault.Portfolio, finvault.Holding) {
	t.Helper()
	ctx := context.Background()
	p := finvault.Portfolio{ID: "p1", Name: "Main", BaseCurrency: "USD", Type: finvault.Live, TrackingEnabled: true}
	ok, err := s.InsertPortfolio(ctx, p)
	require.NoError(t, err)
	require.True(t, ok)
	h := finvault.Holding{ID: "h1", PortfolioID: "p1", Symbol: "aapl", Type: finvault.Stock, Currency: "USD"}
	ok, err = s.InsertHolding(ctx, h)
	require.NoError(t, err)
	require.True(t, ok)
	return p, h
}

func count(t *testing.T, s *Store, table string) int {
	t.Helper()
	n, err := s.Count(context.Background(), table)
	require.NoError(t, err)
	return n
}

func TestOpen_Idempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "finvault.db")

	s, err := Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	_, err = s.InsertAccount(ctx, finvault.Account{ID: "a1", Name: "Checking", Kind: finvault.Checking, Balance: d("12.34")})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	a, err := s.GetAccount(ctx, "a1")
	require.NoError(t, err)
	require.True(t, a.Balance.Equal(d("12.34")), "balance = %s", a.Balance)

	var mode string
	require.NoError(t, s.db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
	require.Equal(t, "wal", mode)
}

func TestInsert_UpsertOrSkip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := finvault.Account{ID: "a1", Name: "Checking", Kind: finvault.Checking, Balance: d("100")}
	ok, err := s.InsertAccount(ctx, a)
	require.NoError(t, err)
	require.True(t, ok)

	a.Balance = d("999")
	ok, err = s.InsertAccount(ctx, a)
	require.NoError(t, err)
	require.False(t, ok, "second insert must be skipped")

	got, err := s.GetAccount(ctx, "a1")
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(d("100")), "balance = %s, want the first value", got.Balance)
	require.Equal(t, 1, count(t, s, "accounts"))

	require.NoError(t, s.SaveAccount(ctx, a))
	got, err = s.GetAccount(ctx, "a1")
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(d("999")), "balance after save = %s", got.Balance)
}

func TestForeignKeyViolation(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.InsertLot(ctx, finvault.Lot{ID: "l1", HoldingID: "missing", Side: finvault.Buy, Quantity: d("1"), Price: d("1"), Date: day})
	require.ErrorIs(t, err, ErrConstraint)
	var cv *ConstraintViolation
	require.True(t, errors.As(err, &cv))
	require.Equal(t, "lots", cv.Table)

	_, err = s.InsertTransaction(ctx, finvault.Transaction{ID: "t1", Type: finvault.Expense, Amount: d("1"), Date: day, AccountID: "missing"})
	require.ErrorIs(t, err, ErrConstraint)
}

func TestWriteBoundaryValidation(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedPortfolio(t, s)

	testCases := []struct {
		name string
		lot  finvault.Lot
	}{
		{"zero quantity", finvault.Lot{ID: "l1", HoldingID: "h1", Side: finvault.Buy, Quantity: d("0"), Price: d("1")}},
		{"negative quantity", finvault.Lot{ID: "l1", HoldingID: "h1", Side: finvault.Buy, Quantity: d("-1"), Price: d("1")}},
		{"negative fee", finvault.Lot{ID: "l1", HoldingID: "h1", Side: finvault.Buy, Quantity: d("1"), Price: d("1"), Fee: d("-1")}},
		{"unknown side", finvault.Lot{ID: "l1", HoldingID: "h1", Side: "hold", Quantity: d("1"), Price: d("1")}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.InsertLot(ctx, tc.lot)
			require.ErrorIs(t, err, ErrConstraint)
		})
	}

	_, err := s.InsertAccount(ctx, finvault.Account{ID: "a1", Name: "Savings", Kind: finvault.Savings,
		APR: decimal.NewNullDecimal(d("0.2"))})
	require.ErrorIs(t, err, ErrConstraint, "credit terms on a savings account")

	_, err = s.InsertDebt(ctx, finvault.Debt{ID: "d1", Kind: finvault.CreditCardDebt})
	require.ErrorIs(t, err, ErrConstraint, "credit card debt")
}

func TestActiveHoldingIsUnique(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedPortfolio(t, s)

	_, err := s.InsertHolding(ctx, finvault.Holding{ID: "h2", PortfolioID: "p1", Symbol: "AAPL ", Type: finvault.Stock, Currency: "USD"})
	require.ErrorIs(t, err, ErrConstraint)

	_, err = s.InsertHolding(ctx, finvault.Holding{ID: "h3", PortfolioID: "p1", Symbol: "AAPL", Type: finvault.Stock, Currency: "USD", Archived: true})
	require.NoError(t, err, "archived holdings do not count")

	h, err := s.ActiveHolding(ctx, "p1", "aapl")
	require.NoError(t, err)
	require.Equal(t, "h1", h.ID)

	_, err = s.ActiveHolding(ctx, "p1", "MSFT")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePortfolio_Cascades(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedPortfolio(t, s)

	_, err := s.InsertLot(ctx, finvault.Lot{ID: "l1", HoldingID: "h1", Side: finvault.Buy, Quantity: d("10"), Price: d("10"), Date: day})
	require.NoError(t, err)
	_, err = s.Watch(ctx, finvault.WatchlistEntry{PortfolioID: "p1", Symbol: "msft"})
	require.NoError(t, err)
	_, err = s.RecordCashEvent(ctx, finvault.CashEvent{ID: "c1", PortfolioID: "p1", Amount: d("100"), Date: day})
	require.NoError(t, err)

	require.NoError(t, s.DeletePortfolio(ctx, "p1"))
	for _, table := range []string{"portfolios", "holdings", "lots", "watchlist", "cash_events"} {
		require.Zero(t, count(t, s, table), table)
	}
	require.ErrorIs(t, s.DeletePortfolio(ctx, "p1"), ErrNotFound)
}

func TestSavePortfolio_KeepsHoldings(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p, _ := seedPortfolio(t, s)

	p.Name = "Renamed"
	require.NoError(t, s.SavePortfolio(ctx, p))
	require.Equal(t, 1, count(t, s, "holdings"))
	got, err := s.GetPortfolio(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Name)

	// without cash events the given balance is stored.
	p.CashBalance = d("42")
	require.NoError(t, s.SavePortfolio(ctx, p))
	got, err = s.GetPortfolio(ctx, "p1")
	require.NoError(t, err)
	require.True(t, got.CashBalance.Equal(d("42")), "cash = %s", got.CashBalance)

	// with events the balance follows them.
	_, err = s.RecordCashEvent(ctx, finvault.CashEvent{ID: "c1", PortfolioID: "p1", Amount: d("100"), Date: day})
	require.NoError(t, err)
	p.CashBalance = d("7")
	require.NoError(t, s.SavePortfolio(ctx, p))
	got, err = s.GetPortfolio(ctx, "p1")
	require.NoError(t, err)
	require.True(t, got.CashBalance.Equal(d("100")), "cash = %s", got.CashBalance)
}

func TestDeleteAccount_KeepsTransactions(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.InsertAccount(ctx, finvault.Account{ID: "a1", Name: "Checking", Kind: finvault.Checking})
	require.NoError(t, err)
	_, err = s.InsertTransaction(ctx, finvault.Transaction{ID: "t1", Type: finvault.Expense, Amount: d("5"), Date: day, AccountID: "a1"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteAccount(ctx, "a1"))
	tx, err := s.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	require.Empty(t, tx.AccountID)
}

func TestFindAccountByName(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, err := s.InsertAccount(ctx, finvault.Account{ID: "a1", Name: "Main Checking", Kind: finvault.Checking})
	require.NoError(t, err)

	a, err := s.FindAccountByName(ctx, "  main CHECKING ")
	require.NoError(t, err)
	require.Equal(t, "a1", a.ID)

	_, err = s.FindAccountByName(ctx, "savings")
	require.ErrorIs(t, err, ErrNotFound)

	// case folding is not limited to ASCII.
	_, err = s.InsertAccount(ctx, finvault.Account{ID: "a2", Name: "épargne", Kind: finvault.Savings})
	require.NoError(t, err)
	a, err = s.FindAccountByName(ctx, "ÉPARGNE")
	require.NoError(t, err)
	require.Equal(t, "a2", a.ID)
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for i, c := range []string{"food", "rent", "food"} {
		_, err := s.InsertTransaction(ctx, finvault.Transaction{
			ID: string(rune('a' + i)), Type: finvault.Expense, Amount: d("1"), Category: c, Date: day.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	all, err := s.ListTransactions(ctx, TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	food, err := s.ListTransactions(ctx, TransactionFilter{Category: "food"})
	require.NoError(t, err)
	require.Len(t, food, 2)

	ranged, err := s.ListTransactions(ctx, TransactionFilter{From: day.AddDate(0, 0, 1), To: day.AddDate(0, 0, 2)})
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	require.Equal(t, "b", ranged[0].ID)
}

func TestLotsByHolding_Chronological(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedPortfolio(t, s)

	// a sub-second apart, written out of order.
	later := day.Add(500 * time.Millisecond)
	_, err := s.InsertLot(ctx, finvault.Lot{ID: "l2", HoldingID: "h1", Side: finvault.Sell, Quantity: d("1"), Price: d("3"), Date: later})
	require.NoError(t, err)
	_, err = s.InsertLot(ctx, finvault.Lot{ID: "l1", HoldingID: "h1", Side: finvault.Buy, Quantity: d("1"), Price: d("2"), Date: day})
	require.NoError(t, err)

	lots, err := s.LotsByHolding(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, lots, 2)
	require.Equal(t, "l1", lots[0].ID)
	require.True(t, lots[1].Date.Equal(later))
}

func TestRecordCashEvent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedPortfolio(t, s)

	events := []finvault.CashEvent{
		{ID: "c1", PortfolioID: "p1", Amount: d("500"), Date: day.AddDate(0, 0, -2)},
		{ID: "c2", PortfolioID: "p1", Amount: d("-120.5"), Date: day.AddDate(0, 0, -1)},
		{ID: "c3", PortfolioID: "p1", Amount: d("1000"), Date: day.AddDate(0, 0, 5)}, // scheduled
	}
	for _, e := range events {
		ok, err := s.RecordCashEvent(ctx, e)
		require.NoError(t, err)
		require.True(t, ok)
	}
	p, err := s.GetPortfolio(ctx, "p1")
	require.NoError(t, err)
	require.True(t, p.CashBalance.Equal(d("379.5")), "cash = %s", p.CashBalance)

	require.NoError(t, s.DeleteCashEvent(ctx, "c2"))
	p, err = s.GetPortfolio(ctx, "p1")
	require.NoError(t, err)
	require.True(t, p.CashBalance.Equal(d("500")), "cash = %s", p.CashBalance)

	_, err = s.RecordCashEvent(ctx, finvault.CashEvent{ID: "c4", PortfolioID: "missing", Amount: d("1"), Date: day})
	require.ErrorIs(t, err, ErrConstraint)
}

func TestWithTx_RollsBack(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx *Store) error {
		if _, err := tx.InsertAccount(ctx, finvault.Account{ID: "a1", Name: "Checking", Kind: finvault.Checking}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Zero(t, count(t, s, "accounts"))
}

func seedGroup(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	_, err := s.InsertGroup(ctx, finvault.Group{ID: "g1", Name: "Trip", Currency: "EUR"})
	require.NoError(t, err)
	for _, m := range []string{"ann", "bob", "cid"} {
		_, err := s.InsertMember(ctx, finvault.GroupMember{ID: m, GroupID: "g1", Name: m})
		require.NoError(t, err)
	}
}

func TestSaveBill(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedGroup(t, s)

	b := finvault.Bill{ID: "b1", GroupID: "g1", Title: "Dinner", Amount: d("90"), Tax: d("10"), TaxMode: finvault.Percentage,
		PaidBy: "ann", SplitMode: finvault.SplitEqual, Date: day}
	splits, err := finvault.SplitBill("b1", b.ComputeFinal(), b.SplitMode, []string{"ann", "bob", "cid"}, nil)
	require.NoError(t, err)
	contributions := []finvault.BillContribution{{MemberID: "ann", Amount: d("99")}}

	bad := append([]finvault.BillSplit(nil), splits[:2]...)
	require.ErrorIs(t, s.SaveBill(ctx, b, bad, contributions), ErrConstraint)
	require.Zero(t, count(t, s, "bills"))

	require.NoError(t, s.SaveBill(ctx, b, splits, contributions))
	got, err := s.GetBill(ctx, "b1")
	require.NoError(t, err)
	require.True(t, got.FinalAmount.Equal(d("99")), "final = %s", got.FinalAmount)
	require.Equal(t, 3, count(t, s, "bill_splits"))

	_, err = s.InsertSettlement(ctx, finvault.Settlement{ID: "s1", GroupID: "g1", From: "bob", To: "ann", Amount: d("33"), BillID: "b1", Date: day})
	require.NoError(t, err)

	balances, err := s.GroupBalances(ctx, "g1")
	require.NoError(t, err)
	require.True(t, balances["ann"].Equal(d("33")), "ann = %s", balances["ann"])
	require.True(t, balances["bob"].IsZero(), "bob = %s", balances["bob"])
	require.True(t, balances["cid"].Equal(d("-33")), "cid = %s", balances["cid"])

	// saving again replaces the splits and keeps the settlement link.
	require.NoError(t, s.SaveBill(ctx, b, splits, contributions))
	require.Equal(t, 3, count(t, s, "bill_splits"))
	st, err := s.Settlements(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, "b1", st[0].BillID)

	require.NoError(t, s.DeleteBill(ctx, "b1"))
	st, err = s.Settlements(ctx, "g1")
	require.NoError(t, err)
	require.Empty(t, st[0].BillID)
	require.Zero(t, count(t, s, "bill_splits"))
}

func TestGoals(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.InsertGoal(ctx, finvault.Goal{ID: "goal", Name: "Car", Target: d("5000"), Current: d("1000"), Currency: "USD"})
	require.NoError(t, err)
	_, err = s.InsertGoalHistory(ctx, finvault.GoalHistory{ID: "gh1", GoalID: "goal", Amount: d("1000"), Date: day})
	require.NoError(t, err)
	_, err = s.InsertTransaction(ctx, finvault.Transaction{ID: "t1", Type: finvault.Income, Amount: d("1000"), Date: day})
	require.NoError(t, err)
	ok, err := s.LinkGoalTransaction(ctx, finvault.GoalTransactionLink{GoalID: "goal", TransactionID: "t1"})
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.LinkGoalTransaction(ctx, finvault.GoalTransactionLink{GoalID: "goal", TransactionID: "t1"})
	require.NoError(t, err)
	require.False(t, ok)

	txs, err := s.GoalTransactions(ctx, "goal")
	require.NoError(t, err)
	require.Len(t, txs, 1)

	g, err := s.GetGoal(ctx, "goal")
	require.NoError(t, err)
	require.True(t, g.Deadline.IsZero())

	require.NoError(t, s.DeleteGoal(ctx, "goal"))
	require.Zero(t, count(t, s, "goal_history"))
	require.Zero(t, count(t, s, "goal_transactions"))
	require.Equal(t, 1, count(t, s, "transactions"))
}

func TestSingletons(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	p, err := s.LoadProgress(ctx)
	require.NoError(t, err)
	require.Equal(t, finvault.Progress{Level: 1}, p)

	require.NoError(t, s.SaveProgress(ctx, finvault.Progress{XP: 120, Level: 2, Streak: 3, LastActive: day}))
	require.NoError(t, s.SaveProgress(ctx, finvault.Progress{XP: 150, Level: 2, Streak: 4, LastActive: day}))
	p, err = s.LoadProgress(ctx)
	require.NoError(t, err)
	require.Equal(t, 150, p.XP)
	require.Equal(t, 1, count(t, s, "progress"))

	budget := finvault.Budget{Currency: "USD", MonthlyLimit: d("2000"), Categories: map[string]decimal.Decimal{"food": d("400")}}
	require.NoError(t, s.SaveBudget(ctx, budget))
	got, err := s.LoadBudget(ctx)
	require.NoError(t, err)
	require.True(t, got.MonthlyLimit.Equal(d("2000")))
	require.True(t, got.Categories["food"].Equal(d("400")))

	prefs, err := s.LoadPreferences(ctx)
	require.NoError(t, err)
	require.Equal(t, finvault.FIFO, prefs.CostBasis)
	require.NoError(t, s.SavePreferences(ctx, finvault.Preferences{BaseCurrency: "EUR", CostBasis: finvault.AverageCost}))
	prefs, err = s.LoadPreferences(ctx)
	require.NoError(t, err)
	require.Equal(t, finvault.Preferences{BaseCurrency: "EUR", CostBasis: finvault.AverageCost}, prefs)
}

func TestMarketCache(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.PutQuote(ctx, CachedQuote{
		Quote:     finvault.Quote{Symbol: "aapl", Price: d("190.5"), Change: d("-1.2"), Currency: "USD"},
		Metadata:  map[string]string{"exchange": "NASDAQ"},
		FetchedAt: day.Add(-time.Hour),
	}))
	q, err := s.GetQuote(ctx, "AAPL")
	require.NoError(t, err)
	require.True(t, q.Price.Equal(d("190.5")))
	require.Equal(t, "NASDAQ", q.Metadata["exchange"])

	require.NoError(t, s.PutFxRates(ctx, CachedRates{Base: "USD", Rates: map[string]decimal.Decimal{"EUR": d("0.92")}, FetchedAt: day}))
	r, err := s.GetFxRates(ctx, "USD")
	require.NoError(t, err)
	require.True(t, r.Rates["EUR"].Equal(d("0.92")))

	n, err := s.PurgeCache(ctx, day.Add(-time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	_, err = s.GetQuote(ctx, "AAPL")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetFxRates(ctx, "USD")
	require.NoError(t, err)

	bases, err := s.FxBases(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"USD"}, bases)
}
