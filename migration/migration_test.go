package migration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/etnz/finvault"
	"github.com/etnz/finvault/legacy"
	"github.com/etnz/finvault/store"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func newMigrator(t *testing.T, src legacy.Source) (*Migrator, *MemoryFlag) {
	t.Helper()
	s, err := store.Open(context.Background(), store.Memory, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	clock := func() time.Time { return now }
	s.SetClock(clock)
	flag := &MemoryFlag{}
	return &Migrator{Source: src, Store: s, Flag: flag, Logger: zerolog.Nop(), Now: clock}, flag
}

func count(t *testing.T, m *Migrator, table string) int {
	t.Helper()
	n, err := m.Store.Count(context.Background(), table)
	require.NoError(t, err)
	return n
}

// fixture covers every key with the usual legacy oddities.
var fixture = legacy.Map{
	legacy.KeyAccounts: []byte(`[
		{"id":"a1","name":"Chase Checking","type":"checking","balance":"1,000.50"},
		{"id":"a2","name":"Visa","type":"credit_card","balance":200,"apr":19.9,"last4":"4242"},
		{"name":"Wallet","type":"bogus","balance":20}
	]`),
	legacy.KeyTransactions: []byte(`{"version":2,"items":[
		{"id":"t1","type":"expense","amount":12.5,"category":"food","account":"  chase CHECKING "},
		{"id":"t2","amount":-30,"account":"Unknown"},
		{"id":"t3","type":"income","amount":100,"accountId":"a2","date":"not a date"}
	]}`),
	legacy.KeyPortfolios: []byte(`[
		{"id":"p1","name":"Main","baseCurrency":"usd","cash":500,"watchlist":["msft"],"holdings":[
			{"id":"h1","symbol":"aapl","lots":[
				{"id":"l1","side":"buy","quantity":10,"price":100,"date":"2025-01-02"},
				{"id":"l2","type":"sell","quantity":"-4","price":120,"date":"2025-01-05"}
			]},
			{"symbol":"AAPL","lots":[{"side":"buy","quantity":2,"price":110,"date":"2025-01-03"}]},
			{"symbol":"VTI","quantity":3,"avgCost":200},
			{"symbol":"","quantity":1}
		]},
		{"id":"p2","currency":"EUR","cash":750,"cashHistory":[
			{"id":"c1","amount":1000,"date":"2025-01-01"},
			{"id":"c2","amount":200,"type":"withdrawal","date":"2025-01-02"}
		]}
	]`),
	legacy.KeyHoldings: []byte(`[{"id":"orphan","portfolioId":"nowhere","symbol":"X"}]`),
	legacy.KeyGoals: []byte(`[
		{"id":"g1","name":"Trip","target":2000,"current":500,
		 "history":[{"amount":100,"date":"2025-01-10"}],"linkedTransactions":["t1","nope"]}
	]`),
	legacy.KeyAchievements: []byte(`[{"id":"first-steps","unlockedAt":1735689600000}]`),
	legacy.KeyProgress:     []byte(`{"xp":"120","level":2}`),
	legacy.KeyGroups: []byte(`[{"id":"gr1","name":"Flat",
		"members":[{"id":"ann","name":"Ann"},{"id":"bob","name":"Bob"}],
		"bills":[{"id":"b1","title":"Dinner","amount":100,"tax":10,"taxMode":"pct","finalAmount":50,"paidBy":"Ann",
			"splits":[{"memberId":"ann","amount":20},{"memberId":"bob","amount":20}]}],
		"settlements":[{"id":"s1","from":"bob","to":"ann","amount":55,"billId":"b1"},{"from":"bob","to":"bob","amount":1}]
	}]`),
	legacy.KeyDebts: []byte(`[
		{"id":"d1","name":"Car","type":"car","balance":5000,"dueDay":40},
		{"id":"d2","type":"credit card"},
		{"id":"d3","type":"CREDIT CARD"},
		{"id":"d4","type":"creditCard"},
		{"id":"d5","type":"credit_card"}
	]`),
	legacy.KeyBudget:   []byte(`{"monthlyLimit":"1500","categories":{"food":300}}`),
	legacy.KeySettings: []byte(`{"baseCurrency":"eur","costBasis":"average"}`),
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	m, flag := newMigrator(t, fixture)

	res := m.Run(ctx)
	require.True(t, res.Success, res.Error)
	require.False(t, res.AlreadyDone)
	require.Empty(t, res.Failed())
	require.Len(t, res.Phases, 9)
	require.Equal(t, Stats{Accounts: 3, Transactions: 3, Portfolios: 2, Holdings: 2, Lots: 4, Goals: 1, Groups: 1, Debts: 1}, res.Stats)
	require.Equal(t, Complete, m.State())
	set, err := flag.IsSet()
	require.NoError(t, err)
	require.True(t, set)

	// accounts
	visa, err := m.Store.GetAccount(ctx, "a2")
	require.NoError(t, err)
	require.Equal(t, finvault.Credit, visa.Kind)
	require.Equal(t, "****4242", visa.MaskedNumber)
	require.True(t, visa.APR.Valid)
	require.True(t, visa.IncludeInNetWorth)
	checking, err := m.Store.GetAccount(ctx, "a1")
	require.NoError(t, err)
	require.True(t, d("1000.50").Equal(checking.Balance))

	// transactions
	t1, err := m.Store.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, "a1", t1.AccountID)
	t2, err := m.Store.GetTransaction(ctx, "t2")
	require.NoError(t, err)
	require.Equal(t, "", t2.AccountID)
	require.Equal(t, finvault.Expense, t2.Type)
	require.True(t, d("30").Equal(t2.Amount))
	t3, err := m.Store.GetTransaction(ctx, "t3")
	require.NoError(t, err)
	require.Equal(t, "a2", t3.AccountID)
	require.True(t, t3.Date.Equal(now))

	// portfolios and cash
	p1, err := m.Store.GetPortfolio(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "USD", p1.BaseCurrency)
	require.True(t, d("500").Equal(p1.CashBalance))
	p2, err := m.Store.GetPortfolio(ctx, "p2")
	require.NoError(t, err)
	require.Equal(t, "EUR", p2.BaseCurrency)
	require.True(t, d("750").Equal(p2.CashBalance), p2.CashBalance.String())
	events, err := m.Store.ListCashEvents(ctx, "p2")
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.True(t, d("-200").Equal(events[1].Amount))
	require.True(t, d("-50").Equal(events[2].Amount))
	watch, err := m.Store.Watchlist(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, watch, 1)

	// holdings: the second AAPL is merged into h1, VTI gets an opening lot.
	holdings, err := m.Store.ListHoldings(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	lots, err := m.Store.LotsByHolding(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, lots, 3)
	pos := finvault.Position("USD", lots, nil, finvault.FIFO)
	require.Equal(t, "8", pos.Quantity.String())
	require.True(t, finvault.M(80, "USD").Equal(pos.Realized), pos.Realized.String())
	vti, err := m.Store.ActiveHolding(ctx, "p1", "vti")
	require.NoError(t, err)
	require.Equal(t, "USD", vti.Currency)
	opening, err := m.Store.LotsByHolding(ctx, vti.ID)
	require.NoError(t, err)
	require.Len(t, opening, 1)
	require.Equal(t, finvault.Buy, opening[0].Side)
	require.True(t, d("200").Equal(opening[0].Price))
	require.Equal(t, 2, res.Phases[3].Skipped) // empty symbol and orphan

	// goals
	linked, err := m.Store.GoalTransactions(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, linked, 1)
	history, err := m.Store.GoalHistory(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, history, 1)

	// achievements and progress
	progress, err := m.Store.LoadProgress(ctx)
	require.NoError(t, err)
	require.Equal(t, 120, progress.XP)
	require.Equal(t, 2, progress.Level)
	require.Equal(t, 1, count(t, m, "achievements"))

	// groups: the bill final is recomputed and the splits are redone.
	bill, err := m.Store.GetBill(ctx, "b1")
	require.NoError(t, err)
	require.True(t, d("110").Equal(bill.FinalAmount))
	require.Equal(t, "ann", bill.PaidBy)
	splits, err := m.Store.BillSplits(ctx, "b1")
	require.NoError(t, err)
	require.NoError(t, finvault.CheckSplits(bill, splits))
	require.Equal(t, 1, count(t, m, "settlements"))
	balances, err := m.Store.GroupBalances(ctx, "gr1")
	require.NoError(t, err)
	require.True(t, balances["ann"].IsZero(), balances["ann"].String())
	require.True(t, balances["bob"].IsZero(), balances["bob"].String())

	// debts
	debts, err := m.Store.ListDebts(ctx)
	require.NoError(t, err)
	require.Len(t, debts, 1)
	require.Equal(t, finvault.AutoDebt, debts[0].Kind)
	require.Equal(t, 0, debts[0].DueDay)

	// budget and preferences
	budget, err := m.Store.LoadBudget(ctx)
	require.NoError(t, err)
	require.True(t, d("1500").Equal(budget.MonthlyLimit))
	require.True(t, d("300").Equal(budget.Categories["food"]))
	prefs, err := m.Store.LoadPreferences(ctx)
	require.NoError(t, err)
	require.Equal(t, "EUR", prefs.BaseCurrency)
	require.Equal(t, finvault.AverageCost, prefs.CostBasis)
}

func TestRun_Idempotent(t *testing.T) {
	ctx := context.Background()
	m, _ := newMigrator(t, fixture)
	require.True(t, m.Run(ctx).Success)
	lots := count(t, m, "lots")
	events := count(t, m, "cash_events")

	res := m.Run(ctx)
	require.True(t, res.Success)
	require.True(t, res.AlreadyDone)
	require.Equal(t, Stats{}, res.Stats)
	require.Empty(t, res.Phases)

	// After a rollback everything runs again but nothing is inserted twice.
	require.NoError(t, m.Rollback())
	state, err := m.Status()
	require.NoError(t, err)
	require.Equal(t, NotStarted, state)

	res = m.Run(ctx)
	require.True(t, res.Success, res.Error)
	require.False(t, res.AlreadyDone)
	require.Equal(t, Stats{}, res.Stats)
	require.Equal(t, lots, count(t, m, "lots"))
	require.Equal(t, events, count(t, m, "cash_events"))
	require.Equal(t, 3, count(t, m, "accounts"))
	require.Equal(t, 1, count(t, m, "bills"))
}

func TestRun_PhaseIsolation(t *testing.T) {
	ctx := context.Background()
	m, flag := newMigrator(t, legacy.Map{
		legacy.KeyAccounts:     []byte(`[{"id":"a1","name":"Checking","type":"checking"}]`),
		legacy.KeyTransactions: []byte(`[{"id":"t1","type":"expense","amount":5,"account":"checking"}]`),
		legacy.KeyPortfolios:   []byte(`[{"id":"p1","name":"Main","baseCurrency":"USD"}]`),
		legacy.KeyGoals:        []byte(`{not json`),
		legacy.KeyDebts:        []byte(`{"version":9,"items":[]}`),
	})

	res := m.Run(ctx)
	require.True(t, res.Success, res.Error)
	require.Equal(t, Stats{Accounts: 1, Transactions: 1, Portfolios: 1}, res.Stats)

	failed := res.Failed()
	require.Len(t, failed, 2)
	require.Equal(t, PhaseGoals, failed[0].Phase)
	require.Equal(t, PhaseDebts, failed[1].Phase)
	var pf *legacy.ParseFailure
	require.True(t, errors.As(failed[0].Err, &pf))
	require.Equal(t, legacy.KeyGoals, pf.Key)

	set, err := flag.IsSet()
	require.NoError(t, err)
	require.True(t, set)
}

// Ids shared across records are skipped, not errors.
func TestRun_DuplicateIDs(t *testing.T) {
	ctx := context.Background()
	m, _ := newMigrator(t, legacy.Map{
		legacy.KeyGoals: []byte(`[
			{"id":"g1","name":"First","target":10,"history":[{"id":"shared","amount":1}]},
			{"id":"g2","name":"Second","target":10,"history":[{"id":"shared","amount":1}]},
			{"id":"g1","name":"Again","target":99}
		]`),
	})
	res := m.Run(ctx)
	require.True(t, res.Success)
	require.Empty(t, res.Failed())
	require.Equal(t, 2, res.Stats.Goals)
	require.Equal(t, 1, count(t, m, "goal_history"))
	g, err := m.Store.GetGoal(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, "First", g.Name)
}

// Legacy ids are only unique within their owner.
func TestRun_IDsRepeatAcrossOwners(t *testing.T) {
	ctx := context.Background()
	m, _ := newMigrator(t, legacy.Map{
		legacy.KeyPortfolios: []byte(`[
			{"id":"p1","baseCurrency":"USD","holdings":[
				{"id":"1","symbol":"AAPL","lots":[{"id":"1","side":"buy","quantity":10,"price":100}]}]},
			{"id":"p2","baseCurrency":"USD","holdings":[
				{"id":"1","symbol":"MSFT","lots":[{"id":"1","side":"buy","quantity":5,"price":300}]}]}
		]`),
		legacy.KeyGroups: []byte(`[
			{"id":"gr1","name":"Flat","members":[{"id":"m1","name":"Ann"}]},
			{"id":"gr2","name":"Trip","members":[{"id":"m1","name":"Bob"}],
			 "bills":[{"id":"b1","title":"Fuel","amount":40,"paidBy":"m1"}]}
		]`),
	})
	res := m.Run(ctx)
	require.True(t, res.Success, res.Error)
	require.Empty(t, res.Failed())
	require.Equal(t, 2, res.Stats.Holdings)
	require.Equal(t, 2, res.Stats.Lots)

	holdings := func(portfolioID string) (finvault.Holding, []finvault.Lot) {
		t.Helper()
		hs, err := m.Store.ListHoldings(ctx, portfolioID)
		require.NoError(t, err)
		require.Len(t, hs, 1)
		lots, err := m.Store.LotsByHolding(ctx, hs[0].ID)
		require.NoError(t, err)
		return hs[0], lots
	}
	h1, lots1 := holdings("p1")
	require.Equal(t, "1", h1.ID)
	require.Equal(t, "AAPL", h1.Symbol)
	require.Len(t, lots1, 1)
	require.True(t, d("10").Equal(lots1[0].Quantity))

	h2, lots2 := holdings("p2")
	require.Equal(t, "MSFT", h2.Symbol)
	require.NotEqual(t, "1", h2.ID)
	require.Len(t, lots2, 1)
	require.True(t, d("5").Equal(lots2[0].Quantity))

	members, err := m.Store.Members(ctx, "gr2")
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "Bob", members[0].Name)
	require.NotEqual(t, "m1", members[0].ID)
	b, err := m.Store.GetBill(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, members[0].ID, b.PaidBy)

	// a second run finds the scoped ids and inserts nothing.
	require.NoError(t, m.Rollback())
	res = m.Run(ctx)
	require.True(t, res.Success, res.Error)
	require.Equal(t, Stats{}, res.Stats)
	require.Equal(t, 2, count(t, m, "lots"))
	require.Equal(t, 2, count(t, m, "group_members"))
}

func TestRun_AccountNamesFoldCase(t *testing.T) {
	ctx := context.Background()
	m, _ := newMigrator(t, legacy.Map{
		legacy.KeyAccounts:     []byte(`[{"id":"a1","name":"Épargne","type":"savings"}]`),
		legacy.KeyTransactions: []byte(`[{"id":"t1","type":"income","amount":5,"account":" ÉPARGNE "}]`),
	})
	require.True(t, m.Run(ctx).Success)
	tx, err := m.Store.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, "a1", tx.AccountID)
}

// A phase that cannot write rolls back and counts nothing, the run itself
// still completes.
func TestRun_FailedPhasesCountNothing(t *testing.T) {
	m, flag := newMigrator(t, fixture)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := m.Run(ctx)
	require.True(t, res.Success)
	require.Len(t, res.Failed(), 9)
	require.Equal(t, Stats{}, res.Stats)
	require.Equal(t, 0, count(t, m, "accounts"))
	set, err := flag.IsSet()
	require.NoError(t, err)
	require.True(t, set)
}

func TestRun_Fatal(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")

	t.Run("flag read", func(t *testing.T) {
		m, flag := newMigrator(t, fixture)
		flag.ReadErr = boom
		res := m.Run(ctx)
		require.False(t, res.Success)
		require.Contains(t, res.Error, "disk full")
		require.Equal(t, Failed, m.State())
		require.Equal(t, 0, count(t, m, "accounts"))
	})

	t.Run("flag write", func(t *testing.T) {
		m, flag := newMigrator(t, fixture)
		flag.WriteErr = boom
		res := m.Run(ctx)
		require.False(t, res.Success)
		require.Contains(t, res.Error, "disk full")
		flag.WriteErr = nil
		set, err := flag.IsSet()
		require.NoError(t, err)
		require.False(t, set)
		state, err := m.Status()
		require.NoError(t, err)
		require.Equal(t, Failed, state)
	})

	t.Run("panic", func(t *testing.T) {
		m, _ := newMigrator(t, fixture)
		m.Flag = panicFlag{}
		res := m.Run(ctx)
		require.False(t, res.Success)
		require.Contains(t, res.Error, "panic")
		require.Equal(t, Failed, m.State())
	})
}

type panicFlag struct{}

func (panicFlag) IsSet() (bool, error) { panic("corrupted flag") }
func (panicFlag) Set() error           { return nil }
func (panicFlag) Clear() error         { return nil }

func TestDerive(t *testing.T) {
	a := derive("p1", "lot", 0)
	require.Equal(t, a, derive("p1", "lot", 0))
	require.NotEqual(t, a, derive("p1", "lot", 1))
	require.NotEqual(t, a, derive("p2", "lot", 0))
	require.Equal(t, "x", idOr(" x ", "p1", "lot", 0))
	require.Equal(t, a, idOr("", "p1", "lot", 0))
}

func TestFileFlag(t *testing.T) {
	f := FileFlag(t.TempDir() + "/state/migrated")
	set, err := f.IsSet()
	require.NoError(t, err)
	require.False(t, set)
	require.NoError(t, f.Set())
	set, err = f.IsSet()
	require.NoError(t, err)
	require.True(t, set)
	require.NoError(t, f.Clear())
	require.NoError(t, f.Clear())
	set, err = f.IsSet()
	require.NoError(t, err)
	require.False(t, set)
}
