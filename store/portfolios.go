package store

import (
	"context"
	"fmt"

	"github.com/etnz/finvault"
	"github.com/shopspring/decimal"
)

var portfolioCols = []string{"id", "name", "base_currency", "benchmark", "type", "cash_balance", "archived",
	"tracking_enabled", "created_at", "updated_at"}

const selectPortfolio = `SELECT id, name, base_currency, benchmark, type, cash_balance, archived,
	tracking_enabled, created_at, updated_at FROM portfolios`

func (s *Store) portfolioArgs(p *finvault.Portfolio) []any {
	s.stamp(&p.CreatedAt, &p.UpdatedAt)
	return []any{p.ID, p.Name, p.BaseCurrency, p.Benchmark, string(p.Type), p.CashBalance, p.Archived,
		p.TrackingEnabled, ts(p.CreatedAt), ts(p.UpdatedAt)}
}

func scanPortfolio(r scanner) (finvault.Portfolio, error) {
	var p finvault.Portfolio
	var typ string
	err := r.Scan(&p.ID, &p.Name, &p.BaseCurrency, &p.Benchmark, &typ, &p.CashBalance, &p.Archived,
		&p.TrackingEnabled, timeCol{&p.CreatedAt}, timeCol{&p.UpdatedAt})
	p.Type = finvault.PortfolioType(typ)
	return p, err
}

// InsertPortfolio writes p unless a portfolio with the same id exists.
func (s *Store) InsertPortfolio(ctx context.Context, p finvault.Portfolio) (bool, error) {
	if err := invalid("portfolios", p.Validate()); err != nil {
		return false, err
	}
	return s.insert(ctx, "portfolios", []string{"id"}, portfolioCols, s.portfolioArgs(&p)...)
}

// SavePortfolio inserts or updates p. When the portfolio has cash events its
// balance is recomputed from them, otherwise the balance of p is stored.
func (s *Store) SavePortfolio(ctx context.Context, p finvault.Portfolio) error {
	if err := invalid("portfolios", p.Validate()); err != nil {
		return err
	}
	p.UpdatedAt = s.now()
	if err := s.save(ctx, "portfolios", []string{"id"}, portfolioCols, s.portfolioArgs(&p)...); err != nil {
		return err
	}
	_, err := s.RecomputeCash(ctx, p.ID)
	return err
}

func (s *Store) GetPortfolio(ctx context.Context, id string) (finvault.Portfolio, error) {
	p, err := scanPortfolio(s.q.QueryRowContext(ctx, selectPortfolio+" WHERE id = ?", id))
	if err != nil {
		return p, notFound(err, "portfolios", id)
	}
	return p, nil
}

func (s *Store) ListPortfolios(ctx context.Context) ([]finvault.Portfolio, error) {
	return list(s, ctx, "portfolios", selectPortfolio+" ORDER BY created_at, id", scanPortfolio)
}

// DeletePortfolio removes a portfolio with its holdings, lots, watchlist and
// cash events.
func (s *Store) DeletePortfolio(ctx context.Context, id string) error {
	return s.remove(ctx, "portfolios", "id", id)
}

var holdingCols = []string{"id", "portfolio_id", "symbol", "name", "type", "currency", "archived", "sort_order",
	"created_at", "updated_at"}

const selectHolding = `SELECT id, portfolio_id, symbol, name, type, currency, archived, sort_order,
	created_at, updated_at FROM holdings`

func (s *Store) holdingArgs(h *finvault.Holding) []any {
	s.stamp(&h.CreatedAt, &h.UpdatedAt)
	return []any{h.ID, h.PortfolioID, finvault.NormalizeSymbol(h.Symbol), h.Name, string(h.Type), h.Currency,
		h.Archived, h.SortOrder, ts(h.CreatedAt), ts(h.UpdatedAt)}
}

func scanHolding(r scanner) (finvault.Holding, error) {
	var h finvault.Holding
	var typ string
	err := r.Scan(&h.ID, &h.PortfolioID, &h.Symbol, &h.Name, &typ, &h.Currency, &h.Archived, &h.SortOrder,
		timeCol{&h.CreatedAt}, timeCol{&h.UpdatedAt})
	h.Type = finvault.InstrumentType(typ)
	return h, err
}

// InsertHolding writes h unless a holding with the same id exists. A second
// non archived holding for the same portfolio and symbol is a
// ConstraintViolation.
func (s *Store) InsertHolding(ctx context.Context, h finvault.Holding) (bool, error) {
	if err := invalid("holdings", h.Validate()); err != nil {
		return false, err
	}
	return s.insert(ctx, "holdings", []string{"id"}, holdingCols, s.holdingArgs(&h)...)
}

func (s *Store) SaveHolding(ctx context.Context, h finvault.Holding) error {
	if err := invalid("holdings", h.Validate()); err != nil {
		return err
	}
	h.UpdatedAt = s.now()
	return s.save(ctx, "holdings", []string{"id"}, holdingCols, s.holdingArgs(&h)...)
}

func (s *Store) GetHolding(ctx context.Context, id string) (finvault.Holding, error) {
	h, err := scanHolding(s.q.QueryRowContext(ctx, selectHolding+" WHERE id = ?", id))
	if err != nil {
		return h, notFound(err, "holdings", id)
	}
	return h, nil
}

// ActiveHolding returns the non archived holding of symbol in a portfolio.
func (s *Store) ActiveHolding(ctx context.Context, portfolioID, symbol string) (finvault.Holding, error) {
	symbol = finvault.NormalizeSymbol(symbol)
	h, err := scanHolding(s.q.QueryRowContext(ctx,
		selectHolding+" WHERE portfolio_id = ? AND symbol = ? AND archived = 0", portfolioID, symbol))
	if err != nil {
		return h, notFound(err, "holdings", portfolioID+"/"+symbol)
	}
	return h, nil
}

// ListHoldings returns the holdings of a portfolio, archived included, in
// display order.
func (s *Store) ListHoldings(ctx context.Context, portfolioID string) ([]finvault.Holding, error) {
	return list(s, ctx, "holdings", selectHolding+" WHERE portfolio_id = ? ORDER BY sort_order, symbol, id",
		scanHolding, portfolioID)
}

func (s *Store) DeleteHolding(ctx context.Context, id string) error {
	return s.remove(ctx, "holdings", "id", id)
}

var lotCols = []string{"id", "holding_id", "side", "quantity", "price", "fee", "date", "note", "created_at"}

const selectLot = `SELECT id, holding_id, side, quantity, price, fee, date, note, created_at FROM lots`

func (s *Store) lotArgs(l *finvault.Lot) []any {
	s.stamp(&l.CreatedAt)
	return []any{l.ID, l.HoldingID, string(l.Side), l.Quantity, l.Price, l.Fee, ts(l.Date), l.Note, ts(l.CreatedAt)}
}

func scanLot(r scanner) (finvault.Lot, error) {
	var l finvault.Lot
	var side string
	err := r.Scan(&l.ID, &l.HoldingID, &side, &l.Quantity, &l.Price, &l.Fee, timeCol{&l.Date}, &l.Note,
		timeCol{&l.CreatedAt})
	l.Side = finvault.Side(side)
	return l, err
}

// InsertLot writes l unless a lot with the same id exists. Lots with a non
// positive quantity, or a negative price or fee, are rejected.
func (s *Store) InsertLot(ctx context.Context, l finvault.Lot) (bool, error) {
	if err := invalid("lots", l.Validate()); err != nil {
		return false, err
	}
	return s.insert(ctx, "lots", []string{"id"}, lotCols, s.lotArgs(&l)...)
}

// SaveLot replaces the lot with the same id, it is the explicit edit of a lot.
func (s *Store) SaveLot(ctx context.Context, l finvault.Lot) error {
	if err := invalid("lots", l.Validate()); err != nil {
		return err
	}
	return s.save(ctx, "lots", []string{"id"}, lotCols, s.lotArgs(&l)...)
}

func (s *Store) GetLot(ctx context.Context, id string) (finvault.Lot, error) {
	l, err := scanLot(s.q.QueryRowContext(ctx, selectLot+" WHERE id = ?", id))
	if err != nil {
		return l, notFound(err, "lots", id)
	}
	return l, nil
}

// LotsByHolding returns the lots of a holding in chronological order.
func (s *Store) LotsByHolding(ctx context.Context, holdingID string) ([]finvault.Lot, error) {
	return list(s, ctx, "lots", selectLot+" WHERE holding_id = ? ORDER BY date, created_at, id", scanLot, holdingID)
}

func (s *Store) DeleteLot(ctx context.Context, id string) error {
	return s.remove(ctx, "lots", "id", id)
}

var cashEventCols = []string{"id", "portfolio_id", "amount", "date", "note", "created_at"}

const selectCashEvent = `SELECT id, portfolio_id, amount, date, note, created_at FROM cash_events`

func scanCashEvent(r scanner) (finvault.CashEvent, error) {
	var e finvault.CashEvent
	err := r.Scan(&e.ID, &e.PortfolioID, &e.Amount, timeCol{&e.Date}, &e.Note, timeCol{&e.CreatedAt})
	return e, err
}

// RecordCashEvent writes e, unless an event with the same id exists, and
// recomputes the cash balance of its portfolio in the same transaction.
func (s *Store) RecordCashEvent(ctx context.Context, e finvault.CashEvent) (inserted bool, err error) {
	if err := invalid("cash_events", e.Validate()); err != nil {
		return false, err
	}
	s.stamp(&e.CreatedAt)
	err = s.WithTx(ctx, func(tx *Store) error {
		inserted, err = tx.insert(ctx, "cash_events", []string{"id"}, cashEventCols,
			e.ID, e.PortfolioID, e.Amount, ts(e.Date), e.Note, ts(e.CreatedAt))
		if err != nil {
			return err
		}
		_, err = tx.RecomputeCash(ctx, e.PortfolioID)
		return err
	})
	return inserted, err
}

// ListCashEvents returns the cash events of a portfolio, oldest first.
func (s *Store) ListCashEvents(ctx context.Context, portfolioID string) ([]finvault.CashEvent, error) {
	return list(s, ctx, "cash_events", selectCashEvent+" WHERE portfolio_id = ? ORDER BY date, id",
		scanCashEvent, portfolioID)
}

// DeleteCashEvent removes an event and recomputes the portfolio cash.
func (s *Store) DeleteCashEvent(ctx context.Context, id string) error {
	return s.WithTx(ctx, func(tx *Store) error {
		var portfolioID string
		if err := tx.q.QueryRowContext(ctx, "SELECT portfolio_id FROM cash_events WHERE id = ?", id).Scan(&portfolioID); err != nil {
			return notFound(err, "cash_events", id)
		}
		if err := tx.remove(ctx, "cash_events", "id", id); err != nil {
			return err
		}
		_, err := tx.RecomputeCash(ctx, portfolioID)
		return err
	})
}

// RecomputeCash sets the cash balance of a portfolio to the sum of its
// events dated up to now, and returns it. A portfolio without events keeps
// its recorded balance.
func (s *Store) RecomputeCash(ctx context.Context, portfolioID string) (decimal.Decimal, error) {
	events, err := s.ListCashEvents(ctx, portfolioID)
	if err != nil {
		return decimal.Zero, err
	}
	if len(events) == 0 {
		p, err := s.GetPortfolio(ctx, portfolioID)
		return p.CashBalance, err
	}
	cash := finvault.CashBalance(events, s.now())
	if _, err := s.q.ExecContext(ctx, "UPDATE portfolios SET cash_balance = ? WHERE id = ?", cash, portfolioID); err != nil {
		return decimal.Zero, classify(err, "portfolios", "update")
	}
	return cash, nil
}

// Watch adds symbol to the watchlist of a portfolio. Watching an already
// watched symbol is a no-op.
func (s *Store) Watch(ctx context.Context, w finvault.WatchlistEntry) (bool, error) {
	w.Symbol = finvault.NormalizeSymbol(w.Symbol)
	if w.Symbol == "" {
		return false, invalid("watchlist", fmt.Errorf("watchlist symbol is required"))
	}
	s.stamp(&w.AddedAt)
	return s.insert(ctx, "watchlist", []string{"portfolio_id", "symbol"}, []string{"portfolio_id", "symbol", "added_at"},
		w.PortfolioID, w.Symbol, ts(w.AddedAt))
}

func (s *Store) Unwatch(ctx context.Context, portfolioID, symbol string) error {
	_, err := s.q.ExecContext(ctx, "DELETE FROM watchlist WHERE portfolio_id = ? AND symbol = ?",
		portfolioID, finvault.NormalizeSymbol(symbol))
	if err != nil {
		return classify(err, "watchlist", "delete")
	}
	return nil
}

func (s *Store) Watchlist(ctx context.Context, portfolioID string) ([]finvault.WatchlistEntry, error) {
	return list(s, ctx, "watchlist", "SELECT portfolio_id, symbol, added_at FROM watchlist WHERE portfolio_id = ? ORDER BY added_at, symbol",
		func(r scanner) (finvault.WatchlistEntry, error) {
			var w finvault.WatchlistEntry
			err := r.Scan(&w.PortfolioID, &w.Symbol, timeCol{&w.AddedAt})
			return w, err
		}, portfolioID)
}

// Book materializes a portfolio with its holdings and lots, ready for the
// valuation engine.
func (s *Store) Book(ctx context.Context, portfolioID string) (finvault.PortfolioBook, error) {
	var pb finvault.PortfolioBook
	p, err := s.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return pb, err
	}
	pb.Portfolio = p
	holdings, err := s.ListHoldings(ctx, portfolioID)
	if err != nil {
		return pb, err
	}
	for _, h := range holdings {
		lots, err := s.LotsByHolding(ctx, h.ID)
		if err != nil {
			return pb, err
		}
		pb.Holdings = append(pb.Holdings, finvault.HoldingBook{Holding: h, Lots: lots})
	}
	return pb, nil
}

// Books materializes every portfolio.
func (s *Store) Books(ctx context.Context) ([]finvault.PortfolioBook, error) {
	portfolios, err := s.ListPortfolios(ctx)
	if err != nil {
		return nil, err
	}
	books := make([]finvault.PortfolioBook, 0, len(portfolios))
	for _, p := range portfolios {
		pb, err := s.Book(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		books = append(books, pb)
	}
	return books, nil
}
