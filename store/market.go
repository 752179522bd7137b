package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/etnz/finvault"
	"github.com/shopspring/decimal"
)

// CachedQuote is a quote as persisted in the quote cache.
type CachedQuote struct {
	finvault.Quote
	Metadata  map[string]string // provider specific information, opaque to finvault
	FetchedAt time.Time
}

// CachedRates is an FX rate map as persisted in the rate cache.
type CachedRates struct {
	Base      string
	Rates     map[string]decimal.Decimal
	FetchedAt time.Time
}

// PutQuote replaces the cached quote of its symbol.
func (s *Store) PutQuote(ctx context.Context, q CachedQuote) error {
	q.Symbol = finvault.NormalizeSymbol(q.Symbol)
	if q.Symbol == "" {
		return invalid("quote_cache", fmt.Errorf("quote symbol is required"))
	}
	meta, err := json.Marshal(q.Metadata)
	if err != nil {
		return fmt.Errorf("encode quote metadata: %w", err)
	}
	if q.FetchedAt.IsZero() {
		q.FetchedAt = q.At
	}
	s.stamp(&q.FetchedAt)
	return s.save(ctx, "quote_cache", []string{"symbol"}, []string{"symbol", "price", "change", "currency", "metadata", "fetched_at"},
		q.Symbol, q.Price, q.Change, q.Currency, string(meta), ts(q.FetchedAt))
}

// GetQuote returns the cached quote of symbol, or ErrNotFound.
func (s *Store) GetQuote(ctx context.Context, symbol string) (CachedQuote, error) {
	var q CachedQuote
	var meta string
	symbol = finvault.NormalizeSymbol(symbol)
	err := s.q.QueryRowContext(ctx, "SELECT symbol, price, change, currency, metadata, fetched_at FROM quote_cache WHERE symbol = ?", symbol).
		Scan(&q.Symbol, &q.Price, &q.Change, &q.Currency, &meta, timeCol{&q.FetchedAt})
	if err != nil {
		return q, notFound(err, "quote_cache", symbol)
	}
	if err := json.Unmarshal([]byte(meta), &q.Metadata); err != nil {
		return q, fmt.Errorf("decode quote metadata of %s: %w", symbol, err)
	}
	q.At = q.FetchedAt
	return q, nil
}

// PutFxRates replaces the cached rate map of its base currency.
func (s *Store) PutFxRates(ctx context.Context, r CachedRates) error {
	if err := finvault.ValidateCurrency(r.Base); err != nil {
		return invalid("fx_rate_cache", err)
	}
	rates, err := json.Marshal(r.Rates)
	if err != nil {
		return fmt.Errorf("encode rates: %w", err)
	}
	s.stamp(&r.FetchedAt)
	return s.save(ctx, "fx_rate_cache", []string{"base"}, []string{"base", "rates", "fetched_at"},
		r.Base, string(rates), ts(r.FetchedAt))
}

// GetFxRates returns the cached rate map of base, or ErrNotFound.
func (s *Store) GetFxRates(ctx context.Context, base string) (CachedRates, error) {
	var r CachedRates
	var rates string
	err := s.q.QueryRowContext(ctx, "SELECT base, rates, fetched_at FROM fx_rate_cache WHERE base = ?", base).
		Scan(&r.Base, &rates, timeCol{&r.FetchedAt})
	if err != nil {
		return r, notFound(err, "fx_rate_cache", base)
	}
	if err := json.Unmarshal([]byte(rates), &r.Rates); err != nil {
		return r, fmt.Errorf("decode rates of %s: %w", base, err)
	}
	return r, nil
}

// PurgeCache drops the cached quotes and rates fetched before olderThan. It
// returns the number of entries removed.
func (s *Store) PurgeCache(ctx context.Context, olderThan time.Time) (int64, error) {
	var total int64
	for _, table := range []string{"quote_cache", "fx_rate_cache"} {
		res, err := s.q.ExecContext(ctx, "DELETE FROM "+table+" WHERE fetched_at < ?", ts(olderThan))
		if err != nil {
			return total, classify(err, table, "purge")
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

// FxBases lists the base currencies with a cached rate map.
func (s *Store) FxBases(ctx context.Context) ([]string, error) {
	return list(s, ctx, "fx_rate_cache", "SELECT base FROM fx_rate_cache ORDER BY base", func(r scanner) (string, error) {
		var base string
		err := r.Scan(&base)
		return base, err
	})
}
