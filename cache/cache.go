// Package cache keeps the last market quotes and FX rates fed by the market
// data collaborators. Entries live in an in-process hot layer backed by the
// store cache tables, so they survive a restart.
//
// Concurrent writers of the same key race, the last write wins.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/finvault"
	"github.com/etnz/finvault/store"
	gocache "github.com/patrickmn/go-cache"
)

// Default lifetimes of the entries.
const (
	DefaultQuoteTTL = 15 * time.Minute
	DefaultFxTTL    = 12 * time.Hour
)

// Cache serves quotes and rates from memory first, then the store. Entries
// older than their TTL are still returned, flagged as stale.
type Cache struct {
	QuoteTTL time.Duration
	FxTTL    time.Duration

	store *store.Store
	hot   *gocache.Cache
	now   func() time.Time
}

// New returns a cache over s. A zero ttl selects the default.
func New(s *store.Store, quoteTTL, fxTTL time.Duration) *Cache {
	if quoteTTL <= 0 {
		quoteTTL = DefaultQuoteTTL
	}
	if fxTTL <= 0 {
		fxTTL = DefaultFxTTL
	}
	return &Cache{
		QuoteTTL: quoteTTL,
		FxTTL:    fxTTL,
		store:    s,
		hot:      gocache.New(gocache.NoExpiration, 10*time.Minute),
		now:      time.Now,
	}
}

// SetClock replaces the clock used to age the entries.
func (c *Cache) SetClock(now func() time.Time) { c.now = now }

func quoteKey(symbol string) string { return "quote:" + finvault.NormalizeSymbol(symbol) }
func ratesKey(base string) string   { return "fx:" + base }

// remember keeps v in the hot layer until it gets stale.
func (c *Cache) remember(key string, v any, fetched time.Time, ttl time.Duration) {
	left := ttl - c.now().Sub(fetched)
	if left <= 0 {
		c.hot.Delete(key)
		return
	}
	c.hot.Set(key, v, left)
}

func (c *Cache) stale(fetched time.Time, ttl time.Duration) bool {
	return c.now().Sub(fetched) > ttl
}

// PutQuote records a quote. A zero At is the current time.
func (c *Cache) PutQuote(ctx context.Context, q finvault.Quote, metadata map[string]string) error {
	if q.At.IsZero() {
		q.At = c.now().UTC()
	}
	cq := store.CachedQuote{Quote: q, Metadata: metadata, FetchedAt: q.At}
	if err := c.store.PutQuote(ctx, cq); err != nil {
		return fmt.Errorf("cache quote %s: %w", q.Symbol, err)
	}
	cq.Symbol = finvault.NormalizeSymbol(cq.Symbol)
	c.remember(quoteKey(q.Symbol), cq, cq.FetchedAt, c.QuoteTTL)
	return nil
}

// Quote returns the last quote of symbol. It returns store.ErrNotFound when
// the symbol was never quoted.
func (c *Cache) Quote(ctx context.Context, symbol string) (q store.CachedQuote, stale bool, err error) {
	if v, ok := c.hot.Get(quoteKey(symbol)); ok {
		q = v.(store.CachedQuote)
		return q, c.stale(q.FetchedAt, c.QuoteTTL), nil
	}
	q, err = c.store.GetQuote(ctx, symbol)
	if err != nil {
		return q, false, err
	}
	c.remember(quoteKey(symbol), q, q.FetchedAt, c.QuoteTTL)
	return q, c.stale(q.FetchedAt, c.QuoteTTL), nil
}

// PutRates records the rate map of base: units of each currency for one
// unit of base.
func (c *Cache) PutRates(ctx context.Context, rates store.CachedRates) error {
	if rates.FetchedAt.IsZero() {
		rates.FetchedAt = c.now().UTC()
	}
	if err := c.store.PutFxRates(ctx, rates); err != nil {
		return fmt.Errorf("cache rates of %s: %w", rates.Base, err)
	}
	c.remember(ratesKey(rates.Base), rates, rates.FetchedAt, c.FxTTL)
	return nil
}

// Rates returns the rate map of base, or store.ErrNotFound.
func (c *Cache) Rates(ctx context.Context, base string) (r store.CachedRates, stale bool, err error) {
	if v, ok := c.hot.Get(ratesKey(base)); ok {
		r = v.(store.CachedRates)
		return r, c.stale(r.FetchedAt, c.FxTTL), nil
	}
	r, err = c.store.GetFxRates(ctx, base)
	if err != nil {
		return r, false, err
	}
	c.remember(ratesKey(base), r, r.FetchedAt, c.FxTTL)
	return r, c.stale(r.FetchedAt, c.FxTTL), nil
}

// PriceBook loads the quotes of symbols and the rate maps of bases into a
// price book for the valuation. Unknown entries are left out, stale ones are
// used as they are and returned in stale.
func (c *Cache) PriceBook(ctx context.Context, symbols, bases []string) (book *finvault.PriceBook, stale []string, err error) {
	book = finvault.NewPriceBook()
	for _, s := range symbols {
		q, old, err := c.Quote(ctx, s)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		if old {
			stale = append(stale, q.Symbol)
		}
		book.AddQuote(q.Quote)
	}
	for _, b := range bases {
		r, old, err := c.Rates(ctx, b)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		if old {
			stale = append(stale, b)
		}
		book.AddRates(r.Base, r.Rates)
	}
	return book, stale, nil
}

// Purge drops every entry fetched more than maxAge ago, and empties the hot
// layer. It returns the number of stored entries removed.
func (c *Cache) Purge(ctx context.Context, maxAge time.Duration) (int64, error) {
	c.hot.Flush()
	return c.store.PurgeCache(ctx, c.now().Add(-maxAge))
}
