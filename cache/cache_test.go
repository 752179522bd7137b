package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/etnz/finvault"
	"github.com/etnz/finvault/store"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

func newCache(t *testing.T) (*Cache, *time.Time) {
	t.Helper()
	s, err := store.Open(context.Background(), store.Memory, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	now := start
	clock := func() time.Time { return now }
	s.SetClock(clock)
	c := New(s, time.Minute, time.Hour)
	c.SetClock(clock)
	return c, &now
}

func TestQuote_Stale(t *testing.T) {
	ctx := context.Background()
	c, now := newCache(t)

	_, _, err := c.Quote(ctx, "AAPL")
	require.True(t, errors.Is(err, store.ErrNotFound))

	require.NoError(t, c.PutQuote(ctx, finvault.Quote{Symbol: "aapl", Price: decimal.NewFromInt(190)}, map[string]string{"source": "test"}))
	q, stale, err := c.Quote(ctx, "AAPL")
	require.NoError(t, err)
	require.False(t, stale)
	require.True(t, decimal.NewFromInt(190).Equal(q.Price))

	*now = now.Add(2 * time.Minute)
	q, stale, err = c.Quote(ctx, "aapl")
	require.NoError(t, err)
	require.True(t, stale)
	require.Equal(t, "test", q.Metadata["source"])
}

// Entries survive the loss of the hot layer.
func TestQuote_FromStore(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)
	require.NoError(t, c.PutQuote(ctx, finvault.Quote{Symbol: "SAP", Price: decimal.NewFromInt(200), Currency: "EUR"}, nil))
	c.hot.Flush()

	q, stale, err := c.Quote(ctx, "SAP")
	require.NoError(t, err)
	require.False(t, stale)
	require.Equal(t, "EUR", q.Currency)
	_, ok := c.hot.Get(quoteKey("SAP"))
	require.True(t, ok)
}

func TestRates(t *testing.T) {
	ctx := context.Background()
	c, now := newCache(t)
	require.NoError(t, c.PutRates(ctx, store.CachedRates{Base: "EUR", Rates: map[string]decimal.Decimal{"USD": decimal.RequireFromString("1.1")}}))

	r, stale, err := c.Rates(ctx, "EUR")
	require.NoError(t, err)
	require.False(t, stale)
	require.True(t, decimal.RequireFromString("1.1").Equal(r.Rates["USD"]))

	*now = now.Add(2 * time.Hour)
	c.hot.Flush()
	_, stale, err = c.Rates(ctx, "EUR")
	require.NoError(t, err)
	require.True(t, stale)
}

func TestPriceBook(t *testing.T) {
	ctx := context.Background()
	c, now := newCache(t)
	require.NoError(t, c.PutQuote(ctx, finvault.Quote{Symbol: "SAP", Price: decimal.NewFromInt(200), Currency: "EUR"}, nil))
	require.NoError(t, c.PutRates(ctx, store.CachedRates{Base: "EUR", Rates: map[string]decimal.Decimal{"USD": decimal.NewFromInt(2)}}))
	*now = now.Add(5 * time.Minute)

	book, stale, err := c.PriceBook(ctx, []string{"SAP", "MISSING"}, []string{"EUR", "GBP"})
	require.NoError(t, err)
	require.Equal(t, []string{"SAP"}, stale)
	_, ok := book.Quote("sap")
	require.True(t, ok)
	_, ok = book.Quote("MISSING")
	require.False(t, ok)
	usd, ok := book.Convert(finvault.M(10, "EUR"), "USD")
	require.True(t, ok)
	require.True(t, finvault.M(20, "USD").Equal(usd))
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	c, now := newCache(t)
	require.NoError(t, c.PutQuote(ctx, finvault.Quote{Symbol: "OLD", Price: decimal.NewFromInt(1)}, nil))
	*now = now.Add(48 * time.Hour)
	require.NoError(t, c.PutQuote(ctx, finvault.Quote{Symbol: "NEW", Price: decimal.NewFromInt(1)}, nil))

	n, err := c.Purge(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	_, _, err = c.Quote(ctx, "OLD")
	require.True(t, errors.Is(err, store.ErrNotFound))
	_, _, err = c.Quote(ctx, "NEW")
	require.NoError(t, err)
}
