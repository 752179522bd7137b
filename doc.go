// Package finvault is the local persistence core of a personal finance
// application. It is designed to be local-first and auditable: every money
// bearing value is an exact decimal and every position is derived from the
// recorded lots, never from a persisted running total.
//
// The package itself holds the domain model and the pure computations:
//   - Domain Model: accounts, transactions, portfolios, holdings, lots, cash
//     events, goals, shared-expense groups, debts and the single-instance
//     records (budget, progress, preferences).
//   - Lot Accounting: a stateless engine that replays the lots of a holding
//     with the FIFO or the average cost method to produce the open position,
//     realized and unrealized gains.
//   - Valuation: aggregation of positions and cash into portfolio totals,
//     day change and allocation weights, converted through cached FX rates.
//   - Shared Expenses: bill final amounts, splits and member balances.
//
// Persistence lives in the store package, the one-time import of the legacy
// key-value data in the migration package, and cached market data in the
// cache package. None of the code in this package performs I/O, so it can be
// called concurrently by read-only callers.
package finvault
