package store

// Decimal amounts are stored as TEXT to keep them exact; checks on them cast
// to REAL, which is precise enough for a sign test. Timestamps are TEXT in
// a fixed width UTC layout so that they sort lexically.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL CHECK (trim(name) <> ''),
		institution TEXT NOT NULL DEFAULT '',
		masked_number TEXT NOT NULL DEFAULT '',
		balance TEXT NOT NULL DEFAULT '0',
		kind TEXT NOT NULL CHECK (kind IN ('checking','savings','cash','credit','investment','retirement','loan','mortgage','other')),
		include_in_net_worth INTEGER NOT NULL DEFAULT 1,
		apr TEXT,
		credit_limit TEXT,
		min_payment_percent TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK (kind IN ('credit','loan','mortgage') OR (apr IS NULL AND credit_limit IS NULL AND min_payment_percent IS NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS accounts_name ON accounts (name COLLATE NOCASE)`,

	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL CHECK (type IN ('expense','income')),
		amount TEXT NOT NULL CHECK (CAST(amount AS REAL) >= 0),
		category TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		account_id TEXT REFERENCES accounts (id) ON DELETE SET NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_date_category ON transactions (date, category)`,
	`CREATE INDEX IF NOT EXISTS transactions_account ON transactions (account_id)`,

	`CREATE TABLE IF NOT EXISTS portfolios (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		base_currency TEXT NOT NULL,
		benchmark TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL CHECK (type IN ('live','paper')),
		cash_balance TEXT NOT NULL DEFAULT '0',
		archived INTEGER NOT NULL DEFAULT 0,
		tracking_enabled INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS holdings (
		id TEXT PRIMARY KEY,
		portfolio_id TEXT NOT NULL REFERENCES portfolios (id) ON DELETE CASCADE,
		symbol TEXT NOT NULL CHECK (symbol <> ''),
		name TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL CHECK (type IN ('stock','etf','fund','crypto','bond','other')),
		currency TEXT NOT NULL,
		archived INTEGER NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS holdings_portfolio ON holdings (portfolio_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS holdings_active_symbol ON holdings (portfolio_id, symbol) WHERE archived = 0`,

	`CREATE TABLE IF NOT EXISTS lots (
		id TEXT PRIMARY KEY,
		holding_id TEXT NOT NULL REFERENCES holdings (id) ON DELETE CASCADE,
		side TEXT NOT NULL CHECK (side IN ('buy','sell')),
		quantity TEXT NOT NULL CHECK (CAST(quantity AS REAL) > 0),
		price TEXT NOT NULL CHECK (CAST(price AS REAL) >= 0),
		fee TEXT NOT NULL DEFAULT '0' CHECK (CAST(fee AS REAL) >= 0),
		date TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS lots_holding_date ON lots (holding_id, date)`,

	`CREATE TABLE IF NOT EXISTS cash_events (
		id TEXT PRIMARY KEY,
		portfolio_id TEXT NOT NULL REFERENCES portfolios (id) ON DELETE CASCADE,
		amount TEXT NOT NULL,
		date TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS cash_events_portfolio_date ON cash_events (portfolio_id, date)`,

	`CREATE TABLE IF NOT EXISTS watchlist (
		portfolio_id TEXT NOT NULL REFERENCES portfolios (id) ON DELETE CASCADE,
		symbol TEXT NOT NULL,
		added_at TEXT NOT NULL,
		PRIMARY KEY (portfolio_id, symbol)
	)`,

	`CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		target TEXT NOT NULL DEFAULT '0',
		current TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL DEFAULT '',
		deadline TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS goal_history (
		id TEXT PRIMARY KEY,
		goal_id TEXT NOT NULL REFERENCES goals (id) ON DELETE CASCADE,
		amount TEXT NOT NULL,
		date TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS goal_history_goal_date ON goal_history (goal_id, date)`,
	`CREATE TABLE IF NOT EXISTS goal_transactions (
		goal_id TEXT NOT NULL REFERENCES goals (id) ON DELETE CASCADE,
		transaction_id TEXT NOT NULL REFERENCES transactions (id) ON DELETE CASCADE,
		linked_at TEXT NOT NULL,
		PRIMARY KEY (goal_id, transaction_id)
	)`,
	`CREATE INDEX IF NOT EXISTS goal_transactions_transaction ON goal_transactions (transaction_id)`,

	`CREATE TABLE IF NOT EXISTS expense_groups (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS group_members (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES expense_groups (id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS group_members_group ON group_members (group_id)`,
	`CREATE TABLE IF NOT EXISTS bills (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES expense_groups (id) ON DELETE CASCADE,
		title TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL CHECK (CAST(amount AS REAL) >= 0),
		tax TEXT NOT NULL DEFAULT '0',
		tax_mode TEXT NOT NULL CHECK (tax_mode IN ('abs','pct')),
		discount TEXT NOT NULL DEFAULT '0',
		discount_mode TEXT NOT NULL CHECK (discount_mode IN ('abs','pct')),
		final_amount TEXT NOT NULL,
		paid_by TEXT REFERENCES group_members (id) ON DELETE SET NULL,
		split_mode TEXT NOT NULL CHECK (split_mode IN ('equal','exact','percent')),
		date TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS bills_group_date ON bills (group_id, date)`,
	`CREATE TABLE IF NOT EXISTS bill_splits (
		bill_id TEXT NOT NULL REFERENCES bills (id) ON DELETE CASCADE,
		member_id TEXT NOT NULL REFERENCES group_members (id) ON DELETE CASCADE,
		amount TEXT NOT NULL,
		PRIMARY KEY (bill_id, member_id)
	)`,
	`CREATE INDEX IF NOT EXISTS bill_splits_member ON bill_splits (member_id)`,
	`CREATE TABLE IF NOT EXISTS bill_contributions (
		bill_id TEXT NOT NULL REFERENCES bills (id) ON DELETE CASCADE,
		member_id TEXT NOT NULL REFERENCES group_members (id) ON DELETE CASCADE,
		amount TEXT NOT NULL,
		PRIMARY KEY (bill_id, member_id)
	)`,
	`CREATE INDEX IF NOT EXISTS bill_contributions_member ON bill_contributions (member_id)`,
	`CREATE TABLE IF NOT EXISTS settlements (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES expense_groups (id) ON DELETE CASCADE,
		from_member TEXT NOT NULL REFERENCES group_members (id) ON DELETE CASCADE,
		to_member TEXT NOT NULL REFERENCES group_members (id) ON DELETE CASCADE,
		amount TEXT NOT NULL CHECK (CAST(amount AS REAL) > 0),
		bill_id TEXT REFERENCES bills (id) ON DELETE SET NULL,
		date TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		CHECK (from_member <> to_member)
	)`,
	`CREATE INDEX IF NOT EXISTS settlements_group_date ON settlements (group_id, date)`,

	`CREATE TABLE IF NOT EXISTS debts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL CHECK (kind IN ('personal','student','auto','medical','other')),
		lender TEXT NOT NULL DEFAULT '',
		balance TEXT NOT NULL DEFAULT '0',
		apr TEXT NOT NULL DEFAULT '0',
		min_payment TEXT NOT NULL DEFAULT '0',
		due_day INTEGER NOT NULL DEFAULT 0 CHECK (due_day BETWEEN 0 AND 31),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS achievements (
		id TEXT PRIMARY KEY,
		unlocked_at TEXT NOT NULL
	)`,

	// Singleton records: the CHECK pins the only row.
	`CREATE TABLE IF NOT EXISTS progress (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		xp INTEGER NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 1,
		streak INTEGER NOT NULL DEFAULT 0,
		last_active TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS budget (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		currency TEXT NOT NULL DEFAULT '',
		monthly_limit TEXT NOT NULL DEFAULT '0',
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS budget_categories (
		category TEXT PRIMARY KEY,
		monthly_limit TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS preferences (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		base_currency TEXT NOT NULL DEFAULT '',
		cost_basis TEXT NOT NULL DEFAULT 'fifo' CHECK (cost_basis IN ('fifo','average'))
	)`,

	`CREATE TABLE IF NOT EXISTS quote_cache (
		symbol TEXT PRIMARY KEY,
		price TEXT NOT NULL,
		change TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT '{}',
		fetched_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS fx_rate_cache (
		base TEXT PRIMARY KEY,
		rates TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	)`,
}

var tables = []string{
	"accounts", "transactions", "portfolios", "holdings", "lots", "cash_events", "watchlist",
	"goals", "goal_history", "goal_transactions",
	"expense_groups", "group_members", "bills", "bill_splits", "bill_contributions", "settlements",
	"debts", "achievements", "progress", "budget", "budget_categories", "preferences",
	"quote_cache", "fx_rate_cache",
}

func knownTable(name string) bool { return contains(tables, name) }
