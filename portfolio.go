package finvault

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioType tells real money portfolios apart from simulated ones.
type PortfolioType string

const (
	Live  PortfolioType = "live"
	Paper PortfolioType = "paper"
)

// ParsePortfolioType parses a portfolio type, defaulting to Live for empty input.
func ParsePortfolioType(s string) (PortfolioType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "live", "real", "":
		return Live, nil
	case "paper", "virtual", "simulated":
		return Paper, nil
	default:
		return Live, fmt.Errorf("unknown portfolio type: %q", s)
	}
}

// Portfolio owns holdings, watchlist entries and cash events.
type Portfolio struct {
	ID              string
	Name            string
	BaseCurrency    string
	Benchmark       string
	Type            PortfolioType
	CashBalance     decimal.Decimal // sum of the cash events dated up to now
	Archived        bool
	TrackingEnabled bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p Portfolio) Validate() error {
	var errs []error
	if p.ID == "" {
		errs = append(errs, errors.New("portfolio id is required"))
	}
	if err := ValidateCurrency(p.BaseCurrency); err != nil {
		errs = append(errs, fmt.Errorf("invalid base currency: %w", err))
	}
	if p.Type != Live && p.Type != Paper {
		errs = append(errs, fmt.Errorf("unknown portfolio type: %q", p.Type))
	}
	return errors.Join(errs...)
}

// InstrumentType is the kind of instrument held.
type InstrumentType string

const (
	Stock           InstrumentType = "stock"
	ETF             InstrumentType = "etf"
	Fund            InstrumentType = "fund"
	Crypto          InstrumentType = "crypto"
	Bond            InstrumentType = "bond"
	OtherInstrument InstrumentType = "other"
)

// ParseInstrumentType maps free text to an InstrumentType, OtherInstrument when unknown.
func ParseInstrumentType(s string) InstrumentType {
	switch t := InstrumentType(strings.ToLower(strings.TrimSpace(s))); t {
	case Stock, ETF, Fund, Crypto, Bond:
		return t
	case "equity", "share":
		return Stock
	case "mutual_fund", "mutualfund":
		return Fund
	default:
		return OtherInstrument
	}
}

// Holding is a position in one instrument inside a portfolio. Its quantity
// is never stored: it is derived from its lots.
type Holding struct {
	ID          string
	PortfolioID string
	Symbol      string
	Name        string
	Type        InstrumentType
	Currency    string // explicit, never inferred from the symbol
	Archived    bool
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizeSymbol returns the canonical spelling of a ticker symbol.
func NormalizeSymbol(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

func (h Holding) Validate() error {
	var errs []error
	if h.ID == "" {
		errs = append(errs, errors.New("holding id is required"))
	}
	if h.PortfolioID == "" {
		errs = append(errs, errors.New("holding portfolio is required"))
	}
	if NormalizeSymbol(h.Symbol) == "" {
		errs = append(errs, errors.New("holding symbol is required"))
	}
	if err := ValidateCurrency(h.Currency); err != nil {
		errs = append(errs, fmt.Errorf("invalid holding currency: %w", err))
	}
	return errors.Join(errs...)
}

// Side is the direction of a lot.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// ParseSide parses a lot side.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "b", "purchase":
		return Buy, nil
	case "sell", "s", "sale":
		return Sell, nil
	default:
		return "", fmt.Errorf("unknown lot side: %q", s)
	}
}

// Lot is a single buy or sell execution. The ordered lots of a holding are
// the only source of truth for its position.
type Lot struct {
	ID        string
	HoldingID string
	Side      Side
	Quantity  decimal.Decimal // always positive
	Price     decimal.Decimal // unit price in the holding currency
	Fee       decimal.Decimal
	Date      time.Time
	Note      string
	CreatedAt time.Time
}

// Validate rejects structurally invalid lots. It is called at the write
// boundary; the accounting engine trusts its input.
func (l Lot) Validate() error {
	var errs []error
	if l.ID == "" {
		errs = append(errs, errors.New("lot id is required"))
	}
	if l.HoldingID == "" {
		errs = append(errs, errors.New("lot holding is required"))
	}
	if l.Side != Buy && l.Side != Sell {
		errs = append(errs, fmt.Errorf("unknown lot side: %q", l.Side))
	}
	if !l.Quantity.IsPositive() {
		errs = append(errs, fmt.Errorf("lot quantity must be positive, got %s", l.Quantity))
	}
	if l.Price.IsNegative() {
		errs = append(errs, fmt.Errorf("lot price must not be negative, got %s", l.Price))
	}
	if l.Fee.IsNegative() {
		errs = append(errs, fmt.Errorf("lot fee must not be negative, got %s", l.Fee))
	}
	return errors.Join(errs...)
}

// CashEvent is a deposit (positive amount) or a withdrawal (negative amount).
type CashEvent struct {
	ID          string
	PortfolioID string
	Amount      decimal.Decimal
	Date        time.Time
	Note        string
	CreatedAt   time.Time
}

func (e CashEvent) Validate() error {
	var errs []error
	if e.ID == "" {
		errs = append(errs, errors.New("cash event id is required"))
	}
	if e.PortfolioID == "" {
		errs = append(errs, errors.New("cash event portfolio is required"))
	}
	return errors.Join(errs...)
}

// CashBalance returns the running sum of the events dated on or before now.
func CashBalance(events []CashEvent, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, e := range events {
		if e.Date.After(now) {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total
}

// WatchlistEntry is a symbol followed without being held.
type WatchlistEntry struct {
	PortfolioID string
	Symbol      string
	AddedAt     time.Time
}
