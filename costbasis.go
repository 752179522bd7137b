package finvault

import (
	"fmt"
	"strings"
)

// CostBasisMethod selects how sells are matched against open lots.
type CostBasisMethod int

const (
	// FIFO matches a sell against the oldest open lots first.
	FIFO CostBasisMethod = iota
	// AverageCost pools every open lot into a single one at the weighted
	// average cost.
	AverageCost
)

func (m CostBasisMethod) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case AverageCost:
		return "average"
	}
	return fmt.Sprintf("CostBasisMethod(%d)", int(m))
}

// ParseCostBasisMethod parses "fifo" or "average", case insensitive. The
// empty string is FIFO.
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fifo":
		return FIFO, nil
	case "average", "avg", "average_cost":
		return AverageCost, nil
	}
	return FIFO, fmt.Errorf("unknown cost basis method %q", s)
}
