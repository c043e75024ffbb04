package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Fee token balances arrive in the token's smallest unit.
var hotTokenUnit = decimal.New(1, 18)

// Tier is one step of a fee discount schedule. A bounded tier applies to
// balances up to and including Threshold, the unbounded tier applies to
// everything above the last bounded one and terminates the scan.
type Tier struct {
	Threshold decimal.Decimal
	Rate      decimal.Decimal
	Unbounded bool
}

// Bounded builds a tier that applies to balances up to threshold.
func Bounded(threshold, rate decimal.Decimal) Tier {
	return Tier{Threshold: threshold, Rate: rate}
}

// Unbounded builds the terminal catch-all tier.
func Unbounded(rate decimal.Decimal) Tier {
	return Tier{Rate: rate, Unbounded: true}
}

// DiscountSchedule is an ordered tier list, ascending by threshold, ending
// with exactly one unbounded tier.
type DiscountSchedule []Tier

// RateFor returns the fee multiplier for the given fee token balance
// (smallest unit). An empty schedule or an absent balance means no
// discount, multiplier 1.
func (s DiscountSchedule) RateFor(hotTokenAmount decimal.Decimal) decimal.Decimal {
	one := decimal.New(1, 0)

	if len(s) == 0 || hotTokenAmount.LessThanOrEqual(decimal.Zero) {
		return one
	}

	hotAmount := hotTokenAmount.Div(hotTokenUnit)

	for _, tier := range s {
		if tier.Unbounded {
			return tier.Rate
		}
		if hotAmount.LessThanOrEqual(tier.Threshold) {
			return tier.Rate
		}
	}

	return one
}

// ParseDiscountPairs converts the fee rules provider wire format, a list of
// [threshold, rate] pairs where a threshold of -1 marks the terminal
// catch-all tier, into a DiscountSchedule. The -1 pair must exist and must
// be last.
func ParseDiscountPairs(pairs [][]decimal.Decimal) (DiscountSchedule, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("empty discount table")
	}

	sentinel := decimal.New(-1, 0)
	schedule := make(DiscountSchedule, 0, len(pairs))

	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("discount pair %d: expected [threshold, rate], got %d values", i, len(pair))
		}

		threshold, rate := pair[0], pair[1]

		if threshold.Equal(sentinel) {
			if i != len(pairs)-1 {
				return nil, fmt.Errorf("discount pair %d: catch-all tier must be last", i)
			}
			schedule = append(schedule, Unbounded(rate))
			continue
		}

		if threshold.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("discount pair %d: negative threshold %s", i, threshold.String())
		}

		schedule = append(schedule, Bounded(threshold, rate))
	}

	last := schedule[len(schedule)-1]
	if !last.Unbounded {
		return nil, fmt.Errorf("discount table has no catch-all tier")
	}

	return schedule, nil
}
