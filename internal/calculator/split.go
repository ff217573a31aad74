package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// cent is the smallest unit shares are rounded to.
var cent = decimal.New(1, -2)

// SplitEvenly divides amount across members in whole cents.
// Leftover cents go to the first members in order, so the shares always add
// up to the rounded amount exactly.
func SplitEvenly(amount decimal.Decimal, members []string) (map[string]decimal.Decimal, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("must have at least one member")
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	n := decimal.NewFromInt(int64(len(members)))
	total := amount.Round(2)
	base := total.Div(n).RoundDown(2)
	remainder := total.Sub(base.Mul(n)).Div(cent).IntPart()

	shares := make(map[string]decimal.Decimal, len(members))
	for i, m := range members {
		share := base
		if int64(i) < remainder {
			share = share.Add(cent)
		}
		shares[m] = shares[m].Add(share)
	}
	return shares, nil
}
