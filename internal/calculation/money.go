package calculation

import "github.com/shopspring/decimal"

var (
	twelve = decimal.NewFromInt(12)
	one    = decimal.NewFromInt(1)
	half   = decimal.NewFromFloat(0.5)
)

// roundCents applies the statutory rounding rule: nearest cent, halves
// away from zero. Applied exactly once at each externally visible amount,
// never to intermediate terms.
func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// clampZero floors a value at zero. Negative intermediate results are
// policy outcomes (income fully offset, need fully covered), not errors.
func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func annual(monthly decimal.Decimal) decimal.Decimal {
	return monthly.Mul(twelve)
}
