package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mikrosim/taxben/internal/params"
	"github.com/mikrosim/taxben/internal/piecewise"
)

// DeductionInputs are the already-aggregated tax-unit-level monthly
// contribution sums a deduction formula consumes. No formula performs its
// own aggregation.
type DeductionInputs struct {
	GrossWageMonthly decimal.Decimal

	PublicPensionContribMonthly  decimal.Decimal
	PrivatePensionContribMonthly decimal.Decimal
	HealthContribMonthly         decimal.Decimal
	CareContribMonthly           decimal.Decimal
	UnemploymentContribMonthly   decimal.Decimal

	AdultCount  int
	JointFiling bool
}

func (in DeductionInputs) adults() decimal.Decimal {
	n := in.AdultCount
	if n < 1 {
		n = 1
	}
	return decimal.NewFromInt(int64(n))
}

// regimeFunc is one legally distinct deduction computation path.
type regimeFunc func(DeductionInputs) decimal.Decimal

// DeductionCalculator computes the retirement-savings tax deduction under
// the regime in force for the simulation year. Four historically
// successive regimes exist (pre-2005, 2005-2009, 2010-2019, 2020+); the
// transitional ones take the more favourable of two formulas. The regime
// is resolved once per run from the simulation year, not per record.
type DeductionCalculator struct {
	year   int
	regime regimeFunc

	phaseInSpec *piecewise.Spec // deductible share of pension contributions, rises by year

	pensionMaxAnnual decimal.Decimal // vorsorge_altersaufw_max, per adult
	otherMaxAnnual   decimal.Decimal // vorsorge_sonstige_aufw_max, per adult
	healthReduction  decimal.Decimal // vorsorge_kranken_minderung
	baseCeiling2004  decimal.Decimal // vorsorge_2004_grundhoechstbetrag
	advanceDeduction decimal.Decimal // vorsorge_2004_vorwegabzug
	advanceReduction decimal.Decimal // vorsorge_2004_kuerzung_vorwegabzug
}

// NewDeductionCalculator resolves the deduction parameters from the
// active set and selects the regime for the given simulation year.
func NewDeductionCalculator(set *params.Set, year int) (*DeductionCalculator, error) {
	dc := &DeductionCalculator{year: year}
	var err error

	if dc.phaseInSpec, err = set.Piecewise("eink_st_abzuege", "einfuehrungsfaktor_vorsorgeaufw_alter"); err != nil {
		return nil, fmt.Errorf("deduction calculator: %w", err)
	}
	if dc.pensionMaxAnnual, err = set.Scalar("eink_st_abzuege", "vorsorge_altersaufw_max"); err != nil {
		return nil, fmt.Errorf("deduction calculator: %w", err)
	}
	if dc.otherMaxAnnual, err = set.Scalar("eink_st_abzuege", "vorsorge_sonstige_aufw_max"); err != nil {
		return nil, fmt.Errorf("deduction calculator: %w", err)
	}
	if dc.healthReduction, err = set.Scalar("eink_st_abzuege", "vorsorge_kranken_minderung"); err != nil {
		return nil, fmt.Errorf("deduction calculator: %w", err)
	}
	if dc.baseCeiling2004, err = set.Scalar("eink_st_abzuege", "vorsorge_2004_grundhoechstbetrag"); err != nil {
		return nil, fmt.Errorf("deduction calculator: %w", err)
	}
	if dc.advanceDeduction, err = set.Scalar("eink_st_abzuege", "vorsorge_2004_vorwegabzug"); err != nil {
		return nil, fmt.Errorf("deduction calculator: %w", err)
	}
	if dc.advanceReduction, err = set.Scalar("eink_st_abzuege", "vorsorge_2004_kuerzung_vorwegabzug"); err != nil {
		return nil, fmt.Errorf("deduction calculator: %w", err)
	}

	dc.regime = dc.regimeFor(year)
	return dc, nil
}

// regimeFor maps a simulation year to the applicable computation path.
func (dc *DeductionCalculator) regimeFor(year int) regimeFunc {
	switch {
	case year < 2005:
		return dc.pre2005
	case year < 2010:
		// No taxpayer was to lose out from the 2005 reform, so the more
		// favourable of the old and new amounts applies.
		return func(in DeductionInputs) decimal.Decimal {
			return decimal.Max(dc.pre2005(in), dc.alternative2005(in))
		}
	case year < 2020:
		// The 2010 rules are constructed to dominate the 2005 ones, so
		// only the pre-2005 comparison remains. Both terms are still
		// computed and compared literally.
		return func(in DeductionInputs) decimal.Decimal {
			return decimal.Max(dc.pre2005(in), dc.from2020(in))
		}
	default:
		return dc.from2020
	}
}

// Year is the simulation year the regime was selected for.
func (dc *DeductionCalculator) Year() int { return dc.year }

// Deduction computes the annual deductible amount for one tax unit under
// the selected regime, rounded to the cent at this boundary.
func (dc *DeductionCalculator) Deduction(in DeductionInputs) decimal.Decimal {
	return roundCents(dc.regime(in))
}

// pensionExpenses is the phased-in deductible share of pension
// contributions used by every post-2004 regime: the phase-in factor is
// applied to twice the public plus the private contributions, the public
// contribution is subtracted back out, and the result is capped at the
// per-adult maximum.
func (dc *DeductionCalculator) pensionExpenses(in DeductionInputs) decimal.Decimal {
	phaseIn := decimal.NewFromFloat(dc.phaseInSpec.Evaluate(float64(dc.year)))
	out := annual(phaseIn.Mul(decimal.NewFromInt(2).Mul(in.PublicPensionContribMonthly).Add(in.PrivatePensionContribMonthly)).
		Sub(in.PublicPensionContribMonthly))
	return decimal.Min(out, in.adults().Mul(dc.pensionMaxAnnual))
}

// wageDeduction2004 is the Vorwegabzug base term of the pre-2005 regime:
// a fixed allowance reduced in proportion to the annual wage, halved
// appropriately for joint filers, never negative.
func (dc *DeductionCalculator) wageDeduction2004(in DeductionInputs) decimal.Decimal {
	reduction := dc.advanceReduction.Mul(annual(in.GrossWageMonthly))
	var out decimal.Decimal
	if in.JointFiling {
		out = half.Mul(decimal.NewFromInt(2).Mul(dc.advanceDeduction).Sub(reduction))
	} else {
		out = dc.advanceDeduction.Sub(reduction)
	}
	return clampZero(out)
}

// pre2005 is the Vorwegabzug three-term formula in force until 2004.
func (dc *DeductionCalculator) pre2005(in DeductionInputs) decimal.Decimal {
	adults := in.adults()
	wageDeduction := dc.wageDeduction2004(in)

	item1 := clampZero(annual(in.PublicPensionContribMonthly.Add(in.HealthContribMonthly)).Sub(wageDeduction)).
		Div(adults)

	item2 := decimal.Min(item1, dc.baseCeiling2004).Div(adults)

	item3Cap := adults.Mul(dc.baseCeiling2004)
	item3 := half.Mul(decimal.Min(item1.Sub(item2), item3Cap))

	return wageDeduction.Add(item2).Add(item3)
}

// alternative2005 is the 2005 reform formula in force until 2009: other
// contributions (health, unemployment, care) capped at a per-adult
// ceiling, plus the phased pension deduction.
func (dc *DeductionCalculator) alternative2005(in DeductionInputs) decimal.Decimal {
	other := annual(in.HealthContribMonthly.Add(in.UnemploymentContribMonthly).Add(in.CareContribMonthly))
	other = decimal.Min(other, in.adults().Mul(dc.otherMaxAnnual))
	return other.Add(dc.pensionExpenses(in))
}

// from2020 is the regime fully phased in from 2020 on: the floor health
// and care contributions remain deductible even above the general cap on
// other contributions.
func (dc *DeductionCalculator) from2020(in DeductionInputs) decimal.Decimal {
	floorHealthCare := annual(in.CareContribMonthly.
		Add(one.Sub(dc.healthReduction).Mul(in.HealthContribMonthly)))

	capped := decimal.Min(
		annual(in.UnemploymentContribMonthly.Add(in.CareContribMonthly).Add(in.HealthContribMonthly)),
		in.adults().Mul(dc.otherMaxAnnual),
	)

	other := decimal.Max(floorHealthCare, capped)
	return other.Add(dc.pensionExpenses(in))
}
