package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mikrosim/taxben/internal/params"
)

// wealthExemptionPerMember is the statutory exempt wealth per household
// member for the basic subsistence benefit.
var wealthExemptionPerMember = decimal.NewFromInt(5000)

// earnedIncomeDisregardRate is the share of gross wage disregarded in the
// means test before the cap applies.
var earnedIncomeDisregardRate = decimal.NewFromFloat(0.3)

// CountableIncomeInputs are the per-person monthly amounts entering the
// means test. Tax shares arrive already spread from the tax-unit level
// (annual amount over adults over twelve).
type CountableIncomeInputs struct {
	GrossTransferIncomeMonthly    decimal.Decimal
	IncomeTaxShareMonthly         decimal.Decimal
	SolidaritySurchargeShareMonthly decimal.Decimal
	SocialInsuranceContribMonthly decimal.Decimal
	GrossWageMonthly              decimal.Decimal
	SupplementExemptionMonthly    decimal.Decimal
}

// BenefitInputs are the household-level amounts and gates for the final
// benefit computation.
type BenefitInputs struct {
	NeedAfterWealthTest decimal.Decimal
	HouseholdIncome     decimal.Decimal
	ChildBenefit        decimal.Decimal
	AdvanceMaintenance  decimal.Decimal

	HousingBenefitPriority         bool
	ChildSupplementPriority        bool
	HousingChildSupplementPriority bool

	AnyMemberBelowPensionAge bool
	AdultCount               int
	RetireeCount             int
}

// SubsistenceCalculator computes the basic subsistence benefit for
// elderly households: countable income with earned-income disregard,
// household wealth test, offsetting of other benefits, and priority
// resolution against competing programs.
type SubsistenceCalculator struct {
	standardNeed decimal.Decimal // single-adult standard need, caps the disregard
}

// NewSubsistenceCalculator resolves the subsistence parameters from the
// active set.
func NewSubsistenceCalculator(set *params.Set) (*SubsistenceCalculator, error) {
	sc := &SubsistenceCalculator{}
	var err error
	if sc.standardNeed, err = set.Scalar("arbeitsl_geld_2", "regelsatz"); err != nil {
		return nil, fmt.Errorf("subsistence calculator: %w", err)
	}
	return sc, nil
}

// EarnedIncomeDisregard is the progressive disregard on earned income:
// 30% of the gross wage, capped at half the standard need.
func (sc *SubsistenceCalculator) EarnedIncomeDisregard(grossWageMonthly decimal.Decimal) decimal.Decimal {
	return decimal.Min(
		grossWageMonthly.Mul(earnedIncomeDisregardRate),
		half.Mul(sc.standardNeed),
	)
}

// CountableIncome is one person's income counted against the benefit,
// never negative.
func (sc *SubsistenceCalculator) CountableIncome(in CountableIncomeInputs) decimal.Decimal {
	out := in.GrossTransferIncomeMonthly.
		Sub(in.IncomeTaxShareMonthly).
		Sub(in.SolidaritySurchargeShareMonthly).
		Sub(in.SocialInsuranceContribMonthly).
		Sub(sc.EarnedIncomeDisregard(in.GrossWageMonthly)).
		Sub(in.SupplementExemptionMonthly)
	return clampZero(out)
}

// WealthThreshold is the household's exempt wealth.
func (sc *SubsistenceCalculator) WealthThreshold(householdSize int) decimal.Decimal {
	return wealthExemptionPerMember.Mul(decimal.NewFromInt(int64(householdSize)))
}

// NeedAfterWealthTest zeroes the whole basic need once household wealth
// reaches the exempt threshold. The gate is binary: wealth strictly below
// the threshold keeps the need, wealth at or above it removes it.
func (sc *SubsistenceCalculator) NeedAfterWealthTest(basicNeed, wealth decimal.Decimal, householdSize int) decimal.Decimal {
	if wealth.LessThan(sc.WealthThreshold(householdSize)) {
		return basicNeed
	}
	return decimal.Zero
}

// Benefit is the household's monthly subsistence transfer: need minus
// income minus offset benefits, clamped at zero, then forced to zero by
// any priority gate. The gates only ever zero the amount, so their order
// is irrelevant.
func (sc *SubsistenceCalculator) Benefit(in BenefitInputs) decimal.Decimal {
	out := clampZero(in.NeedAfterWealthTest.
		Sub(in.HouseholdIncome).
		Sub(in.ChildBenefit).
		Sub(in.AdvanceMaintenance))

	if in.HousingBenefitPriority ||
		in.ChildSupplementPriority ||
		in.HousingChildSupplementPriority ||
		in.AnyMemberBelowPensionAge ||
		in.AdultCount != in.RetireeCount {
		return decimal.Zero
	}
	return roundCents(out)
}
